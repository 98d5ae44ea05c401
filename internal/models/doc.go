// Package models defines persistent entities for loopauth.
//
//   - [Attempt] : one authorization redirect capture and how it ended
//
// Entities implement [Model]; [Repository] is the CRUD surface their stores provide.
package models
