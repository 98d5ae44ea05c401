// Package serializer encodes values as JSON and persists them as single-entry zip archives.
//
// A [Serializer] borrows its scratch buffers from a [StreamFactory]; constructing one without a factory fails
// with [ErrNilStreamFactory]. Decoding is exposed as generic functions since Go methods cannot take type
// parameters: [Deserialize], [DeserializeReader], [DeserializeString] and [DeserializeCompressed].
package serializer
