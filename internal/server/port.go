package server

import (
	"fmt"
	"net"
	"strconv"
)

// LoopbackHost is the address redirect endpoints bind to.
const LoopbackHost = "127.0.0.1"

// AllocatePort binds 127.0.0.1:0, reads the port the OS assigned and releases the socket.
//
// Another process may take the port before it is bound again.
func AllocatePort() (uint16, error) {
	addr := net.JoinHostPort(LoopbackHost, "0")
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, &BindError{Addr: addr, Err: err}
	}
	defer ln.Close()

	tcp, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		return 0, &BindError{Addr: addr, Err: fmt.Errorf("unexpected address type %T", ln.Addr())}
	}
	return uint16(tcp.Port), nil
}

// RedirectURI builds the loopback redirect URI for port and path. An empty path becomes "/".
func RedirectURI(port uint16, path string) string {
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	return "http://" + net.JoinHostPort(LoopbackHost, strconv.Itoa(int(port))) + path
}
