// Package link opens framed byte-stream endpoints by URL. Every
// scheme yields an io.ReadWriteCloser carrying the raw frame
// bytes; the transport layer above is scheme-agnostic.
//
// Supported schemes:
//
//	serial:///dev/ttyUSB0?baud=115200
//	tcp://host:port            (dial)
//	tcp-listen://:port         (accept one connection)
//	ws://host:port/path        (dial)
//	ws://:port/path            (serve, accept one connection)
package link

import (
	"fmt"
	"io"
	"net/url"
)

// Conn is one byte link endpoint.
type Conn = io.ReadWriteCloser

// Open connects the endpoint named by rawurl. Listening schemes
// block until one peer connects.
func Open(rawurl string) (Conn, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	switch u.Scheme {
	case "serial":
		return openSerial(u)
	case "tcp":
		return dialTCP(u)
	case "tcp-listen":
		return listenTCP(u)
	case "ws":
		if u.Hostname() == "" {
			return listenWS(u)
		}
		return dialWS(u)
	case "":
		return nil, fmt.Errorf("link: missing scheme in %q", rawurl)
	default:
		return nil, fmt.Errorf("link: unsupported scheme %q", u.Scheme)
	}
}
