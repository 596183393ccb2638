package link

import (
	"fmt"
	"net"
	"net/url"

	"github.com/golang/glog"
)

func dialTCP(u *url.URL) (Conn, error) {
	conn, err := net.Dial("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	return conn, nil
}

// listenTCP accepts exactly one connection and closes the
// listener. A robot serves one host link at a time.
func listenTCP(u *url.URL) (Conn, error) {
	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	defer ln.Close()
	glog.Infof("waiting for link on %s", ln.Addr())
	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	glog.Infof("link connected from %s", conn.RemoteAddr())
	return conn, nil
}
