package link

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

func dialWS(u *url.URL) (Conn, error) {
	conn, err := websocket.Dial(u.String(), "", "http://"+u.Host)
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}

// wsConn keeps the accepting handler alive until the link is
// closed; x/net/websocket tears the connection down when its
// handler returns.
type wsConn struct {
	*websocket.Conn
	once sync.Once
	done chan struct{}
	srv  *http.Server
}

func (c *wsConn) Close() error {
	err := c.Conn.Close()
	c.once.Do(func() {
		close(c.done)
		c.srv.Close()
	})
	return err
}

// listenWS serves one websocket endpoint and hands over the first
// connection, same single-peer contract as tcp-listen.
func listenWS(u *url.URL) (Conn, error) {
	path := u.Path
	if path == "" {
		path = "/"
	}
	accepted := make(chan *websocket.Conn)
	done := make(chan struct{})

	mux := http.NewServeMux()
	mux.Handle(path, websocket.Handler(func(conn *websocket.Conn) {
		conn.PayloadType = websocket.BinaryFrame
		select {
		case accepted <- conn:
			<-done
		case <-done:
		}
	}))
	srv := &http.Server{Addr: u.Host, Handler: mux}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	glog.Infof("waiting for ws link on %s%s", ln.Addr(), path)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case conn := <-accepted:
		glog.Infof("ws link connected from %s", conn.Request().RemoteAddr)
		return &wsConn{Conn: conn, done: done, srv: srv}, nil
	case err := <-errCh:
		return nil, fmt.Errorf("link: %w", err)
	}
}
