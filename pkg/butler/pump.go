package butler

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/golang/glog"

	fx "github.com/yry1816186-pixel/ButlerX/pkg/framework"
	"github.com/yry1816186-pixel/ButlerX/pkg/protocol"
)

// DefaultReadTimeout bounds one link read so a quiet link never
// stalls the tick.
const DefaultReadTimeout = time.Millisecond

type deadlineReader interface {
	SetReadDeadline(time.Time) error
}

// Pump services the inbound half of a byte link: one bounded
// read per tick, bytes fed straight into the transport. Runs at
// the sense stage.
type Pump struct {
	Link        io.Reader
	Transport   *protocol.Transport
	ReadTimeout time.Duration

	buf    []byte
	closed bool
}

// NewPump creates a Pump with the default read timeout.
func NewPump(link io.Reader, transport *protocol.Transport) *Pump {
	return &Pump{
		Link:        link,
		Transport:   transport,
		ReadTimeout: DefaultReadTimeout,
		buf:         make([]byte, 256),
	}
}

// Control implements framework.Controller.
func (p *Pump) Control(cc fx.ControlContext) error {
	if p.closed {
		return nil
	}
	if d, ok := p.Link.(deadlineReader); ok {
		if err := d.SetReadDeadline(time.Now().Add(p.ReadTimeout)); err != nil {
			return err
		}
	}
	n, err := p.Link.Read(p.buf)
	if n > 0 {
		p.Transport.Feed(p.buf[:n])
	}
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		glog.Warning("link closed")
		p.closed = true
	case isTimeout(err):
	default:
		return err
	}
	return nil
}

// Closed reports whether the link has reached EOF.
func (p *Pump) Closed() bool {
	return p.closed
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
