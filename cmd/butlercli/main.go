// Command butlercli is an interactive host-side shell speaking
// the frame protocol over any link URL.
package main

//go-build: CGO_ENABLED=0

import (
	"encoding/hex"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/yry1816186-pixel/ButlerX/pkg/behavior"
	"github.com/yry1816186-pixel/ButlerX/pkg/link"
	"github.com/yry1816186-pixel/ButlerX/pkg/protocol"
)

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	linkURL  string
	evalOnly bool
)

func init() {
	flag.StringVar(&linkURL, "link", "", "Link URL to connect at startup.")
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// Shell holds the link session behind the ishell prompt.
type Shell struct {
	Shell *ishell.Shell

	conn link.Conn
	done chan struct{}
}

// New creates the shell with all commands installed.
func New() *Shell {
	s := &Shell{Shell: ishell.New()}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps a command func that needs a live link.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// Connect opens the link and starts the telemetry reader.
func (s *Shell) Connect(rawurl string) error {
	conn, err := link.Open(rawurl)
	if err != nil {
		return err
	}
	s.Disconnect()
	s.conn = conn
	s.done = make(chan struct{})
	go s.readTelemetry(conn, s.done)
	s.Shell.SetPrompt(fmt.Sprintf("[%s] > ", rawurl))
	return nil
}

// Disconnect closes the current link, if any.
func (s *Shell) Disconnect() {
	if s.conn != nil {
		close(s.done)
		s.conn.Close()
		s.conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Send writes one frame to the link.
func (s *Shell) Send(cmd protocol.CommandID, payload []byte) error {
	f, err := protocol.New(cmd, payload)
	if err != nil {
		return err
	}
	_, err = f.WriteTo(s.conn)
	return err
}

func (s *Shell) readTelemetry(conn link.Conn, done chan struct{}) {
	var parser protocol.Parser
	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		for _, b := range buf[:n] {
			if r := parser.Feed(b); r.Complete() {
				if !r.Valid {
					s.Shell.Println("<- frame with bad checksum")
					continue
				}
				s.Shell.Println("<- " + formatFrame(r.Frame))
			}
		}
		if err != nil {
			select {
			case <-done:
			default:
				s.Shell.Printf("link lost: %v\n", err)
			}
			return
		}
	}
}

// formatFrame renders received telemetry for the terminal.
func formatFrame(f *protocol.Frame) string {
	switch f.Command {
	case protocol.CmdHeartbeat:
		if hb, err := protocol.UnmarshalHeartbeat(f.Payload); err == nil {
			return fmt.Sprintf("heartbeat uptime=%ds free=%dB", hb.Uptime, hb.FreeMemory)
		}
	case protocol.CmdSetState, protocol.CmdGetStatus:
		if st, err := protocol.UnmarshalStatus(f.Payload); err == nil {
			return fmt.Sprintf("status state=%s battery=%d%% expr=0x%02x servo=%d/%d",
				behavior.State(st.State), st.Battery, st.Expression, st.ServoH, st.ServoV)
		}
	case protocol.CmdSensorData:
		if r, err := protocol.UnmarshalSensorReading(f.Payload); err == nil {
			return fmt.Sprintf("sensors distance=%dmm proximity=%d light=%d",
				r.Distance, r.Proximity, r.Light)
		}
	case protocol.CmdError:
		if len(f.Payload) >= 1 {
			return fmt.Sprintf("error code=%d", f.Payload[0])
		}
	}
	return fmt.Sprintf("%s %s", f.Command, hex.EncodeToString(f.Payload))
}

var states = map[string]behavior.State{
	"sleep":  behavior.Sleep,
	"wake":   behavior.Wake,
	"listen": behavior.Listen,
	"think":  behavior.Think,
	"talk":   behavior.Talk,
}

func parseUint(s string, max uint64) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil || v > max {
		return 0, fmt.Errorf("bad value %q", s)
	}
	return v, nil
}

var commands = []*ishell.Cmd{
	{
		Name: "connect",
		Help: "URL (serial://, tcp://, ws://)",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("link URL expected"))
				return
			}
			if err := ShellFrom(c).Connect(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	},
	{
		Name: "disconnect",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	},
	{
		Name: "state",
		Help: "sleep|wake|listen|think|talk",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("state name expected"))
				return
			}
			st, ok := states[strings.ToLower(c.Args[0])]
			if !ok {
				c.Err(fmt.Errorf("unknown state %q", c.Args[0]))
				return
			}
			if err := ShellFrom(c).Send(protocol.CmdSetState, []byte{byte(st)}); err != nil {
				c.Err(err)
			}
		}),
	},
	{
		Name: "expr",
		Help: "ID [BRIGHTNESS [DURATION-MS]]",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("expression id expected"))
				return
			}
			e := protocol.SetExpression{Brightness: 255}
			id, err := parseUint(c.Args[0], 255)
			if err != nil {
				c.Err(err)
				return
			}
			e.Expression = byte(id)
			if len(c.Args) > 1 {
				v, err := parseUint(c.Args[1], 255)
				if err != nil {
					c.Err(err)
					return
				}
				e.Brightness = byte(v)
			}
			if len(c.Args) > 2 {
				v, err := parseUint(c.Args[2], 65535)
				if err != nil {
					c.Err(err)
					return
				}
				e.Duration = uint16(v)
			}
			if err := ShellFrom(c).Send(protocol.CmdSetExpression, e.Marshal()); err != nil {
				c.Err(err)
			}
		}),
	},
	{
		Name: "servo",
		Help: "h|v ANGLE [SPEED]",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("axis and angle expected"))
				return
			}
			var s protocol.SetServo
			switch strings.ToLower(c.Args[0]) {
			case "h":
				s.Servo = 0
			case "v":
				s.Servo = 1
			default:
				c.Err(fmt.Errorf("axis must be h or v"))
				return
			}
			angle, err := parseUint(c.Args[1], 180)
			if err != nil {
				c.Err(err)
				return
			}
			s.Angle = uint16(angle)
			if len(c.Args) > 2 {
				speed, err := parseUint(c.Args[2], 65535)
				if err != nil {
					c.Err(err)
					return
				}
				s.Speed = uint16(speed)
			}
			if err := ShellFrom(c).Send(protocol.CmdSetServo, s.Marshal()); err != nil {
				c.Err(err)
			}
		}),
	},
	{
		Name: "gaze",
		Help: "X Y",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(fmt.Errorf("x and y expected"))
				return
			}
			var g protocol.Gaze
			x, err := strconv.ParseInt(c.Args[0], 10, 16)
			if err != nil {
				c.Err(err)
				return
			}
			y, err := strconv.ParseInt(c.Args[1], 10, 16)
			if err != nil {
				c.Err(err)
				return
			}
			g.X, g.Y = int16(x), int16(y)
			if err := ShellFrom(c).Send(protocol.CmdSetGaze, g.Marshal()); err != nil {
				c.Err(err)
			}
		}),
	},
	{
		Name: "status",
		Func: MustBeConnected(func(c *ishell.Context) {
			if err := ShellFrom(c).Send(protocol.CmdGetStatus, nil); err != nil {
				c.Err(err)
			}
		}),
	},
	{
		Name: "ping",
		Func: MustBeConnected(func(c *ishell.Context) {
			if err := ShellFrom(c).Send(protocol.CmdHeartbeat, nil); err != nil {
				c.Err(err)
			}
		}),
	},
	{
		Name: "record",
		Help: "start [DURATION-S] | stop",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("start or stop expected"))
				return
			}
			var r protocol.RecordControl
			switch strings.ToLower(c.Args[0]) {
			case "start":
				r.Action = protocol.ActionStart
				if len(c.Args) > 1 {
					v, err := parseUint(c.Args[1], 255)
					if err != nil {
						c.Err(err)
						return
					}
					r.Duration = byte(v)
				}
			case "stop":
				r.Action = protocol.ActionStop
			default:
				c.Err(fmt.Errorf("start or stop expected"))
				return
			}
			if err := ShellFrom(c).Send(protocol.CmdRecordControl, r.Marshal()); err != nil {
				c.Err(err)
			}
		}),
	},
	{
		Name: "camera",
		Help: "start [INTERVAL-S] | stop | shot",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("start, stop or shot expected"))
				return
			}
			var cam protocol.CameraControl
			switch strings.ToLower(c.Args[0]) {
			case "start":
				cam.Action = protocol.ActionStart
				if len(c.Args) > 1 {
					v, err := parseUint(c.Args[1], 255)
					if err != nil {
						c.Err(err)
						return
					}
					cam.Interval = byte(v)
				}
			case "stop":
				cam.Action = protocol.ActionStop
			case "shot":
				cam.Action = protocol.ActionCapture
			default:
				c.Err(fmt.Errorf("start, stop or shot expected"))
				return
			}
			if err := ShellFrom(c).Send(protocol.CmdCameraControl, cam.Marshal()); err != nil {
				c.Err(err)
			}
		}),
	},
	{
		Name: "raw",
		Help: "CMD-HEX [PAYLOAD-HEX]",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("command byte expected"))
				return
			}
			cmd, err := strconv.ParseUint(strings.TrimPrefix(c.Args[0], "0x"), 16, 8)
			if err != nil {
				c.Err(err)
				return
			}
			var payload []byte
			if len(c.Args) > 1 {
				if payload, err = hex.DecodeString(c.Args[1]); err != nil {
					c.Err(err)
					return
				}
			}
			if err := ShellFrom(c).Send(protocol.CommandID(cmd), payload); err != nil {
				c.Err(err)
			}
		}),
	},
}

func main() {
	flag.Parse()

	s := New()
	if linkURL != "" {
		if !evalOnly {
			s.Shell.Printf("Connecting %s ...\n", linkURL)
		}
		if err := s.Connect(linkURL); err != nil {
			fmt.Println(err)
			return
		}
	}
	defer s.Disconnect()

	if args := flag.Args(); len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			fmt.Println(err)
		}
		return
	}
	if evalOnly {
		fmt.Println("command expected")
		return
	}
	s.Shell.Run()
}
