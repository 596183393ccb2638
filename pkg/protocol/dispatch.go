package protocol

// HandlerFunc processes the payload of a dispatched frame.
// Handlers run synchronously on the tick that services the wire
// and must not block for unbounded time.
type HandlerFunc func(payload []byte)

// Dispatcher maps command ids to registered handlers.
type Dispatcher struct {
	handlers map[CommandID]HandlerFunc
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[CommandID]HandlerFunc)}
}

// Bind installs a handler for a command id, overwriting any prior
// binding. Ids outside the closed command set are rejected.
func (d *Dispatcher) Bind(cmd CommandID, handler HandlerFunc) error {
	if !cmd.IsValid() {
		return ErrUnknownCommand
	}
	d.handlers[cmd] = handler
	return nil
}

// Bound reports whether a handler is installed for cmd.
func (d *Dispatcher) Bound(cmd CommandID) bool {
	_, ok := d.handlers[cmd]
	return ok
}

// Dispatch invokes the handler bound to the frame's command.
// An unbound command returns UnboundError; the frame is dropped
// and never retried.
func (d *Dispatcher) Dispatch(f *Frame) error {
	handler, ok := d.handlers[f.Command]
	if !ok {
		return &UnboundError{Command: f.Command}
	}
	handler(f.Payload)
	return nil
}

// HandleFrame implements FrameHandler.
func (d *Dispatcher) HandleFrame(f *Frame) error {
	return d.Dispatch(f)
}
