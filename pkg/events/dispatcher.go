package events

// LogLimit caps the retained event log; older entries fall off the front.
const LogLimit = 100

// Handler receives every emitted event. Handlers run synchronously on the
// emitting goroutine, in registration order, and must not block or call
// back into the emitting runtime.
type Handler func(Event)

// HandlerID identifies a registered handler for removal.
type HandlerID int

type registration struct {
	id HandlerID
	fn Handler
}

// Dispatcher keeps the bounded event log and fans events out to handlers.
// It is not safe for concurrent use; the owning runtime serializes access.
type Dispatcher struct {
	nextID   HandlerID
	handlers []registration
	log      []Event
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{log: make([]Event, 0, LogLimit)}
}

// AddHandler registers a handler and returns its id.
func (d *Dispatcher) AddHandler(h Handler) HandlerID {
	d.nextID++
	d.handlers = append(d.handlers, registration{id: d.nextID, fn: h})
	return d.nextID
}

// RemoveHandler unregisters the handler with the given id. Removing a
// handler from within a handler is not supported.
func (d *Dispatcher) RemoveHandler(id HandlerID) {
	for i := range d.handlers {
		if d.handlers[i].id == id {
			d.handlers = append(d.handlers[:i], d.handlers[i+1:]...)
			return
		}
	}
}

// Emit appends the event to the log and invokes every handler in
// registration order before returning.
func (d *Dispatcher) Emit(e Event) {
	d.log = append(d.log, e)
	if len(d.log) > LogLimit {
		d.log = d.log[len(d.log)-LogLimit:]
	}
	for _, r := range d.handlers {
		r.fn(e)
	}
}

// Events returns a copy of the retained log, oldest first.
func (d *Dispatcher) Events() []Event {
	out := make([]Event, len(d.log))
	copy(out, d.log)
	return out
}

// ResetLog clears the retained log. Handlers stay registered.
func (d *Dispatcher) ResetLog() {
	d.log = d.log[:0]
}
