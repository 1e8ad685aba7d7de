package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/vplay-cli/vplay/log"
)

// docs: https://mpv.io/manual/stable/#json-ipc

// Request is a command sent over the IPC socket.
type Request struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id,omitempty"`
}

// Message is anything mpv writes back: a reply to a request or an event.
type Message struct {
	RequestID int    `json:"request_id,omitempty"`
	Error     string `json:"error,omitempty"`
	Data      any    `json:"data,omitempty"`

	Event  string `json:"event,omitempty"`
	ID     int    `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason,omitempty"`
	// FileError explains an end-file event with reason "error".
	FileError string `json:"file_error,omitempty"`
}

const (
	dialRetries = 10
	dialDelay   = 300 * time.Millisecond
)

var ErrClosed = errors.New("mpv connection closed")

// Conn is one persistent JSON-IPC connection. Replies are matched to requests by id.
// Events are delivered on their own goroutine, in order, so handlers may issue commands.
type Conn struct {
	conn net.Conn

	wmu sync.Mutex

	mu      sync.Mutex
	next    int
	pending map[int]chan Message
	handler func(Message)
	err     error

	events *inbox
	done   chan struct{}
}

// Dial connects to the socket at path, retrying while mpv is still starting. It gives
// up early when exited is closed.
func Dial(ctx context.Context, path string, exited <-chan struct{}) (*Conn, error) {
	var (
		d       net.Dialer
		lastErr error
	)
	for i := 0; i < dialRetries; i++ {
		c, err := d.DialContext(ctx, "unix", path)
		if err == nil {
			return NewConn(c), nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-exited:
			return nil, errors.New("mpv exited before its socket was ready")
		case <-time.After(dialDelay):
		}
	}
	return nil, fmt.Errorf("socket %s not ready after %d attempts: %w", path, dialRetries, lastErr)
}

// NewConn starts reading from c.
func NewConn(c net.Conn) *Conn {
	conn := &Conn{
		conn:    c,
		pending: make(map[int]chan Message),
		events:  newInbox(),
		done:    make(chan struct{}),
	}
	go conn.read()
	go conn.dispatch()
	return conn
}

// OnEvent sets the handler events are delivered to.
func (c *Conn) OnEvent(fn func(Message)) {
	c.mu.Lock()
	c.handler = fn
	c.mu.Unlock()
}

// Command sends a command and waits for its reply data.
func (c *Conn) Command(ctx context.Context, args ...any) (any, error) {
	reply := make(chan Message, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	c.next++
	id := c.next
	c.pending[id] = reply
	c.mu.Unlock()

	drop := func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}

	payload, err := json.Marshal(Request{Command: args, RequestID: id})
	if err != nil {
		drop()
		return nil, fmt.Errorf("marshal: %w", err)
	}

	c.wmu.Lock()
	_, err = c.conn.Write(append(payload, '\n'))
	c.wmu.Unlock()
	if err != nil {
		drop()
		return nil, fmt.Errorf("write: %w", err)
	}

	select {
	case msg := <-reply:
		if msg.Error != "" && msg.Error != "success" {
			return nil, fmt.Errorf("mpv %v: %s", args[0], msg.Error)
		}
		return msg.Data, nil
	case <-c.done:
		drop()
		return nil, c.Err()
	case <-ctx.Done():
		drop()
		return nil, ctx.Err()
	}
}

// Get reads a property.
func (c *Conn) Get(ctx context.Context, name string) (any, error) {
	return c.Command(ctx, "get_property", name)
}

// Float reads a numeric property.
func (c *Conn) Float(ctx context.Context, name string) (float64, error) {
	data, err := c.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	v, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected number, got %T", name, data)
	}
	return v, nil
}

// Set writes a property.
func (c *Conn) Set(ctx context.Context, name string, value any) error {
	_, err := c.Command(ctx, "set_property", name, value)
	return err
}

// Observe asks mpv to report changes of a property as property-change events.
func (c *Conn) Observe(ctx context.Context, id int, name string) error {
	_, err := c.Command(ctx, "observe_property", id, name)
	return err
}

// Done is closed once the connection stops reading.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Err returns why the connection stopped.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Conn) Close() error {
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Conn) read() {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		var msg Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			log.Tracef("mpv: skipping line: %v", err)
			continue
		}

		if msg.Event != "" {
			c.events.push(msg)
			continue
		}

		c.mu.Lock()
		reply, ok := c.pending[msg.RequestID]
		delete(c.pending, msg.RequestID)
		c.mu.Unlock()
		if ok {
			reply <- msg
		}
	}

	err := scanner.Err()
	if err == nil {
		err = ErrClosed
	}

	c.mu.Lock()
	c.err = err
	c.pending = make(map[int]chan Message)
	c.mu.Unlock()

	c.events.close()
	close(c.done)
}

func (c *Conn) dispatch() {
	for {
		msg, ok := c.events.pop()
		if !ok {
			return
		}

		c.mu.Lock()
		fn := c.handler
		c.mu.Unlock()
		if fn != nil {
			fn(msg)
		}
	}
}

// inbox is an unbounded FIFO so the reader never blocks on slow handlers.
type inbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Message
	closed bool
}

func newInbox() *inbox {
	in := &inbox{}
	in.cond = sync.NewCond(&in.mu)
	return in
}

func (in *inbox) push(m Message) {
	in.mu.Lock()
	in.items = append(in.items, m)
	in.mu.Unlock()
	in.cond.Signal()
}

func (in *inbox) pop() (Message, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	for len(in.items) == 0 && !in.closed {
		in.cond.Wait()
	}
	if len(in.items) == 0 {
		return Message{}, false
	}
	m := in.items[0]
	in.items = in.items[1:]
	return m, true
}

func (in *inbox) close() {
	in.mu.Lock()
	in.closed = true
	in.mu.Unlock()
	in.cond.Broadcast()
}
