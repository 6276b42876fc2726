package chat

import (
	"context"
	"errors"
	"io"
)

type EventType string

const (
	EventStart EventType = "start"
	EventToken EventType = "token"
	EventDone  EventType = "done"
	EventError EventType = "error"
)

// Event is one item of a streamed assistant reply.
type Event struct {
	Type      EventType `json:"type"`
	Token     string    `json:"token,omitempty"`
	Content   string    `json:"content,omitempty"`
	Stage     Stage     `json:"stage,omitempty"`
	MessageID string    `json:"messageId,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Sink receives events as they are produced. A non-nil error stops the
// producer.
type Sink func(Event) error

// ChannelSink forwards events to ch until ctx is done.
func ChannelSink(ctx context.Context, ch chan<- Event) Sink {
	return func(ev Event) error {
		select {
		case ch <- ev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Reply is what Consume assembled from a stream.
type Reply struct {
	Content   string
	Stage     Stage
	MessageID string
}

// ErrStreamFailed wraps the message carried by an error event.
var ErrStreamFailed = errors.New("chat stream failed")

// Consume reads events until done, error, channel close or ctx
// cancellation. Tokens accumulate into the reply; onUpdate, when set, sees
// the growing buffer after every token. A done event carrying content
// replaces the accumulated buffer.
func Consume(ctx context.Context, events <-chan Event, onUpdate func(string)) (Reply, error) {
	var (
		reply Reply
		buf   []byte
	)
	for {
		select {
		case <-ctx.Done():
			reply.Content = string(buf)
			return reply, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				reply.Content = string(buf)
				return reply, io.ErrUnexpectedEOF
			}
			switch ev.Type {
			case EventStart:
				reply.Stage = ev.Stage
			case EventToken:
				buf = append(buf, ev.Token...)
				if onUpdate != nil {
					onUpdate(string(buf))
				}
			case EventDone:
				reply.Content = string(buf)
				if ev.Content != "" {
					reply.Content = ev.Content
				}
				if ev.Stage != "" {
					reply.Stage = ev.Stage
				}
				reply.MessageID = ev.MessageID
				return reply, nil
			case EventError:
				reply.Content = string(buf)
				return reply, errors.Join(ErrStreamFailed, errors.New(ev.Error))
			}
		}
	}
}
