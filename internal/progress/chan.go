package progress

import "context"

// Chan forwards messages from any number of producer goroutines onto a
// single channel, so one consumer can apply them in order. Messages are
// never dropped: Report blocks until the consumer takes the message or ctx
// is done.
type Chan struct {
	ctx context.Context
	ch  chan<- *Message
}

func NewChan(ctx context.Context, ch chan<- *Message) Chan {
	return Chan{ctx: ctx, ch: ch}
}

func (c Chan) Report(msg *Message) {
	if msg == nil {
		return
	}
	select {
	case c.ch <- msg:
	case <-c.ctx.Done():
	}
}
