package logger

import "context"

// CancelToken is the cooperative cancellation contract Run observes between
// poll cycles. It is never checked mid-write: a message already pulled off
// the queue is always written before cancellation is honored.
type CancelToken interface {
	Cancelled() bool
}

type ctxToken struct {
	ctx context.Context
}

func (t ctxToken) Cancelled() bool {
	return t.ctx.Err() != nil
}

// FromContext adapts a context.Context into a CancelToken. Cancelling ctx
// (or letting its deadline pass) is observed by Run at its next poll cycle,
// not mid-write.
func FromContext(ctx context.Context) CancelToken {
	return ctxToken{ctx: ctx}
}
