// Package logger is a thin façade over an MPSC queue: any number of
// producer goroutines call Post, and a single consumer goroutine calls Run
// to drain the queue into a byte sink.
package logger

import (
	"fmt"
	"io"
	"runtime"

	"github.com/heidenstedt/mpsclog/internal/queue"
	"github.com/heidenstedt/mpsclog/pkg/config"
	"github.com/heidenstedt/mpsclog/pkg/linkedqueue"
	"github.com/heidenstedt/mpsclog/pkg/ringqueue"
)

// Logger composes a queue variant and a byte sink. It has no other mutable
// state: producers call Post, the single consumer calls Run.
type Logger struct {
	q    queue.Queue[string]
	sink io.Writer
}

// New builds a Logger using the queue variant named in cfg.Variant ("ring"
// or "linked"; empty defaults to "ring"). Messages written by Run go to
// sink.
func New(cfg config.Config, sink io.Writer) (*Logger, error) {
	switch cfg.Variant {
	case "", "ring":
		rq, err := ringqueue.New[string](cfg.NormalizedRingCapacity())
		if err != nil {
			return nil, err
		}
		return &Logger{q: rq, sink: sink}, nil
	case "linked":
		return &Logger{q: linkedqueue.New[string](), sink: sink}, nil
	default:
		return nil, fmt.Errorf("logger: unknown queue variant %q", cfg.Variant)
	}
}

// Post queues text. Safe to call from any number of goroutines. Spins on
// the queue's push until it is accepted — with the ring variant this
// trades CPU for losslessness at the façade layer while the queue itself
// stays wait-free and never spins internally; with the linked variant the
// first attempt always succeeds.
func (l *Logger) Post(text string) {
	for !l.q.TryPush(text) {
		runtime.Gosched()
	}
}

// Run drains the queue until token reports cancellation, writing each
// pulled message followed by a newline to the sink. Cancellation is
// checked only between poll cycles: a message already pulled is always
// written. Single-consumer only — do not call Run from more than one
// goroutine at a time.
func (l *Logger) Run(token CancelToken) {
	for !token.Cancelled() {
		text, ok := l.q.TryPull()
		if !ok {
			continue
		}
		io.WriteString(l.sink, text)
		io.WriteString(l.sink, "\n")
	}
}
