package optimizer

import "github.com/lspgroup/fleetopt-go/internal/application/assignment"

const defaultProgressBuffer = 16

// ProgressReporter fans assignment heartbeats out to one consumer without
// ever blocking the optimization loop. The channel is bounded; when the
// consumer lags, the oldest pending event is dropped in favor of the newest.
type ProgressReporter struct {
	ch chan assignment.Progress
}

// NewProgressReporter creates a reporter with the given buffer size.
func NewProgressReporter(buffer int) *ProgressReporter {
	if buffer <= 0 {
		buffer = defaultProgressBuffer
	}
	return &ProgressReporter{ch: make(chan assignment.Progress, buffer)}
}

// Publish enqueues an event, dropping the oldest pending one when the buffer
// is full. It never blocks. Publish is meant for a single producer, the
// assignment loop.
func (p *ProgressReporter) Publish(ev assignment.Progress) {
	for {
		select {
		case p.ch <- ev:
			return
		default:
		}
		select {
		case <-p.ch:
		default:
		}
	}
}

// Events returns the consumer side of the reporter.
func (p *ProgressReporter) Events() <-chan assignment.Progress {
	return p.ch
}

// Close releases the channel. Only the producer side may call it, after the
// run finishes.
func (p *ProgressReporter) Close() {
	close(p.ch)
}
