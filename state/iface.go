package state

import (
	"errors"
	"fmt"
)

var ErrQueueFull = errors.New("queue full")

// QueueFullError is returned by a non-blocking push onto a full queue. The packet is
// not buffered or retried.
type QueueFullError struct {
	Queue string
	Size  int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("%s queue full (size %d)", e.Queue, e.Size)
}

func (e *QueueFullError) Is(target error) bool {
	return target == ErrQueueFull
}

// Interface is one physical link endpoint: a pair of bounded FIFO queues of encoded
// packets. The owning node reads In and writes Out; the link layer does the reverse.
type Interface struct {
	in  chan []byte
	out chan []byte
}

// NewInterface creates an interface whose queues hold size packets each. A size of 0
// uses DefaultQueueSize.
func NewInterface(size int) *Interface {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Interface{
		in:  make(chan []byte, size),
		out: make(chan []byte, size),
	}
}

func tryPop(q chan []byte) ([]byte, bool) {
	select {
	case pkt := <-q:
		return pkt, true
	default:
		return nil, false
	}
}

func push(q chan []byte, name string, pkt []byte, blocking bool) error {
	if blocking {
		q <- pkt
		return nil
	}
	select {
	case q <- pkt:
		return nil
	default:
		return &QueueFullError{Queue: name, Size: cap(q)}
	}
}

// TryReceive pops the next inbound packet without blocking.
func (i *Interface) TryReceive() ([]byte, bool) {
	return tryPop(i.in)
}

// Send pushes pkt onto the outbound queue. With blocking set it waits for space and
// cannot be interrupted; otherwise a full queue fails with ErrQueueFull.
func (i *Interface) Send(pkt []byte, blocking bool) error {
	return push(i.out, "out", pkt, blocking)
}

// Deliver pushes pkt onto the inbound queue without blocking.
func (i *Interface) Deliver(pkt []byte) error {
	return push(i.in, "in", pkt, false)
}

// Collect pops the next outbound packet without blocking.
func (i *Interface) Collect() ([]byte, bool) {
	return tryPop(i.out)
}

// Len returns the number of packets waiting in the inbound and outbound queues.
func (i *Interface) Len() (in, out int) {
	return len(i.in), len(i.out)
}

// Cap returns the capacity of each queue.
func (i *Interface) Cap() int {
	return cap(i.in)
}
