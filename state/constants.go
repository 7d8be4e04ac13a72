package state

import "time"

type Cost uint32

const (
	// INF is the cost of an unknown or unreachable destination.
	INF = ^Cost(0)

	RouterPrefix   = "R"
	RouterIdLength = 2
	HostAddrWidth  = 5
)

var (
	// DefaultQueueSize is used for queues configured with size 0.
	DefaultQueueSize = 1 << 14
	// IdleDelay is how long a node yields after a round that received nothing.
	IdleDelay = time.Millisecond
	// DropReportTTL rate limits repeated drop warnings for the same interface and reason.
	DropReportTTL = time.Second
	// InspectQueueSize bounds pending Router.Inspect requests.
	InspectQueueSize = 16
)
