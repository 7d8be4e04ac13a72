package core

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/encodeous/dvroute/protocol"
	"github.com/encodeous/dvroute/state"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type HarnessEvent struct {
	Message string
	Args    []any
}

func MakeEvent(msg string, args ...any) HarnessEvent {
	return HarnessEvent{
		Message: msg,
		Args:    args,
	}
}

type HarnessEvents []HarnessEvent

func (h HarnessEvents) String() string {
	out := make([]string, 0)
	for _, action := range h {
		cur := action.Message
		for _, arg := range action.Args {
			cur += " " + fmt.Sprint(arg)
		}
		out = append(out, cur)
	}
	slices.Sort(out)
	return strings.Join(out, "\n")
}

func (e HarnessEvents) contains(msg string, args ...any) bool {
	for _, event := range e {
		if event.Message != msg || len(event.Args) < len(args) {
			continue
		}
		match := true
		for i, arg := range args {
			if !cmp.Equal(event.Args[i], arg) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func (e HarnessEvents) AssertContains(t *testing.T, msg string, args ...any) {
	if e.contains(msg, args...) {
		return
	}
	t.Fatal("Expected event not found: ", msg, " with args: ", args, " in ", e)
}

func (e HarnessEvents) AssertNotContains(t *testing.T, msg string, args ...any) {
	if e.contains(msg, args...) {
		t.Fatal("Unexpected event found: ", msg, " with args: ", args, " in ", e)
	}
}

func (e HarnessEvents) Count(msg string) int {
	n := 0
	for _, event := range e {
		if event.Message == msg {
			n++
		}
	}
	return n
}

func testEnv(queueSize int, blocking bool) *state.Env {
	return &state.Env{
		Log:             slog.New(slog.DiscardHandler),
		QueueSize:       queueSize,
		BlockingForward: blocking,
	}
}

func newTestRouter(id state.NodeId, costs state.CostTable) *Router {
	return NewRouter(state.RouterCfg{Id: id, Costs: costs}, testEnv(16, true))
}

// Inject places a raw packet on the inbound queue of interface intf.
func Inject(t *testing.T, r *Router, intf int, pkt []byte) {
	require.NoError(t, r.Intf[intf].Deliver(pkt))
}

func InjectData(t *testing.T, r *Router, intf int, dst state.NodeId, data string) {
	pkt, err := protocol.Encode(string(dst), protocol.Data, []byte(data))
	require.NoError(t, err)
	Inject(t, r, intf, pkt)
}

func InjectRoutes(t *testing.T, r *Router, intf int, reporter state.NodeId, vec state.Vector) {
	payload, err := protocol.EncodeRoutes(string(reporter), mapToVector(vec))
	require.NoError(t, err)
	pkt, err := protocol.Encode(protocol.Broadcast, protocol.Control, payload)
	require.NoError(t, err)
	Inject(t, r, intf, pkt)
}

// GetActions drains every outbound queue of r and decodes what the router sent.
// Data packets become DATA <intf> <dst> <payload>, control packets become
// ROUTES <intf> <reporter> <vector>.
func GetActions(t *testing.T, r *Router) HarnessEvents {
	out := make(HarnessEvents, 0)
	for i, intf := range r.Intf {
		for {
			raw, ok := intf.Collect()
			if !ok {
				break
			}
			p, err := protocol.Decode(raw)
			require.NoError(t, err)
			switch p.Proto {
			case protocol.Data:
				out = append(out, MakeEvent("DATA", i, state.NodeId(p.Dst), string(p.Data)))
			case protocol.Control:
				require.Equal(t, protocol.Broadcast, p.Dst)
				src, vec, err := protocol.DecodeRoutes(p.Data)
				require.NoError(t, err)
				out = append(out, MakeEvent("ROUTES", i, state.NodeId(src), mapFromVector(vec)))
			}
		}
	}
	return out
}
