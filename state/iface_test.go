package state

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterfaceFIFO(t *testing.T) {
	intf := NewInterface(4)
	for _, p := range []string{"a", "b", "c"} {
		require.NoError(t, intf.Send([]byte(p), false))
		require.NoError(t, intf.Deliver([]byte(p)))
	}
	for _, want := range []string{"a", "b", "c"} {
		got, ok := intf.Collect()
		require.True(t, ok)
		assert.Equal(t, want, string(got))
		got, ok = intf.TryReceive()
		require.True(t, ok)
		assert.Equal(t, want, string(got))
	}
}

func TestInterfaceEmpty(t *testing.T) {
	intf := NewInterface(1)
	pkt, ok := intf.TryReceive()
	assert.False(t, ok)
	assert.Nil(t, pkt)
	_, ok = intf.Collect()
	assert.False(t, ok)
}

func TestSendDropOnFull(t *testing.T) {
	intf := NewInterface(2)
	require.NoError(t, intf.Send([]byte("1"), false))
	require.NoError(t, intf.Send([]byte("2"), false))

	done := make(chan error)
	go func() {
		done <- intf.Send([]byte("3"), false)
	}()
	var err error
	select {
	case err = <-done:
	case <-time.After(time.Second):
		t.Fatal("non-blocking send blocked")
	}
	assert.ErrorIs(t, err, ErrQueueFull)
	var qf *QueueFullError
	require.True(t, errors.As(err, &qf))
	assert.Equal(t, 2, qf.Size)

	in, out := intf.Len()
	assert.Equal(t, 0, in)
	assert.Equal(t, 2, out)
	first, _ := intf.Collect()
	second, _ := intf.Collect()
	assert.Equal(t, []string{"1", "2"}, []string{string(first), string(second)})
}

func TestDeliverDropOnFull(t *testing.T) {
	intf := NewInterface(1)
	require.NoError(t, intf.Deliver([]byte("x")))
	assert.ErrorIs(t, intf.Deliver([]byte("y")), ErrQueueFull)
	in, _ := intf.Len()
	assert.Equal(t, 1, in)
}

func TestBlockingSendWaitsForSpace(t *testing.T) {
	intf := NewInterface(1)
	require.NoError(t, intf.Send([]byte("1"), true))

	done := make(chan error)
	go func() {
		done <- intf.Send([]byte("2"), true)
	}()
	select {
	case <-done:
		t.Fatal("blocking send returned while the queue was full")
	case <-time.After(20 * time.Millisecond):
	}
	_, ok := intf.Collect()
	require.True(t, ok)
	require.NoError(t, <-done)
	got, _ := intf.Collect()
	assert.Equal(t, "2", string(got))
}

func TestDefaultQueueSize(t *testing.T) {
	assert.Equal(t, DefaultQueueSize, NewInterface(0).Cap())
}
