package feed

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBridgeEnqueueNeverBlocksPublish(t *testing.T) {
	hub := NewHub()
	bridge := newRedisBridge(nil, hub, 1)
	hub.SetForwarder(bridge.enqueue)

	var local recorder
	hub.Subscribe(AllResources, local.add)

	// Nothing drains the outbox, as with a hung Redis
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			hub.Publish(Event{Resource: ResourceBills, Action: ActionCreated, ProjectID: "p1", ID: "b1"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on the bridge")
	}
	assert.Len(t, local.list(), 3)
	assert.Len(t, bridge.outbox, 1)
}

// Requires a reachable Redis, e.g. TRIPLAN_TEST_REDIS_URL=redis://localhost:6379/0
func TestRedisBridgeRelaysBetweenHubs(t *testing.T) {
	url := os.Getenv("TRIPLAN_TEST_REDIS_URL")
	if url == "" {
		t.Skip("TRIPLAN_TEST_REDIS_URL not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hubA, hubB := NewHub(), NewHub()
	bridgeA, err := NewRedisBridge(ctx, url, hubA)
	require.NoError(t, err)
	defer bridgeA.Close()
	bridgeB, err := NewRedisBridge(ctx, url, hubB)
	require.NoError(t, err)
	defer bridgeB.Close()

	go bridgeA.Run(ctx)
	go bridgeB.Run(ctx)

	var onA, onB recorder
	hubA.Subscribe(AllResources, onA.add)
	hubB.Subscribe(AllResources, onB.add)

	// Wait until both bridges installed their forwarders
	require.Eventually(t, func() bool {
		hubA.mu.RLock()
		defer hubA.mu.RUnlock()
		hubB.mu.RLock()
		defer hubB.mu.RUnlock()
		return hubA.forward != nil && hubB.forward != nil
	}, 5*time.Second, 20*time.Millisecond)

	hubA.Publish(Event{Resource: ResourceBills, Action: ActionCreated, ProjectID: "p1", ID: "b1"})

	require.Eventually(t, func() bool { return len(onB.list()) == 1 }, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "b1", onB.list()[0].ID)

	// A does not receive its own event twice
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, onA.list(), 1)
}
