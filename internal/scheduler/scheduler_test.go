package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/triplan/internal/feed"
)

type fakeCompleter struct {
	cutoff time.Time
	ids    []string
	err    error
}

func (f *fakeCompleter) CompleteProjectsEndedBefore(_ context.Context, cutoff time.Time) ([]string, error) {
	f.cutoff = cutoff
	return f.ids, f.err
}

type fakePublisher struct{ events []feed.Event }

func (p *fakePublisher) Publish(ev feed.Event) { p.events = append(p.events, ev) }

func TestSweep(t *testing.T) {
	store := &fakeCompleter{ids: []string{"p1", "p2"}}
	events := &fakePublisher{}
	s := New(store, events, "@hourly")
	s.now = func() time.Time { return time.Date(2024, 3, 5, 17, 45, 0, 0, time.UTC) }

	ids, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), store.cutoff)

	require.Len(t, events.events, 2)
	assert.Equal(t, feed.ResourceProjects, events.events[0].Resource)
	assert.Equal(t, "p2", events.events[1].ProjectID)
}

func TestSweepError(t *testing.T) {
	s := New(&fakeCompleter{err: errors.New("db locked")}, nil, "@hourly")
	_, err := s.Sweep(context.Background())
	assert.ErrorContains(t, err, "db locked")
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(&fakeCompleter{}, nil, "every now and then")
	assert.Error(t, s.Start())
}
