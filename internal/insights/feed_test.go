package insights

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeed_Cadence(t *testing.T) {
	f := NewFeed()
	assert.Equal(t, 10*time.Second, f.Initial)
	assert.Equal(t, 60*time.Second, f.Every)
	assert.Len(t, f.Catalog, 18)
}

func TestFeed_Next(t *testing.T) {
	f := NewFeed()
	f.Rand = rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100; i++ {
		ins := f.Next()
		assert.NotEmpty(t, ins.Action)
		assert.Contains(t, []Severity{Success, Info, Warning, Critical}, ins.Type)
	}
}

func TestFeed_RunEmitsUntilCancelled(t *testing.T) {
	f := &Feed{
		Rand:    rand.New(rand.NewPCG(3, 4)),
		Initial: 5 * time.Millisecond,
		Every:   10 * time.Millisecond,
		Catalog: Operational,
	}
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	var got []Insight
	done := make(chan error, 1)
	go func() {
		done <- f.Run(ctx, func(i Insight) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, i)
			if len(got) == 3 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("feed did not stop")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, len(got), 3)
}

func TestFeed_RunStopsOnEmitError(t *testing.T) {
	f := &Feed{
		Rand:    rand.New(rand.NewPCG(5, 6)),
		Initial: time.Millisecond,
		Every:   time.Hour,
		Catalog: Operational,
	}
	boom := errors.New("client gone")

	err := f.Run(context.Background(), func(Insight) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestFeed_RunNothingBeforeInitial(t *testing.T) {
	f := &Feed{
		Rand:    rand.New(rand.NewPCG(7, 8)),
		Initial: time.Hour,
		Every:   time.Hour,
		Catalog: Operational,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	calls := 0
	require.NoError(t, f.Run(ctx, func(Insight) error { calls++; return nil }))
	assert.Zero(t, calls)
}
