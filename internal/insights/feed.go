package insights

import (
	"context"
	"math/rand/v2"
	"time"
)

// Feed emits random operational insights: the first after Initial, then
// one every Every, until the context ends.
type Feed struct {
	Rand    *rand.Rand
	Initial time.Duration
	Every   time.Duration
	Catalog []Insight
}

// NewFeed returns a Feed with the dashboard cadence (10s, then 60s).
func NewFeed() *Feed {
	return &Feed{
		Rand:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Initial: 10 * time.Second,
		Every:   60 * time.Second,
		Catalog: Operational,
	}
}

// Next draws one insight from the catalog.
func (f *Feed) Next() Insight {
	return f.Catalog[f.Rand.IntN(len(f.Catalog))]
}

// Run calls emit for each insight until ctx is done or emit fails. It
// returns nil on context cancellation.
func (f *Feed) Run(ctx context.Context, emit func(Insight) error) error {
	first := time.NewTimer(f.Initial)
	defer first.Stop()
	tick := time.NewTicker(f.Every)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-first.C:
		case <-tick.C:
		}
		if err := emit(f.Next()); err != nil {
			return err
		}
	}
}
