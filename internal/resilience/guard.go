package resilience

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Guard combines an outbound rate limit with a breaker for one backend.
// Failed calls are not retried.
type Guard struct {
	Limiter *rate.Limiter
	Breaker *Breaker
}

// NewGuard builds a guard allowing perSec calls with the given burst.
// A non-positive perSec disables limiting.
func NewGuard(b *Breaker, perSec float64, burst int) *Guard {
	lim := rate.NewLimiter(rate.Inf, 0)
	if perSec > 0 {
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(perSec), burst)
	}
	return &Guard{Limiter: lim, Breaker: b}
}

// Do runs fn under the guard. Waiting for a rate token respects ctx.
func Do[T any](ctx context.Context, g *Guard, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := g.Limiter.Wait(ctx); err != nil {
		return zero, eris.Wrap(err, "resilience: rate limit wait")
	}
	return Call(ctx, g.Breaker, fn)
}
