package session

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Delay returns the retry delay for attempt N (1-based). Jitter scales the
// delay by a factor in [0.5, 1.5).
func (c BackoffConfig) Delay(attempt int, rng *rand.Rand) time.Duration {
	if attempt <= 1 || c.InitialDelay <= 0 {
		return c.jitter(float64(max(c.InitialDelay, 0)), rng)
	}
	mult := c.Multiplier
	if mult < 1.0 {
		mult = 1.0
	}
	delay := float64(c.InitialDelay) * math.Pow(mult, float64(attempt-1))
	if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	return c.jitter(delay, rng)
}

func (c BackoffConfig) jitter(delay float64, rng *rand.Rand) time.Duration {
	if c.Jitter && rng != nil {
		delay *= 0.5 + rng.Float64()
	}
	return time.Duration(delay)
}

// sleep waits for the attempt's delay or until ctx is done.
func (c BackoffConfig) sleep(ctx context.Context, attempt int, rng *rand.Rand) error {
	delay := c.Delay(attempt, rng)
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
