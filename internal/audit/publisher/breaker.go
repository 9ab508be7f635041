package publisher

import (
	"context"
	"errors"
	"log/slog"

	"gdprkv/internal/audit/models"
	"gdprkv/pkg/platform/circuit"
)

// ErrCircuitOpen is returned without calling the downstream publisher while
// its circuit is open.
var ErrCircuitOpen = errors.New("audit publisher circuit open")

// Publisher is the contract Guarded wraps.
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
}

// Guarded stops calling a failing publisher so a broker outage does not add
// a produce timeout to every audit append.
type Guarded struct {
	next    Publisher
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuarded(next Publisher, breaker *circuit.Breaker, logger *slog.Logger) *Guarded {
	return &Guarded{next: next, breaker: breaker, logger: logger}
}

func (g *Guarded) Publish(ctx context.Context, event models.Event) error {
	if !g.breaker.Allow() {
		return ErrCircuitOpen
	}
	if err := g.next.Publish(ctx, event); err != nil {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "audit publisher circuit opened", "breaker", g.breaker.Name(), "error", err)
		}
		return err
	}
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "audit publisher circuit closed", "breaker", g.breaker.Name())
	}
	return nil
}
