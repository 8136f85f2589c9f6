package health

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// SQL adapts a database/sql handle.
func SQL(db *sql.DB) Pinger {
	return PingFunc(func(ctx context.Context) error {
		if db == nil {
			return nil
		}
		return db.PingContext(ctx)
	})
}

type check struct {
	name   string
	pinger Pinger
}

// Probe runs named dependency checks for readiness.
type Probe struct {
	timeout time.Duration
	checks  []check
}

func NewProbe(timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Probe{timeout: timeout}
}

func (p *Probe) Add(name string, pinger Pinger) *Probe {
	p.checks = append(p.checks, check{name: name, pinger: pinger})
	return p
}

// Check returns the first failing dependency, or nil when all are reachable.
func (p *Probe) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	for _, c := range p.checks {
		if err := c.pinger.Ping(ctx); err != nil {
			return fmt.Errorf("%s not ready: %w", c.name, err)
		}
	}
	return nil
}
