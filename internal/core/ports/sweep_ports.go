package ports

import (
	"context"
	"time"
)

type SweepReport struct {
	Closed     int
	Backfilled int
	Proposals  int
}

type SweepService interface {
	Sweep(ctx context.Context) (*SweepReport, error)
	Run(ctx context.Context, interval time.Duration)
}
