package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
)

// slowSweeper finishes its in-flight sweep only after ctx is cancelled.
type slowSweeper struct {
	started  chan struct{}
	finished atomic.Bool
}

func (s *slowSweeper) Sweep(context.Context) (*ports.SweepReport, error) {
	return &ports.SweepReport{}, nil
}

func (s *slowSweeper) Run(ctx context.Context, _ time.Duration) {
	close(s.started)
	<-ctx.Done()
	time.Sleep(50 * time.Millisecond)
	s.finished.Store(true)
}

func TestStartSweeperWaitsForInFlightSweep(t *testing.T) {
	sweeper := &slowSweeper{started: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	wg := startSweeper(ctx, sweeper, time.Minute)
	select {
	case <-sweeper.started:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper was not started")
	}

	cancel()
	wg.Wait()
	assert.True(t, sweeper.finished.Load())
}

func TestStartSweeperDisabled(t *testing.T) {
	sweeper := &slowSweeper{started: make(chan struct{})}

	wg := startSweeper(context.Background(), sweeper, 0)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "wait blocked although no sweeper runs")
	}
	select {
	case <-sweeper.started:
		t.Fatal("sweeper started with a zero interval")
	default:
	}
}
