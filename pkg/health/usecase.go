package health

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Report maps checker name to "ok" or the failure text.
type Report struct {
	Checks map[string]string `json:"checks"`
	failed bool
}

func (r Report) OK() bool { return !r.failed }

// ReadinessUseCase describes readiness verification.
type ReadinessUseCase interface {
	Ready(ctx context.Context) Report
}

type service struct {
	checkers []Checker
}

// NewService aggregates dependency checkers. Nil checkers are skipped.
func NewService(checkers ...Checker) ReadinessUseCase {
	s := &service{}
	for _, ch := range checkers {
		if ch != nil {
			s.checkers = append(s.checkers, ch)
		}
	}
	return s
}

// Ready runs all checks concurrently and waits for every one of them.
func (s *service) Ready(ctx context.Context) Report {
	var (
		mu  sync.Mutex
		rep = Report{Checks: make(map[string]string, len(s.checkers))}
		g   errgroup.Group
	)
	for _, ch := range s.checkers {
		g.Go(func() error {
			status := "ok"
			err := ch.Check(ctx)
			if err != nil {
				status = err.Error()
			}
			mu.Lock()
			rep.Checks[ch.Name()] = status
			if err != nil {
				rep.failed = true
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return rep
}
