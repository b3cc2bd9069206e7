package health

import (
	"context"
	"time"
)

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

// Pinger is any dependency that can report liveness.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	checks  map[string]Pinger
	timeout time.Duration
}

// NewService constructs a health service. Nil checks are skipped so callers
// can pass optional dependencies directly.
func NewService(checks map[string]Pinger) *Service {
	s := &Service{checks: map[string]Pinger{}, timeout: 2 * time.Second}
	for name, p := range checks {
		if p != nil {
			s.checks[name] = p
		}
	}
	return s
}

// Report is the health payload served at /api/health.
type Report struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// Status runs every check and reports DOWN if any fails.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{Status: StatusUp}
	if s == nil || len(s.checks) == 0 {
		return report
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report.Components = make(map[string]string, len(s.checks))
	for name, p := range s.checks {
		if err := p.PingContext(ctx); err != nil {
			report.Components[name] = StatusDown
			report.Status = StatusDown
			continue
		}
		report.Components[name] = StatusUp
	}
	return report
}
