// Package health aggregates component availability into a single report for
// the readiness endpoint.
package health

import "context"

// Status is the aggregated readiness of the service.
type Status string

const (
	// Healthy means every checked component answered.
	Healthy Status = "ok"
	// Degraded means at least one component failed its check.
	Degraded Status = "degraded"
)

// CheckResult is the outcome of a single component check.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Report carries the aggregate status plus per-component outcomes.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service runs the component checks.
type Service struct {
	store     StorePinger
	embedding EmbeddingChecker
}

// New creates a Service. embedding can be nil when the provider exposes no
// health probe; its check is then omitted from the report.
func New(store StorePinger, embedding EmbeddingChecker) *Service {
	return &Service{store: store, embedding: embedding}
}

// Check pings each component and aggregates the outcomes. Any failing check
// degrades the overall status.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["database"] = CheckOK
	if err := s.store.Ping(ctx); err != nil {
		checks["database"] = CheckError
	}

	if s.embedding != nil {
		checks["embedding"] = CheckOK
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
