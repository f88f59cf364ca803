package authz

import (
	"context"
	"fmt"
	"time"
)

// InspectionResult captures the full outcome of an authorization evaluation.
type InspectionResult struct {
	Allowed     bool
	Mode        Mode
	MatchedRole string
	Trace       []string
	Latency     time.Duration
	Principal   Principal
	Operation   Operation
}

// Inspect evaluates a request and returns diagnostic information for debugging.
func (s *Service) Inspect(ctx context.Context, p Principal, op Operation) (InspectionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := InspectionResult{
		Mode:      s.Mode(),
		Principal: NewPrincipal(p.Identity, p.Roles...),
		Operation: op,
	}

	start := time.Now()
	for _, role := range p.Roles {
		allowed, trace, err := s.enforcer.EnforceEx(SubjectForRole(role), Object, string(op))
		if err != nil {
			return InspectionResult{}, fmt.Errorf("authz: inspect failed: %w", err)
		}
		if allowed {
			result.Allowed = true
			result.MatchedRole = role
			result.Trace = append([]string{}, trace...)
			break
		}
	}
	result.Latency = time.Since(start)
	recordDebugMetrics(result.Allowed, result.Latency)
	return result, nil
}
