package roles

import (
	"context"
	"fmt"
	"log"
	"time"

	"vizplan/internal/profile"
)

// Suggester proposes role assignments and charts from column profiles.
// Implementations may call external services; the assigner bounds each
// attempt with a timeout.
type Suggester interface {
	Suggest(ctx context.Context, profiles *profile.Profiles, samples []map[string]string) (*Suggestion, error)
}

// Assigner produces the role assignment for a profiled dataset. With a
// suggester it tries that first; any failure, timeout, or invalid proposal
// falls back to the deterministic heuristic.
type Assigner struct {
	suggester Suggester
	timeout   time.Duration
	retries   int
}

// NewAssigner creates an assigner. A nil suggester means heuristic-only.
func NewAssigner(suggester Suggester, timeout time.Duration, retries int) *Assigner {
	if retries < 0 {
		retries = 0
	}
	return &Assigner{suggester: suggester, timeout: timeout, retries: retries}
}

// Assign determines roles for the profiled columns. It never fails: the
// heuristic path always produces a usable assignment.
func (a *Assigner) Assign(ctx context.Context, profiles *profile.Profiles, samples []map[string]string) *Outcome {
	if a.suggester == nil {
		return &Outcome{
			Roles:          Heuristic(profiles),
			PlanSource:     SourceFallback,
			FallbackReason: "no suggester configured",
		}
	}

	var lastErr error
	for attempt := 0; attempt <= a.retries; attempt++ {
		sug, err := a.trySuggest(ctx, profiles, samples)
		if err != nil {
			lastErr = err
			log.Printf("Suggester attempt %d/%d failed: %v", attempt+1, a.retries+1, err)
			continue
		}
		return &Outcome{
			Roles:      sug.Roles,
			PlanSource: SourceLLM,
			Suggested:  sug.Charts,
		}
	}

	return &Outcome{
		Roles:          Heuristic(profiles),
		PlanSource:     SourceFallback,
		FallbackReason: fmt.Sprintf("suggester failed: %v", lastErr),
	}
}

func (a *Assigner) trySuggest(ctx context.Context, profiles *profile.Profiles, samples []map[string]string) (*Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	sug, err := a.suggester.Suggest(ctx, profiles, samples)
	if err != nil {
		return nil, err
	}
	if sug == nil {
		return nil, fmt.Errorf("empty suggestion")
	}
	if !sug.Roles.Valid(profiles) {
		return nil, fmt.Errorf("suggestion references unknown or mistyped columns")
	}
	return sug, nil
}
