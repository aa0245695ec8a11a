package domain

import "time"

// Badge identifiers awarded by the evaluator.
const (
	BadgeConsistent = "CONSISTENT"
	BadgeCleaner    = "CLEANER"
	BadgePunctual   = "PUNCTUAL"
	BadgeLeader     = "LEADER"
)

// BadgePredicate decides whether a resident is eligible for a badge given
// their completed-task history across all groups.
type BadgePredicate func(resident Resident, history []TaskRecord) bool

// AggregateFunc computes a caller-defined performance aggregate for a
// resident. The cleaner rule is built on one because the exact aggregate
// source varies by deployment.
type AggregateFunc func(resident Resident, history []TaskRecord) float64

// Evaluator runs stateless badge rules over a resident's task history. Only
// badges not already held are reported, so evaluation after every completion
// stays idempotent.
type Evaluator struct {
	settings Settings
	now      func() time.Time
	rules    map[string]BadgePredicate
}

// EvaluatorOption configures optional behaviour for the Evaluator.
type EvaluatorOption func(*Evaluator)

// WithEvaluatorClock overrides the time source, used by tests.
func WithEvaluatorClock(now func() time.Time) EvaluatorOption {
	return func(e *Evaluator) {
		e.now = now
	}
}

// WithBadgeRule registers or replaces a pluggable rule for the named badge.
func WithBadgeRule(badgeType string, rule BadgePredicate) EvaluatorOption {
	return func(e *Evaluator) {
		e.rules[badgeType] = rule
	}
}

// NewEvaluator constructs an Evaluator carrying the built-in consistent rule.
// Cleaner and punctual rules are injectable via WithBadgeRule.
func NewEvaluator(settings Settings, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		settings: settings,
		now:      time.Now,
		rules:    make(map[string]BadgePredicate),
	}
	e.rules[BadgeConsistent] = e.consistentRule
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns the badge identifiers the resident newly qualifies for.
// Already-held badges are never returned.
func (e *Evaluator) Evaluate(resident Resident, groups []CleaningGroup) []string {
	history := ResidentHistory(resident.ID, groups)

	newly := make([]string, 0)
	for _, badgeType := range []string{BadgeConsistent, BadgePunctual, BadgeCleaner, BadgeLeader} {
		rule, ok := e.rules[badgeType]
		if !ok || resident.HasBadge(badgeType) {
			continue
		}
		if rule(resident, history) {
			newly = append(newly, badgeType)
		}
	}
	return newly
}

// consistentRule: at least N completed tasks inside the rolling window.
func (e *Evaluator) consistentRule(resident Resident, history []TaskRecord) bool {
	cutoff := e.now().UTC().Add(-e.settings.ConsistentBadgeWindow)
	count := 0
	for _, rec := range history {
		if !rec.RecordedAt.Before(cutoff) {
			count++
		}
	}
	return count >= e.settings.ConsistentBadgeMinTasks
}

// CleanerRule builds the pluggable cleaner predicate from a caller-supplied
// aggregate and the configured threshold.
func CleanerRule(threshold float64, aggregate AggregateFunc) BadgePredicate {
	return func(resident Resident, history []TaskRecord) bool {
		return aggregate(resident, history) > threshold
	}
}

// ResidentHistory collects the completed-task records the resident took part
// in, across every group they belong to.
func ResidentHistory(residentID string, groups []CleaningGroup) []TaskRecord {
	history := make([]TaskRecord, 0)
	for i := range groups {
		group := &groups[i]
		if !group.HasMember(residentID) {
			continue
		}
		for _, rec := range group.CompletedTasks {
			for _, member := range rec.Members {
				if member == residentID {
					history = append(history, rec)
					break
				}
			}
		}
	}
	return history
}
