package scoring

import (
	"context"
	"fmt"

	"github.com/okian/xpoints/internal/domain/model"
	"github.com/okian/xpoints/internal/domain/rules"
)

// Scorer computes a PointsResult from a record. Implementations honour ctx so a
// worker pool can abandon a batch.
type Scorer interface {
	Score(ctx context.Context, rec *model.PlayerMatchRecord) (model.PointsResult, error)
}

// Option applies a configuration option to the RuleScorer.
type Option func(*RuleScorer)

// WithRuleSet sets the rule set to score under.
func WithRuleSet(rs rules.RuleSet) Option {
	return func(s *RuleScorer) {
		s.rules = rs
	}
}

// RuleScorer implements Scorer over one fixed rule set.
type RuleScorer struct {
	rules rules.RuleSet
}

// NewRuleScorer creates a scorer using the default season unless overridden.
func NewRuleScorer(opts ...Option) *RuleScorer {
	s := &RuleScorer{rules: rules.Season2024()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns a copy of the scorer's rule set.
func (s *RuleScorer) Rules() rules.RuleSet { return s.rules }

// Score computes the result for rec.
func (s *RuleScorer) Score(ctx context.Context, rec *model.PlayerMatchRecord) (model.PointsResult, error) {
	if err := ctx.Err(); err != nil {
		return model.PointsResult{}, fmt.Errorf("context cancelled: %w", err)
	}
	return Compute(rec, s.rules), nil
}
