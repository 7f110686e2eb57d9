package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/clinicore/registrystats/internal/model"
)

// scoreColumns is the COPY column order for registry.outcome_scores.
var scoreColumns = []string{"care_target_id", "instrument_code", "score_type", "score", "recorded_at"}

// ScoreSource implements pgx.CopyFromSource by reading outcome scores from a
// channel, giving the cohort seeder backpressure against the COPY writer.
type ScoreSource struct {
	ch      <-chan *model.OutcomeScore
	current *model.OutcomeScore
}

// NewScoreSource creates a CopyFromSource backed by a channel.
func NewScoreSource(ch <-chan *model.OutcomeScore) *ScoreSource {
	return &ScoreSource{ch: ch}
}

// Next advances to the next score. Returns false when the channel is closed.
func (s *ScoreSource) Next() bool {
	score, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = score
	return true
}

// Values returns the current score's values in COPY column order.
func (s *ScoreSource) Values() ([]any, error) {
	c := s.current
	return []any{c.CareTargetID, c.InstrumentCode, string(c.ScoreType), c.Score, c.RecordedAt}, nil
}

// Err returns any error encountered during iteration.
func (s *ScoreSource) Err() error {
	return nil
}

var _ pgx.CopyFromSource = (*ScoreSource)(nil)

// CopyScores bulk-loads outcome scores via the COPY protocol.
func (s *Store) CopyScores(ctx context.Context, ch <-chan *model.OutcomeScore) (int64, error) {
	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"registry", "outcome_scores"},
		scoreColumns,
		NewScoreSource(ch),
	)
	if err != nil {
		return n, fmt.Errorf("copy outcome scores: %w", err)
	}
	return n, nil
}
