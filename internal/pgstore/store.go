package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/registrystats/internal/model"
	"github.com/clinicore/registrystats/internal/normalize"
	embedsql "github.com/clinicore/registrystats/internal/sql"
)

// Store reads and seeds registry records over a shared pool.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps a pool in a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// FetchSnapshot materializes the full record set in one pass. The engine
// computes over the returned value; the store is not consulted again.
func (s *Store) FetchSnapshot(ctx context.Context) (*model.Snapshot, error) {
	snap := &model.Snapshot{}

	rows, err := s.pool.Query(ctx, embedsql.ListEpisodes)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	for rows.Next() {
		var e model.Episode
		if err := rows.Scan(&e.ID, &e.PatientName, &e.Type, &e.Status,
			&e.StartDate, &e.CloseDate, &e.ClinicID, &e.ClinicianID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		snap.Episodes = append(snap.Episodes, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}

	rows, err = s.pool.Query(ctx, embedsql.ListCareTargets)
	if err != nil {
		return nil, fmt.Errorf("list care targets: %w", err)
	}
	for rows.Next() {
		var t model.CareTarget
		if err := rows.Scan(&t.ID, &t.EpisodeID, &t.Name, &t.Domain, &t.BodyRegion,
			&t.StartDate, &t.DischargeDate, &t.DischargeReason,
			&t.Override, &t.OverrideReason); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan care target: %w", err)
		}
		snap.CareTargets = append(snap.CareTargets, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list care targets: %w", err)
	}

	rows, err = s.pool.Query(ctx, embedsql.ListOutcomeScores)
	if err != nil {
		return nil, fmt.Errorf("list outcome scores: %w", err)
	}
	for rows.Next() {
		var sc model.OutcomeScore
		if err := rows.Scan(&sc.CareTargetID, &sc.InstrumentCode, &sc.ScoreType,
			&sc.Score, &sc.RecordedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan outcome score: %w", err)
		}
		// Intake forms are inconsistent about instrument code formatting.
		sc.InstrumentCode = normalize.Code(sc.InstrumentCode)
		snap.Scores = append(snap.Scores, sc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list outcome scores: %w", err)
	}

	return snap, nil
}

// InsertEpisode seeds one episode. Existing ids are left untouched.
func (s *Store) InsertEpisode(ctx context.Context, e *model.Episode) error {
	_, err := s.pool.Exec(ctx, embedsql.InsertEpisode,
		e.ID, e.PatientName, string(e.Type), string(e.Status),
		e.StartDate, e.CloseDate, e.ClinicID, e.ClinicianID)
	if err != nil {
		return fmt.Errorf("insert episode %s: %w", e.ID, err)
	}
	return nil
}

// InsertCareTarget seeds one care target. Existing ids are left untouched.
func (s *Store) InsertCareTarget(ctx context.Context, t *model.CareTarget) error {
	_, err := s.pool.Exec(ctx, embedsql.InsertCareTarget,
		t.ID, t.EpisodeID, t.Name, t.Domain, t.BodyRegion,
		t.StartDate, t.DischargeDate, t.DischargeReason,
		t.Override, t.OverrideReason)
	if err != nil {
		return fmt.Errorf("insert care target %s: %w", t.ID, err)
	}
	return nil
}
