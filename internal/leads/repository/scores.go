package repository

import (
	"context"
	"errors"
	"fmt"

	"dealer_backend/internal/leads/domain"
	"dealer_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveScore writes the snapshot and returns the total it replaced.
func (r *Repo) SaveScore(ctx context.Context, leadID, dealerID uuid.UUID, snapshot ScoreSnapshot) (*int, error) {
	var previous *int
	err := r.pool.QueryRow(ctx, `
		WITH prev AS (
			SELECT score FROM leads WHERE id = $1 AND dealer_id = $2 FOR UPDATE
		)
		UPDATE leads l
		SET score = $3, score_breakdown = $4, score_version = $5, score_updated_at = $6
		FROM prev
		WHERE l.id = $1 AND l.dealer_id = $2
		RETURNING prev.score`,
		leadID, dealerID, snapshot.Total, snapshot.Breakdown, snapshot.Version, snapshot.ComputedAt,
	).Scan(&previous)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound()
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to save lead score", err).WithOp("leads.SaveScore")
	}
	return previous, nil
}

// ListOpenLeadIDs returns leads still in the pipeline (not won or lost).
func (r *Repo) ListOpenLeadIDs(ctx context.Context, dealerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM leads
		WHERE dealer_id = $1 AND status NOT IN ($2, $3)
		ORDER BY created_at DESC`,
		dealerID, string(domain.StatusWon), string(domain.StatusLost))
	if err != nil {
		return nil, fmt.Errorf("list open lead ids: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

// ListDealerIDs returns every dealer that owns at least one open lead.
func (r *Repo) ListDealerIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT dealer_id FROM leads
		WHERE status NOT IN ($1, $2)`,
		string(domain.StatusWon), string(domain.StatusLost))
	if err != nil {
		return nil, fmt.Errorf("list dealer ids: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func notFound() error {
	return apperr.NotFound(leadNotFoundMessage)
}
