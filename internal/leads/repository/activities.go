package repository

import (
	"context"
	"fmt"

	"dealer_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// ListActivities returns a lead's activities, oldest first.
func (r *Repo) ListActivities(ctx context.Context, leadID, dealerID uuid.UUID) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, dealer_id, type, body, created_by, created_at
		FROM lead_activities
		WHERE lead_id = $1 AND dealer_id = $2
		ORDER BY created_at ASC`, leadID, dealerID)
	if err != nil {
		return nil, fmt.Errorf("list lead activities: %w", err)
	}
	defer rows.Close()

	items := make([]Activity, 0)
	for rows.Next() {
		item, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead activity: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// ListActivitiesForLeads loads activities for a page of leads in one query, grouped by lead.
func (r *Repo) ListActivitiesForLeads(ctx context.Context, leadIDs []uuid.UUID, dealerID uuid.UUID) (map[uuid.UUID][]Activity, error) {
	grouped := make(map[uuid.UUID][]Activity, len(leadIDs))
	if len(leadIDs) == 0 {
		return grouped, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, dealer_id, type, body, created_by, created_at
		FROM lead_activities
		WHERE dealer_id = $1 AND lead_id = ANY($2)
		ORDER BY created_at ASC`, dealerID, leadIDs)
	if err != nil {
		return nil, fmt.Errorf("list activities for leads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead activity: %w", err)
		}
		grouped[item.LeadID] = append(grouped[item.LeadID], item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return grouped, nil
}

// CreateActivity appends an activity to a lead.
func (r *Repo) CreateActivity(ctx context.Context, params CreateActivityParams) (Activity, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO lead_activities (lead_id, dealer_id, type, body, created_by)
		SELECT $1, $2, $3, $4, $5
		WHERE EXISTS (SELECT 1 FROM leads WHERE id = $1 AND dealer_id = $2)
		RETURNING id, lead_id, dealer_id, type, body, created_by, created_at`,
		params.LeadID, params.DealerID, string(params.Type), params.Body, params.CreatedBy,
	)

	item, err := scanActivity(row)
	if err != nil {
		if isNoRows(err) {
			return Activity{}, notFound()
		}
		return Activity{}, fmt.Errorf("create lead activity: %w", err)
	}
	return item, nil
}

func scanActivity(row rowScanner) (Activity, error) {
	var (
		item         Activity
		activityType string
	)
	if err := row.Scan(&item.ID, &item.LeadID, &item.DealerID, &activityType, &item.Body, &item.CreatedBy, &item.CreatedAt); err != nil {
		return Activity{}, err
	}
	item.Type = domain.ActivityType(activityType)
	return item, nil
}
