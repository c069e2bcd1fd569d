package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dealer_backend/internal/leads/domain"
	"dealer_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadNotFoundMessage = "lead not found"

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

const leadColumns = `
	l.id, l.dealer_id, l.vehicle_id, l.first_name, l.last_name, l.email, l.phone, l.message, l.notes,
	l.source, l.status, l.next_followup, l.score, l.score_breakdown, l.score_updated_at, l.created_at, l.updated_at,
	v.id, v.make, v.model, v.asking_price`

const leadFrom = `
	FROM leads l
	LEFT JOIN vehicles v ON v.id = l.vehicle_id AND v.dealer_id = l.dealer_id`

// GetByID retrieves a lead scoped to its dealer.
func (r *Repo) GetByID(ctx context.Context, id, dealerID uuid.UUID) (Lead, error) {
	query := "SELECT" + leadColumns + leadFrom + " WHERE l.id = $1 AND l.dealer_id = $2"

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, dealerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead by id: %w", err)
	}
	return lead, nil
}

// VehicleExists reports whether the vehicle belongs to the dealer's inventory.
func (r *Repo) VehicleExists(ctx context.Context, id, dealerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM vehicles WHERE id = $1 AND dealer_id = $2)`, id, dealerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check vehicle: %w", err)
	}
	return exists, nil
}

// Create inserts a new lead with status "new".
func (r *Repo) Create(ctx context.Context, params CreateParams) (Lead, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO leads (dealer_id, vehicle_id, first_name, last_name, email, phone, message, notes, source, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		params.DealerID, params.VehicleID, params.FirstName, params.LastName, params.Email, params.Phone,
		params.Message, params.Notes, string(params.Source), string(domain.StatusNew),
	).Scan(&id)
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}

	return r.GetByID(ctx, id, params.DealerID)
}

// Update applies the non-nil fields of params.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Lead, error) {
	setClause, args := buildLeadUpdate(params, time.Now().UTC())

	query := "UPDATE leads SET " + setClause + " WHERE id = $1 AND dealer_id = $2"
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return Lead{}, fmt.Errorf("update lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Lead{}, apperr.NotFound(leadNotFoundMessage)
	}

	return r.GetByID(ctx, params.ID, params.DealerID)
}

// List retrieves a filtered, sorted page of leads plus the unpaged total.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	var total int
	countQuery := "SELECT COUNT(*) FROM leads l WHERE " + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	orderBy := mapLeadSortColumn(params.SortBy, params.SortOrder)
	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		leadColumns, leadFrom, whereClause, orderBy, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

// buildLeadUpdate returns the SET clause and its arguments. An empty string
// clears an optional contact field to NULL.
func buildLeadUpdate(params UpdateParams, now time.Time) (string, []interface{}) {
	setClauses := []string{"updated_at = $3"}
	args := []interface{}{params.ID, params.DealerID, now}
	argIdx := 4

	set := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.FirstName != nil {
		set("first_name", *params.FirstName)
	}
	if params.LastName != nil {
		set("last_name", *params.LastName)
	}
	if params.Email != nil {
		set("email", nullable(*params.Email))
	}
	if params.Phone != nil {
		set("phone", nullable(*params.Phone))
	}
	if params.Notes != nil {
		set("notes", nullable(*params.Notes))
	}
	if params.Status != nil {
		set("status", string(*params.Status))
	}
	if params.NextFollowup != nil {
		set("next_followup", *params.NextFollowup)
	}

	return strings.Join(setClauses, ", "), args
}

func nullable(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func buildLeadListWhere(params ListParams) (string, []interface{}, int) {
	// Dealer ID is always the first filter (tenant isolation)
	whereClauses := []string{"l.dealer_id = $1"}
	args := []interface{}{params.DealerID}
	argIdx := 2

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(l.first_name ILIKE $%d OR l.last_name ILIKE $%d OR (l.first_name || ' ' || l.last_name) ILIKE $%d OR l.email ILIKE $%d OR l.phone ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.Source != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.source = $%d", argIdx))
		args = append(args, string(*params.Source))
		argIdx++
	}
	if params.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.status = $%d", argIdx))
		args = append(args, string(*params.Status))
		argIdx++
	}
	if params.CreatedSince != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.created_at >= $%d", argIdx))
		args = append(args, *params.CreatedSince)
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

func mapLeadSortColumn(sortBy, sortOrder string) string {
	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}

	switch sortBy {
	case "createdAt":
		return "l.created_at " + direction
	case "lastName":
		return "l.last_name " + direction + ", l.first_name " + direction
	case "status":
		return "l.status " + direction + ", l.created_at DESC"
	default:
		return "l.score " + direction + " NULLS LAST, l.created_at DESC"
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (Lead, error) {
	var (
		lead         Lead
		source       string
		status       string
		vehicleID    *uuid.UUID
		vehicleMake  *string
		vehicleModel *string
		askingPrice  *float64
	)

	if err := row.Scan(
		&lead.ID, &lead.DealerID, &lead.VehicleID, &lead.FirstName, &lead.LastName, &lead.Email, &lead.Phone,
		&lead.Message, &lead.Notes, &source, &status, &lead.NextFollowup, &lead.Score, &lead.ScoreBreakdown,
		&lead.ScoreUpdatedAt, &lead.CreatedAt, &lead.UpdatedAt,
		&vehicleID, &vehicleMake, &vehicleModel, &askingPrice,
	); err != nil {
		return Lead{}, err
	}

	lead.Source = domain.Source(source)
	lead.Status = domain.Status(status)
	if vehicleID != nil {
		lead.Vehicle = &Vehicle{ID: *vehicleID, AskingPrice: askingPrice}
		if vehicleMake != nil {
			lead.Vehicle.Make = *vehicleMake
		}
		if vehicleModel != nil {
			lead.Vehicle.Model = *vehicleModel
		}
	}
	return lead, nil
}
