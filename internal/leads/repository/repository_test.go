package repository

import (
	"testing"
	"time"

	"dealer_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLeadListWhereAlwaysScopesToDealer(t *testing.T) {
	dealerID := uuid.New()

	where, args, next := buildLeadListWhere(ListParams{DealerID: dealerID})

	assert.Equal(t, "l.dealer_id = $1", where)
	assert.Equal(t, []interface{}{dealerID}, args)
	assert.Equal(t, 2, next)
}

func TestBuildLeadListWhereNumbersPlaceholders(t *testing.T) {
	source := domain.SourceWebsite
	status := domain.StatusContacted
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	where, args, next := buildLeadListWhere(ListParams{
		DealerID:     uuid.New(),
		Search:       "müller",
		Source:       &source,
		Status:       &status,
		CreatedSince: &since,
	})

	assert.Contains(t, where, "l.first_name ILIKE $2")
	assert.Contains(t, where, "l.source = $3")
	assert.Contains(t, where, "l.status = $4")
	assert.Contains(t, where, "l.created_at >= $5")
	assert.Equal(t, 6, next)
	assert.Equal(t, "%müller%", args[1])
	assert.Equal(t, "website", args[2])
	assert.Equal(t, "contacted", args[3])
	assert.Equal(t, since, args[4])
}

func TestMapLeadSortColumn(t *testing.T) {
	assert.Equal(t, "l.score DESC NULLS LAST, l.created_at DESC", mapLeadSortColumn("", ""))
	assert.Equal(t, "l.score ASC NULLS LAST, l.created_at DESC", mapLeadSortColumn("score", "asc"))
	assert.Equal(t, "l.created_at ASC", mapLeadSortColumn("createdAt", "asc"))
	assert.Equal(t, "l.last_name DESC, l.first_name DESC", mapLeadSortColumn("lastName", "desc"))
	assert.Equal(t, "l.score DESC NULLS LAST, l.created_at DESC", mapLeadSortColumn("l.id; DROP TABLE leads", "desc"))
}

func TestLeadAskingPrice(t *testing.T) {
	assert.Nil(t, Lead{}.AskingPrice())

	price := 32500.0
	lead := Lead{Vehicle: &Vehicle{AskingPrice: &price}}
	assert.Equal(t, 32500.0, *lead.AskingPrice())
}

func TestBuildLeadUpdateClearsEmptyContactFields(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	empty := ""
	name := "Lea"

	set, args := buildLeadUpdate(UpdateParams{
		ID:        uuid.New(),
		DealerID:  uuid.New(),
		FirstName: &name,
		Email:     &empty,
		Notes:     &empty,
	}, now)

	assert.Equal(t, "updated_at = $3, first_name = $4, email = $5, notes = $6", set)
	require.Len(t, args, 6)
	assert.Equal(t, now, args[2])
	assert.Equal(t, "Lea", args[3])
	assert.Nil(t, args[4])
	assert.Nil(t, args[5])
}

func TestBuildLeadUpdateOnlyTouchesTimestampWhenEmpty(t *testing.T) {
	set, args := buildLeadUpdate(UpdateParams{ID: uuid.New(), DealerID: uuid.New()}, time.Now())

	assert.Equal(t, "updated_at = $3", set)
	assert.Len(t, args, 3)
}
