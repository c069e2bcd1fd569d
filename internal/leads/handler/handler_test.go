package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dealer_backend/internal/leads/domain"
	"dealer_backend/internal/leads/repository"
	"dealer_backend/internal/leads/scoring"
	"dealer_backend/internal/leads/service"
	"dealer_backend/internal/leads/transport"
	"dealer_backend/platform/apperr"
	"dealer_backend/platform/httpkit"
	"dealer_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

// stubRepo implements only what these handler paths reach.
type stubRepo struct {
	repository.Repository
	leads map[uuid.UUID]repository.Lead
}

func (s *stubRepo) GetByID(_ context.Context, id, dealerID uuid.UUID) (repository.Lead, error) {
	lead, ok := s.leads[id]
	if !ok || lead.DealerID != dealerID {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (s *stubRepo) ListActivities(context.Context, uuid.UUID, uuid.UUID) ([]repository.Activity, error) {
	return []repository.Activity{}, nil
}

func (s *stubRepo) List(_ context.Context, params repository.ListParams) ([]repository.Lead, int, error) {
	var out []repository.Lead
	for _, lead := range s.leads {
		if lead.DealerID == params.DealerID {
			out = append(out, lead)
		}
	}
	return out, len(out), nil
}

func (s *stubRepo) ListActivitiesForLeads(context.Context, []uuid.UUID, uuid.UUID) (map[uuid.UUID][]repository.Activity, error) {
	return map[uuid.UUID][]repository.Activity{}, nil
}

func (s *stubRepo) Create(_ context.Context, p repository.CreateParams) (repository.Lead, error) {
	lead := repository.Lead{
		ID: uuid.New(), DealerID: p.DealerID, FirstName: p.FirstName, LastName: p.LastName,
		Source: p.Source, Status: domain.StatusNew, CreatedAt: now, UpdatedAt: now,
	}
	s.leads[lead.ID] = lead
	return lead, nil
}

func (s *stubRepo) SaveScore(context.Context, uuid.UUID, uuid.UUID, repository.ScoreSnapshot) (*int, error) {
	return nil, nil
}

type enqueuerFunc func(ctx context.Context, dealerID uuid.UUID) error

func (f enqueuerFunc) EnqueueScoreRefresh(ctx context.Context, dealerID uuid.UUID) error {
	return f(ctx, dealerID)
}

type testEnv struct {
	router   *gin.Engine
	repo     *stubRepo
	dealerID uuid.UUID
	queued   []uuid.UUID
}

func setup(t *testing.T, authenticated bool, roles ...string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		repo:     &stubRepo{leads: make(map[uuid.UUID]repository.Lead)},
		dealerID: uuid.New(),
	}

	val := validator.New()
	require.NoError(t, transport.RegisterValidations(val))

	svc := service.New(env.repo, nil, scoring.NewCalculator(func() time.Time { return now }), nil, nil)
	svc.SetRefreshEnqueuer(enqueuerFunc(func(_ context.Context, dealerID uuid.UUID) error {
		env.queued = append(env.queued, dealerID)
		return nil
	}))

	r := gin.New()
	group := r.Group("/api/v1/leads")
	if authenticated {
		group.Use(func(c *gin.Context) {
			httpkit.SetIdentity(c, uuid.New(), env.dealerID, roles)
			c.Next()
		})
	}
	New(svc, val).RegisterRoutes(group)
	env.router = r
	return env
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateLead(t *testing.T) {
	env := setup(t, true)

	rec := env.do(http.MethodPost, "/api/v1/leads", transport.CreateLeadRequest{
		FirstName: "Lea", LastName: "Brunner", Source: "autoscout24",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp transport.LeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "AutoScout24", resp.SourceLabel)
	assert.Equal(t, 18+0+0+5+15, resp.Score.Breakdown.Total)
}

func TestCreateLeadValidation(t *testing.T) {
	env := setup(t, true)

	rec := env.do(http.MethodPost, "/api/v1/leads", `{"firstName":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), msgInvalidRequest)

	rec = env.do(http.MethodPost, "/api/v1/leads", transport.CreateLeadRequest{FirstName: "A", LastName: "B", Source: "fax"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), msgValidationFailed)
}

func TestGetLead(t *testing.T) {
	env := setup(t, true)
	lead := repository.Lead{ID: uuid.New(), DealerID: env.dealerID, Source: domain.SourceWebsite, Status: domain.StatusNew, CreatedAt: now}
	env.repo.leads[lead.ID] = lead

	rec := env.do(http.MethodGet, "/api/v1/leads/"+lead.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.LeadDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, lead.ID, resp.ID)
	assert.Equal(t, "medium", string(resp.Score.Label.Level))
}

func TestGetLeadErrors(t *testing.T) {
	env := setup(t, true)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/leads/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/leads/"+uuid.NewString(), nil).Code)

	foreign := repository.Lead{ID: uuid.New(), DealerID: uuid.New(), CreatedAt: now}
	env.repo.leads[foreign.ID] = foreign
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/leads/"+foreign.ID.String(), nil).Code)
}

func TestScoreEndpoint(t *testing.T) {
	env := setup(t, true)
	lead := repository.Lead{ID: uuid.New(), DealerID: env.dealerID, Source: domain.SourceOther, CreatedAt: now.Add(-60 * 24 * time.Hour)}
	env.repo.leads[lead.ID] = lead

	rec := env.do(http.MethodGet, "/api/v1/leads/"+lead.ID.String()+"/score", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 8+0+0+5+2, resp.Breakdown.Total)
	assert.Equal(t, "❄️", resp.Label.Indicator)
}

func TestListLeadsRejectsBadQuery(t *testing.T) {
	env := setup(t, true)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/leads?sortBy=id", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/leads?status=archived", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/leads?status=new&sortBy=score", nil).Code)
}

func TestRecalculateQueuesJob(t *testing.T) {
	env := setup(t, true, RoleAdmin)

	rec := env.do(http.MethodPost, "/api/v1/leads/score/recalculate", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []uuid.UUID{env.dealerID}, env.queued)
}

func TestRecalculateRequiresAdmin(t *testing.T) {
	env := setup(t, true, "sales")

	rec := env.do(http.MethodPost, "/api/v1/leads/score/recalculate", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, env.queued)
}

func TestScoreComponents(t *testing.T) {
	env := setup(t, true)

	rec := env.do(http.MethodGet, "/api/v1/leads/score/components", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.ComponentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Components, 5)
	assert.Equal(t, "source", resp.Components[0].Key)
}

func TestUnauthenticated(t *testing.T) {
	env := setup(t, false)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/v1/leads", nil).Code)
}
