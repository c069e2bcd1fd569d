package exports

import (
	"context"
	"encoding/csv"
	"net/http"
	"sort"
	"strconv"
	"time"

	"dealer_backend/internal/leads/transport"
	"dealer_backend/platform/httpkit"
	"dealer_backend/platform/logger"
	"dealer_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	exportPageSize   = 500
	defaultExportMax = 5000
	maxExportRows    = 50000
	exportDateLayout = "2006-01-02 15:04"
	exportFilename   = "leads.csv"
)

var csvHeaders = []string{
	"id",
	"first_name",
	"last_name",
	"email",
	"phone",
	"source",
	"status",
	"vehicle",
	"asking_price",
	"score",
	"label",
	"next_followup",
	"created_at",
}

// LeadLister pages through a dealer's scored leads.
type LeadLister interface {
	List(ctx context.Context, dealerID uuid.UUID, req transport.ListLeadsRequest) (transport.LeadListResponse, error)
}

// Handler handles export requests.
type Handler struct {
	leads LeadLister
	val   *validator.Validator
	log   *logger.Logger
}

// NewHandler creates a new export handler.
func NewHandler(leads LeadLister, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{leads: leads, val: val, log: log}
}

type exportQuery struct {
	Search string `form:"search" validate:"max=100"`
	Source string `form:"source" validate:"omitempty,leadsource"`
	Status string `form:"status" validate:"omitempty,leadstatus"`
	Since  string `form:"since" validate:"omitempty,datetime=2006-01-02"`
}

// ExportLeadsCSV writes the filtered lead list, highest score first, as a
// semicolon separated file.
func (h *Handler) ExportLeadsCSV(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var query exportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	limit := parseLimit(c.Query("limit"), defaultExportMax, maxExportRows)

	rows, err := h.collect(c.Request.Context(), identity.DealerID(), query, limit)
	if httpkit.HandleError(c, err) {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+exportFilename)
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	writer.Comma = ';'
	if err := writer.Write(csvHeaders); err != nil {
		return
	}
	for _, lead := range rows {
		if err := writer.Write(leadRecord(lead)); err != nil {
			h.log.Warn("lead export aborted", "error", err)
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.log.Warn("lead export flush failed", "error", err)
	}
}

func (h *Handler) collect(ctx context.Context, dealerID uuid.UUID, query exportQuery, limit int) ([]transport.LeadResponse, error) {
	req := transport.ListLeadsRequest{
		Search:   query.Search,
		Source:   query.Source,
		Status:   query.Status,
		Since:    query.Since,
		PageSize: exportPageSize,
		SortBy:   "score",
	}

	var out []transport.LeadResponse
	for page := 1; len(out) < limit; page++ {
		req.Page = page
		result, err := h.leads.List(ctx, dealerID, req)
		if err != nil {
			return nil, err
		}
		out = append(out, result.Items...)
		if page >= result.TotalPages || len(result.Items) == 0 {
			break
		}
	}
	rankByScore(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// rankByScore orders by live total, newest first among equal totals.
func rankByScore(rows []transport.LeadResponse) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Score.Breakdown.Total, rows[j].Score.Breakdown.Total
		if a != b {
			return a > b
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
}

func leadRecord(lead transport.LeadResponse) []string {
	var vehicle, price string
	if lead.Vehicle != nil {
		vehicle = lead.Vehicle.Make + " " + lead.Vehicle.Model
		if lead.Vehicle.AskingPrice != nil {
			price = strconv.FormatFloat(*lead.Vehicle.AskingPrice, 'f', 2, 64)
		}
	}

	return []string{
		lead.ID.String(),
		lead.FirstName,
		lead.LastName,
		deref(lead.Email),
		deref(lead.Phone),
		lead.SourceLabel,
		lead.StatusLabel,
		vehicle,
		price,
		strconv.Itoa(lead.Score.Breakdown.Total),
		lead.Score.Label.Text,
		formatTime(lead.NextFollowup),
		lead.CreatedAt.UTC().Format(exportDateLayout),
	}
}

func parseLimit(raw string, fallback, max int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(exportDateLayout)
}
