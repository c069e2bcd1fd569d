// Package exports serves CSV downloads of a dealer's ranked leads.
package exports

import (
	apphttp "dealer_backend/internal/http"
	"dealer_backend/platform/logger"
	"dealer_backend/platform/validator"
)

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the exports module.
func NewModule(leads LeadLister, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(leads, val, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts export routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/exports")
	group.GET("/leads.csv", m.handler.ExportLeadsCSV)
}

var _ apphttp.Module = (*Module)(nil)
