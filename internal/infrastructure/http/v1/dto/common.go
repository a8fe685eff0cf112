// Package dto provides the query and response shapes of the HTTP API.
// Request bodies bind straight into the domain request structs.
package dto

import (
	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain"
	"stockledger/internal/domain/documents"
)

// --- Pagination ---

// PageQuery holds limit/offset paging parameters.
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// Page converts the query to a normalized domain page.
func (q PageQuery) Page() domain.Page {
	return domain.Page{Limit: q.Limit, Offset: q.Offset}.Normalize()
}

// --- Documents ---

// DocumentListQuery is the query string of GET /<documents>.
type DocumentListQuery struct {
	PageQuery
	Status      string `form:"status"`
	WarehouseID string `form:"warehouseId"`
	Code        string `form:"code"`
	// Deleted is "", "include" or "only".
	Deleted string `form:"deleted"`
}

// Filter converts the query to a documents.ListFilter.
func (q DocumentListQuery) Filter() (documents.ListFilter, error) {
	filter := documents.ListFilter{
		Code: q.Code,
		Page: q.Page(),
	}

	if q.Status != "" {
		status := entity.Status(q.Status)
		if !status.Valid() {
			return filter, apperror.NewValidation("unknown status").
				WithDetail("field", "status").
				WithDetail("value", q.Status)
		}
		filter.Status = &status
	}

	warehouseID, err := OptionalID("warehouseId", q.WarehouseID)
	if err != nil {
		return filter, err
	}
	filter.WarehouseID = warehouseID

	switch documents.DeletedFilter(q.Deleted) {
	case documents.LiveOnly, documents.IncludeDeleted, documents.DeletedOnly:
		filter.Deleted = documents.DeletedFilter(q.Deleted)
	default:
		return filter, apperror.NewValidation("deleted must be include or only").
			WithDetail("field", "deleted")
	}
	return filter, nil
}

// GetQuery is the query string of GET /<documents>/:id.
type GetQuery struct {
	IncludeDeleted bool `form:"includeDeleted"`
}

// RemoveResponse tells the caller what DELETE did.
type RemoveResponse struct {
	ID      string                  `json:"id"`
	Outcome documents.RemoveOutcome `json:"outcome"`
}

// --- Catalogs ---

// CatalogListQuery is the query string of GET /<catalog>.
type CatalogListQuery struct {
	PageQuery
	Search string `form:"search"`
}

// Filter converts the query to a domain.CatalogFilter.
func (q CatalogListQuery) Filter() domain.CatalogFilter {
	return domain.CatalogFilter{Search: q.Search, Page: q.Page()}
}

// --- Helpers ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// OptionalID parses an optional id parameter; empty yields nil.
func OptionalID(field, raw string) (*id.ID, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := id.Parse(raw)
	if err != nil {
		return nil, apperror.NewValidation("invalid " + field + " format").
			WithDetail("field", field)
	}
	return &parsed, nil
}
