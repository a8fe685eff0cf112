// Package domain provides the types shared by the domain services.
package domain

import (
	"context"
)

// --- Filter & Pagination ---

// Page holds paging options for list operations.
type Page struct {
	Limit  int
	Offset int
}

// DefaultLimit and MaxLimit bound page sizes.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// Paginate slices an in-memory result set according to page.
func Paginate[T any](all []T, page Page) ListResult[T] {
	page = page.Normalize()
	result := ListResult[T]{
		TotalCount: int64(len(all)),
		Limit:      page.Limit,
		Offset:     page.Offset,
		Items:      []T{},
	}
	if page.Offset >= len(all) {
		return result
	}
	end := page.Offset + page.Limit
	if end > len(all) {
		end = len(all)
	}
	result.Items = all[page.Offset:end]
	return result
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	// BeforeCreate and BeforeUpdate hooks run inside the transaction,
	// after references are verified and before the document is written.
	BeforeCreate HookEvent = "before_create"
	BeforeUpdate HookEvent = "before_update"

	// After* hooks run once the transaction has committed.
	AfterCreate  HookEvent = "after_create"
	AfterConfirm HookEvent = "after_confirm"
	AfterRemove  HookEvent = "after_remove"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// OnBeforeCreate registers a hook to run before create.
func (r *HookRegistry[T]) OnBeforeCreate(hook Hook[T]) {
	r.On(BeforeCreate, hook)
}

// OnBeforeUpdate registers a hook to run before update.
func (r *HookRegistry[T]) OnBeforeUpdate(hook Hook[T]) {
	r.On(BeforeUpdate, hook)
}

// OnAfterConfirm registers a hook to run after a committed confirmation.
func (r *HookRegistry[T]) OnAfterConfirm(hook Hook[T]) {
	r.On(AfterConfirm, hook)
}
