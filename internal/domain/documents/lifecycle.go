package documents

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain"
	"stockledger/internal/domain/catalogs"
	"stockledger/internal/domain/posting"
	"stockledger/pkg/logger"
)

// LifecycleConfig wires a Lifecycle.
type LifecycleConfig[T Document] struct {
	Kind      Kind
	Repo      Repository[T]
	Engine    *posting.Engine
	Catalogs  catalogs.Lookup
	TxManager tx.Manager
	// Recorder is optional.
	Recorder Recorder
	// Now is optional; defaults to time.Now in UTC.
	Now func() time.Time
}

// Lifecycle enforces the state machine of one document kind.
// Every mutating call runs in a single transaction; any error rolls back
// reads, locks, balance changes and document writes together.
type Lifecycle[T Document] struct {
	kind      Kind
	repo      Repository[T]
	engine    *posting.Engine
	catalogs  catalogs.Lookup
	txManager tx.Manager
	hooks     *domain.HookRegistry[T]
	recorder  Recorder
	now       func() time.Time
}

// NewLifecycle creates a lifecycle controller.
func NewLifecycle[T Document](cfg LifecycleConfig[T]) *Lifecycle[T] {
	l := &Lifecycle[T]{
		kind:      cfg.Kind,
		repo:      cfg.Repo,
		engine:    cfg.Engine,
		catalogs:  cfg.Catalogs,
		txManager: cfg.TxManager,
		hooks:     domain.NewHookRegistry[T](),
		recorder:  cfg.Recorder,
		now:       cfg.Now,
	}
	if l.recorder == nil {
		l.recorder = noopRecorder{}
	}
	if l.now == nil {
		l.now = func() time.Time { return time.Now().UTC() }
	}
	return l
}

// Kind returns the document kind served.
func (l *Lifecycle[T]) Kind() Kind {
	return l.kind
}

// Hooks returns the hook registry for registering callbacks.
func (l *Lifecycle[T]) Hooks() *domain.HookRegistry[T] {
	return l.hooks
}

// Now returns the controller clock.
func (l *Lifecycle[T]) Now() time.Time {
	return l.now()
}

// Create persists a new draft. No balance effect.
func (l *Lifecycle[T]) Create(ctx context.Context, doc T) error {
	h := doc.Header()
	h.Status = entity.StatusDraft
	h.ConfirmedAt = nil
	h.DeletedAt = nil

	err := l.run(ctx, "create", func(ctx context.Context) error {
		if err := doc.Validate(ctx); err != nil {
			return err
		}
		if err := l.verifyReferences(ctx, doc.References()); err != nil {
			return err
		}
		if err := l.ensureCodeFree(ctx, h.Code, id.Nil()); err != nil {
			return err
		}
		if err := l.hooks.Run(ctx, domain.BeforeCreate, doc); err != nil {
			return err
		}
		if err := l.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create %s: %w", l.kind, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.afterCommit(ctx, domain.AfterCreate, doc)
	logger.Info(ctx, "document created", "kind", l.kind, "id", h.ID, "code", h.Code)
	return nil
}

// Update applies a change to a draft and replaces its item set.
// apply mutates the loaded document; it must not touch status fields.
func (l *Lifecycle[T]) Update(ctx context.Context, docID id.ID, apply func(ctx context.Context, doc T) error) (T, error) {
	var updated T

	err := l.run(ctx, "update", func(ctx context.Context) error {
		doc, err := l.repo.GetByID(ctx, docID, GetOptions{ForUpdate: true})
		if err != nil {
			return err
		}
		h := doc.Header()
		if !h.IsDraft() {
			return apperror.NewInvalidState(string(l.kind), string(h.Status), "update").
				WithDetail("id", docID.String())
		}

		oldCode := h.Code
		if err := apply(ctx, doc); err != nil {
			return err
		}
		if err := doc.Validate(ctx); err != nil {
			return err
		}
		if err := l.verifyReferences(ctx, doc.References()); err != nil {
			return err
		}
		if h.Code != oldCode {
			if err := l.ensureCodeFree(ctx, h.Code, docID); err != nil {
				return err
			}
		}
		if err := l.hooks.Run(ctx, domain.BeforeUpdate, doc); err != nil {
			return err
		}

		h.Touch(l.now())
		if err := l.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update %s: %w", l.kind, err)
		}
		updated = doc
		return nil
	})
	if err != nil {
		return updated, err
	}

	logger.Info(ctx, "document updated", "kind", l.kind, "id", docID)
	return updated, nil
}

// Confirm applies the document's balance effect and marks it confirmed.
// The header lock is taken before the status check, so of two concurrent
// confirmations exactly one applies the effect; the other sees "confirmed".
func (l *Lifecycle[T]) Confirm(ctx context.Context, docID id.ID) (T, error) {
	var confirmed T

	err := l.run(ctx, "confirm", func(ctx context.Context) error {
		doc, err := l.repo.GetByID(ctx, docID, GetOptions{ForUpdate: true})
		if err != nil {
			return err
		}
		h := doc.Header()
		switch h.Status {
		case entity.StatusDraft:
		case entity.StatusConfirmed:
			return apperror.NewConflict(fmt.Sprintf("%s is already confirmed", l.kind)).
				WithDetail("id", docID.String())
		default:
			return apperror.NewInvalidState(string(l.kind), string(h.Status), "confirm").
				WithDetail("id", docID.String())
		}

		if err := l.engine.Post(ctx, doc); err != nil {
			return err
		}

		h.MarkConfirmed(l.now())
		if err := l.repo.SaveHeader(ctx, doc); err != nil {
			return fmt.Errorf("save %s: %w", l.kind, err)
		}
		confirmed = doc
		return nil
	})
	if err != nil {
		return confirmed, err
	}

	l.afterCommit(ctx, domain.AfterConfirm, confirmed)
	logger.Info(ctx, "document confirmed",
		"kind", l.kind,
		"id", docID,
		"code", confirmed.Header().Code,
	)
	return confirmed, nil
}

// Remove hard-deletes a draft, or soft-deletes any other live document
// keeping its items for a later reversal.
func (l *Lifecycle[T]) Remove(ctx context.Context, docID id.ID) (RemoveOutcome, error) {
	var outcome RemoveOutcome
	var removed T

	err := l.run(ctx, "remove", func(ctx context.Context) error {
		doc, err := l.repo.GetByID(ctx, docID, GetOptions{ForUpdate: true})
		if err != nil {
			return err
		}
		h := doc.Header()

		if h.IsDraft() {
			if err := l.repo.HardDelete(ctx, docID); err != nil {
				return fmt.Errorf("delete %s: %w", l.kind, err)
			}
			outcome = HardDeleted
		} else {
			h.MarkDeleted(l.now())
			if err := l.repo.SaveHeader(ctx, doc); err != nil {
				return fmt.Errorf("soft delete %s: %w", l.kind, err)
			}
			outcome = SoftDeleted
		}
		removed = doc
		return nil
	})
	if err != nil {
		return "", err
	}

	l.afterCommit(ctx, domain.AfterRemove, removed)
	logger.Info(ctx, "document removed", "kind", l.kind, "id", docID, "outcome", outcome)
	return outcome, nil
}

// PermanentRemove reverses a soft-deleted document's effect and removes it.
// Only confirmed documents carry an effect to reverse.
func (l *Lifecycle[T]) PermanentRemove(ctx context.Context, docID id.ID) error {
	err := l.run(ctx, "permanent_remove", func(ctx context.Context) error {
		doc, err := l.repo.GetByID(ctx, docID, GetOptions{ForUpdate: true, IncludeDeleted: true})
		if err != nil {
			return err
		}
		h := doc.Header()
		if !h.IsDeleted() {
			return apperror.NewInvalidState(string(l.kind), string(h.Status), "permanently delete").
				WithDetail("id", docID.String()).
				WithDetail("reason", "document must be soft-deleted first")
		}
		if doc.ItemCount() == 0 {
			return apperror.NewInvalidState(string(l.kind), string(h.Status), "permanently delete").
				WithDetail("id", docID.String()).
				WithDetail("reason", "no retained items to reverse")
		}

		if h.Status == entity.StatusConfirmed {
			if err := l.engine.Reverse(ctx, doc); err != nil {
				return err
			}
		}

		if err := l.repo.HardDelete(ctx, docID); err != nil {
			return fmt.Errorf("delete %s: %w", l.kind, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document permanently removed", "kind", l.kind, "id", docID)
	return nil
}

// Get loads a document with its items.
func (l *Lifecycle[T]) Get(ctx context.Context, docID id.ID, includeDeleted bool) (T, error) {
	doc, err := l.repo.GetByID(ctx, docID, GetOptions{IncludeDeleted: includeDeleted})
	if err != nil {
		return doc, apperror.Normalize(err)
	}
	return doc, nil
}

// List returns documents matching filter.
func (l *Lifecycle[T]) List(ctx context.Context, filter ListFilter) (domain.ListResult[T], error) {
	filter.Page = filter.Page.Normalize()
	res, err := l.repo.List(ctx, filter)
	if err != nil {
		return res, apperror.Normalize(err)
	}
	return res, nil
}

// run executes fn in a transaction and reports the outcome.
func (l *Lifecycle[T]) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := l.txManager.RunInTransaction(ctx, fn)
	err = apperror.Normalize(err)
	l.recorder.ObserveTransition(string(l.kind), op, err)
	if err != nil && apperror.IsRetryable(err) {
		logger.Error(ctx, "document operation failed", "kind", l.kind, "op", op, "error", err)
	}
	return err
}

func (l *Lifecycle[T]) afterCommit(ctx context.Context, event domain.HookEvent, doc T) {
	if err := l.hooks.Run(ctx, event, doc); err != nil {
		logger.Warn(ctx, "post-commit hook failed", "kind", l.kind, "event", event, "error", err)
	}
}

func (l *Lifecycle[T]) ensureCodeFree(ctx context.Context, code string, excludeID id.ID) error {
	exists, err := l.repo.CodeExists(ctx, code, excludeID)
	if err != nil {
		return fmt.Errorf("check code: %w", err)
	}
	if exists {
		return apperror.NewDuplicate(string(l.kind), "code", code)
	}
	return nil
}

// verifyReferences resolves every referenced master-data row inside the
// current transaction, which keeps them from being removed before commit.
func (l *Lifecycle[T]) verifyReferences(ctx context.Context, refs References) error {
	for _, wid := range refs.Warehouses {
		if _, err := l.catalogs.FindWarehouse(ctx, wid); err != nil {
			return err
		}
	}
	for _, pid := range refs.Products {
		if _, err := l.catalogs.FindProduct(ctx, pid); err != nil {
			return err
		}
	}
	for _, sid := range refs.Suppliers {
		if _, err := l.catalogs.FindSupplier(ctx, sid); err != nil {
			return err
		}
	}
	for _, cid := range refs.Customers {
		if _, err := l.catalogs.FindCustomer(ctx, cid); err != nil {
			return err
		}
	}
	return nil
}
