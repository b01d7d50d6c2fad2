package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/andres10976/keyword-service/internal/model"
)

// Backend persists the ordered keyword record set. Positions are indexes
// into the slice returned by All.
type Backend interface {
	All(ctx context.Context) ([]model.Keyword, error)
	Append(ctx context.Context, kw model.Keyword) error
	Replace(ctx context.Context, pos int, kw model.Keyword) error
}

// KeywordRepository implements the keyword lifecycle on top of a Backend.
// Every read-modify-write runs under mu, so duplicate ids cannot slip in
// between the uniqueness scan and the append.
type KeywordRepository struct {
	backend Backend
	mu      sync.Mutex
}

func NewKeywordRepository(backend Backend) *KeywordRepository {
	return &KeywordRepository{backend: backend}
}

// ListActive returns the records that are not soft-deleted, in storage order.
func (r *KeywordRepository) ListActive(ctx context.Context) ([]model.Keyword, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.backend.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load keywords: %w", err)
	}

	active := make([]model.Keyword, 0, len(all))
	for _, kw := range all {
		if !kw.Deleted {
			active = append(active, kw)
		}
	}
	return active, nil
}

// Create appends kw unless a record with the same id exists. Soft-deleted
// records still count.
func (r *KeywordRepository) Create(ctx context.Context, kw model.Keyword) (*model.Keyword, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.backend.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load keywords: %w", err)
	}
	if indexOf(all, kw.ID) >= 0 {
		return nil, ErrConflict
	}

	if err := r.backend.Append(ctx, kw); err != nil {
		return nil, fmt.Errorf("append keyword %d: %w", kw.ID, err)
	}
	slog.Debug("keyword created", "id", kw.ID)
	return &kw, nil
}

// Update replaces the first record with the given id by kw, verbatim.
// The replacement may carry a different id or deleted flag.
func (r *KeywordRepository) Update(ctx context.Context, id int, kw model.Keyword) (*model.Keyword, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.backend.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load keywords: %w", err)
	}
	pos := indexOf(all, id)
	if pos < 0 {
		return nil, ErrNotFound
	}

	if err := r.backend.Replace(ctx, pos, kw); err != nil {
		return nil, fmt.Errorf("replace keyword %d: %w", id, err)
	}
	slog.Debug("keyword updated", "id", id, "new_id", kw.ID, "deleted", kw.Deleted)
	return &kw, nil
}

// SoftDelete marks the first record with the given id as deleted.
func (r *KeywordRepository) SoftDelete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.backend.All(ctx)
	if err != nil {
		return fmt.Errorf("load keywords: %w", err)
	}
	pos := indexOf(all, id)
	if pos < 0 {
		return ErrNotFound
	}

	kw := all[pos]
	kw.Deleted = true
	if err := r.backend.Replace(ctx, pos, kw); err != nil {
		return fmt.Errorf("delete keyword %d: %w", id, err)
	}
	slog.Debug("keyword soft-deleted", "id", id)
	return nil
}

func indexOf(keywords []model.Keyword, id int) int {
	for i, kw := range keywords {
		if kw.ID == id {
			return i
		}
	}
	return -1
}
