// internal/profile/resolver.go
package profile

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-service/internal/model"
	"print-service/internal/repository"
)

// Resolver resolves the effective printer profile for a cafe and document
// kind, caching hits so the dispatch hot path does not touch the store on
// every job. The cache holds only validated profiles; invalidation is
// explicit and happens when cafe tooling changes printer settings.
type Resolver struct {
	repo   repository.ProfileRepository
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[cacheKey]*model.PrinterProfile
}

type cacheKey struct {
	cafeID uuid.UUID
	class  model.PrinterClass
}

// NewResolver creates a profile resolver backed by the given repository
func NewResolver(repo repository.ProfileRepository, logger *zap.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		logger: logger,
		cache:  make(map[cacheKey]*model.PrinterProfile),
	}
}

// classForDoc maps a document kind to the printer class that serves it
func classForDoc(doc model.DocType) model.PrinterClass {
	if doc == model.DocTypeKOT {
		return model.PrinterClassKOT
	}
	return model.PrinterClassReceipt
}

// Resolve returns the effective profile for a cafe and document kind. A
// class-specific profile wins over a COMBINED one; repository.ErrProfileNotFound
// propagates unchanged when the cafe has no usable profile.
func (r *Resolver) Resolve(ctx context.Context, cafeID uuid.UUID, doc model.DocType) (*model.PrinterProfile, error) {
	key := cacheKey{cafeID: cafeID, class: classForDoc(doc)}

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	prof, err := r.repo.GetActiveProfile(ctx, cafeID, key.class)
	if err != nil {
		return nil, err
	}

	if err := prof.Validate(); err != nil {
		r.logger.Warn("Resolved printer profile failed validation",
			zap.Error(err),
			zap.String("cafe_id", cafeID.String()),
			zap.String("profile_id", prof.ID.String()),
		)
		return nil, fmt.Errorf("printer profile unusable: %w", err)
	}

	r.mu.Lock()
	r.cache[key] = prof
	r.mu.Unlock()

	r.logger.Debug("Printer profile cached",
		zap.String("cafe_id", cafeID.String()),
		zap.String("printer_class", string(key.class)),
		zap.String("profile_id", prof.ID.String()),
	)
	return prof, nil
}

// Invalidate drops all cached profiles for a cafe. The next Resolve call
// reloads from the store.
func (r *Resolver) Invalidate(cafeID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.cache {
		if key.cafeID == cafeID {
			delete(r.cache, key)
		}
	}
}

// InvalidateAll empties the cache entirely
func (r *Resolver) InvalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[cacheKey]*model.PrinterProfile)
}

// CacheSize reports the number of cached entries, for health reporting
func (r *Resolver) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
