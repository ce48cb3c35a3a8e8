package reviewboard

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/nikola1125/villa-safira/internal/domain"
)

type api interface {
	ListReviews(ctx context.Context) ([]domain.Review, error)
	SubmitReview(ctx context.Context, r domain.Review) (domain.Review, error)
}

// Board is the client-side review list: remote first, with a read-only
// on-device JSON cache as degraded fallback. A successful fetch always
// overwrites the cache; the cache is never a source of truth.
type Board struct {
	api       api
	cachePath string
}

func New(a api, cachePath string) *Board {
	return &Board{api: a, cachePath: cachePath}
}

// List fetches reviews from the API. When the API is unreachable it falls
// back to the last cached copy and reports stale=true.
func (b *Board) List(ctx context.Context) (reviews []domain.Review, stale bool, err error) {
	reviews, err = b.api.ListReviews(ctx)
	if err == nil {
		b.writeCache(reviews)
		return reviews, false, nil
	}
	log.Warn().Err(err).Msg("review fetch failed, falling back to cache")

	cached, cerr := b.readCache()
	if cerr != nil {
		return nil, false, err // original fetch error is the useful one
	}
	return cached, true, nil
}

// Submit posts a review. On success the cache is refreshed with the list
// including the new entry so the fallback stays current.
func (b *Board) Submit(ctx context.Context, r domain.Review) (domain.Review, error) {
	created, err := b.api.SubmitReview(ctx, r)
	if err != nil {
		return domain.Review{}, err
	}
	if cached, cerr := b.readCache(); cerr == nil {
		b.writeCache(append([]domain.Review{created}, cached...))
	}
	return created, nil
}

func (b *Board) readCache() ([]domain.Review, error) {
	data, err := os.ReadFile(b.cachePath)
	if err != nil {
		return nil, err
	}
	var out []domain.Review
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Board) writeCache(reviews []domain.Review) {
	data, err := json.Marshal(reviews)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(b.cachePath), 0o755); err != nil {
		log.Warn().Err(err).Msg("review cache dir create failed")
		return
	}
	if err := os.WriteFile(b.cachePath, data, 0o644); err != nil {
		log.Warn().Err(err).Msg("review cache write failed")
	}
}
