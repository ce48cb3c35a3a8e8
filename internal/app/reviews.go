package app

import (
	"context"
	"fmt"
	"time"

	"github.com/nikola1125/villa-safira/internal/domain"
)

type ReviewService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewReviewService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *ReviewService {
	return &ReviewService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *ReviewService) AddReview(ctx context.Context, r domain.Review) (domain.Review, error) {
	if err := r.Validate(); err != nil {
		return domain.Review{}, fmt.Errorf("%w: name, country, comment and a 1-5 rating are required", err)
	}
	created, err := s.repo.InsertReview(ctx, r)
	if err != nil {
		return domain.Review{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

const (
	reviewsKey = "reviews"
	// maxReviewLimit is the largest limit handlers accept; the cache always
	// holds this full window so one key serves every limit and a single Del
	// invalidates them all.
	maxReviewLimit = 200
)

// ListReviews returns reviews newest first, cache-aside. The full window is
// cached once and sliced per request.
func (s *ReviewService) ListReviews(ctx context.Context, limit int) ([]domain.Review, error) {
	var all []domain.Review
	if ok, _ := s.cache.Get(ctx, reviewsKey, &all); !ok {
		var err error
		all, err = s.repo.ListReviews(ctx, maxReviewLimit)
		if err != nil {
			return nil, err
		}
		_ = s.cache.Set(ctx, reviewsKey, all, int(s.cacheTTL.Seconds()))
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *ReviewService) invalidate(ctx context.Context) {
	_ = s.cache.Del(ctx, reviewsKey)
}
