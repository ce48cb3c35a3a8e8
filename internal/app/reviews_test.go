package app_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/nikola1125/villa-safira/internal/app"
	"github.com/nikola1125/villa-safira/internal/domain"
)

type fakeReviewRepo struct {
	mu      sync.Mutex
	nextID  int64
	reviews []domain.Review
}

func (f *fakeReviewRepo) InsertReview(ctx context.Context, r domain.Review) (domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	r.CreatedAt = time.Now().UTC()
	f.reviews = append(f.reviews, r)
	return r, nil
}

func (f *fakeReviewRepo) ListReviews(ctx context.Context, limit int) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]domain.Review(nil), f.reviews...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestAddReview_Validation(t *testing.T) {
	svc := app.NewReviewService(&fakeReviewRepo{}, newFakeCache(), time.Minute)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.AddReview(ctx, domain.Review{Name: "Ana", Country: "HR", Comment: "Lovely", Rating: rating})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("rating=%d: want ErrValidation, got %v", rating, err)
		}
	}
	if _, err := svc.AddReview(ctx, domain.Review{Name: "", Country: "HR", Comment: "x", Rating: 5}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing name: want ErrValidation, got %v", err)
	}

	created, err := svc.AddReview(ctx, domain.Review{Name: "Ana", Country: "HR", Comment: "Lovely stay", Rating: 5})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if created.ID == 0 || created.CreatedAt.IsZero() {
		t.Fatalf("expected server-assigned id and timestamp: %+v", created)
	}
}

func TestListReviews_NewestFirstAndCached(t *testing.T) {
	repo := &fakeReviewRepo{}
	svc := app.NewReviewService(repo, newFakeCache(), 10*time.Minute)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := svc.AddReview(ctx, domain.Review{Name: name, Country: "DE", Comment: "ok", Rating: 4}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	out, err := svc.ListReviews(ctx, 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 3 || out[0].Name != "third" || out[2].Name != "first" {
		t.Fatalf("want newest first, got %+v", out)
	}

	// mutate repo behind the cache; second read must be served from cache
	repo.mu.Lock()
	repo.reviews[len(repo.reviews)-1].Name = "SHOULD NOT SEE THIS"
	repo.mu.Unlock()

	out2, err := svc.ListReviews(ctx, 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out2[0].Name != "third" {
		t.Fatalf("expected cached name, got %s", out2[0].Name)
	}

	// prime the cache under a second limit as well
	if _, err := svc.ListReviews(ctx, 2); err != nil {
		t.Fatalf("list: %v", err)
	}

	// a new review invalidates every limit, not just the one it was read with
	if _, err := svc.AddReview(ctx, domain.Review{Name: "fourth", Country: "AT", Comment: "ok", Rating: 5}); err != nil {
		t.Fatalf("add: %v", err)
	}
	out3, err := svc.ListReviews(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out3) != 2 || out3[0].Name != "fourth" {
		t.Fatalf("want fourth on top for limit 2, got %+v", out3)
	}
	out4, err := svc.ListReviews(ctx, 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out4) != 4 || out4[0].Name != "fourth" {
		t.Fatalf("want fourth on top for limit 100, got %+v", out4)
	}
}
