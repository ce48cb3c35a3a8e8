//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/nikola1125/villa-safira/internal/domain"
	mysqlrepo "github.com/nikola1125/villa-safira/internal/storage/mysql"
)

// ---------- small helpers ----------

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=safira",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "safira")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func booking(room string, inDay, outDay int) domain.Booking {
	return domain.Booking{
		ID:            uuid.NewString(),
		RoomID:        room,
		CheckIn:       time.Date(2031, 5, inDay, 0, 0, 0, 0, time.UTC),
		CheckOut:      time.Date(2031, 5, outDay, 0, 0, 0, 0, time.UTC),
		Guests:        2,
		Breakfast:     true,
		TotalEuros:    165,
		CustomerName:  "Ana",
		CustomerEmail: "ana@example.com",
		CustomerPhone: "+3859",
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     time.Now().UTC(),
	}
}

// ---------- the tests ----------

func TestRepo_MySQL_BookingLifecycle(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	b := booking("deluxe-double", 1, 4)
	if err := repo.CreateBooking(ctx, b); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	// same room, overlapping stay: rejected inside the transaction
	clash := booking("deluxe-double", 3, 6)
	if err := repo.CreateBooking(ctx, clash); !errors.Is(err, domain.ErrRoomUnavailable) {
		t.Fatalf("overlap: want ErrRoomUnavailable, got %v", err)
	}

	// back-to-back stay sharing the turnover day is fine
	adjacent := booking("deluxe-double", 4, 6)
	if err := repo.CreateBooking(ctx, adjacent); err != nil {
		t.Fatalf("adjacent stay: %v", err)
	}

	// a different room on the clashing dates is fine too
	other := booking("triple-garden", 3, 6)
	if err := repo.CreateBooking(ctx, other); err != nil {
		t.Fatalf("other room: %v", err)
	}

	// unknown room id is a 404 class error, not a silent insert
	ghost := booking("presidential-suite", 1, 2)
	if err := repo.CreateBooking(ctx, ghost); !errors.Is(err, domain.ErrUnknownRoom) {
		t.Fatalf("unknown room: want ErrUnknownRoom, got %v", err)
	}

	got, err := repo.GetBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if got.PaymentStatus != domain.PaymentPending || got.TotalEuros != 165 || got.CustomerEmail != "ana@example.com" {
		t.Fatalf("unexpected booking: %+v", got)
	}
	if st := got.Stay(); st.Nights() != 3 {
		t.Fatalf("want 3 nights, got %d", st.Nights())
	}

	ivs, err := repo.ListBookedIntervals(ctx)
	if err != nil {
		t.Fatalf("ListBookedIntervals: %v", err)
	}
	if len(ivs) != 3 {
		t.Fatalf("want 3 intervals, got %d: %+v", len(ivs), ivs)
	}
}

func TestRepo_MySQL_MarkPaidIdempotent(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	b := booking("deluxe-family", 10, 12)
	if err := repo.CreateBooking(ctx, b); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	changed, err := repo.MarkPaid(ctx, b.ID)
	if err != nil || !changed {
		t.Fatalf("first MarkPaid: changed=%v err=%v", changed, err)
	}
	changed, err = repo.MarkPaid(ctx, b.ID)
	if err != nil || changed {
		t.Fatalf("second MarkPaid must be a no-op: changed=%v err=%v", changed, err)
	}
	if _, err := repo.MarkPaid(ctx, "no-such-id"); !errors.Is(err, domain.ErrUnknownBooking) {
		t.Fatalf("unknown id: want ErrUnknownBooking, got %v", err)
	}
}

func TestRepo_MySQL_ExpireFreesTheDates(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	b := booking("deluxe-double-balcony", 20, 23)
	if err := repo.CreateBooking(ctx, b); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	stale, err := repo.ListStalePending(ctx, time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("ListStalePending: %v", err)
	}
	if len(stale) != 1 || stale[0] != b.ID {
		t.Fatalf("want the pending id, got %v", stale)
	}

	changed, err := repo.Expire(ctx, b.ID)
	if err != nil || !changed {
		t.Fatalf("Expire: changed=%v err=%v", changed, err)
	}

	// the dates open up again
	retry := booking("deluxe-double-balcony", 21, 22)
	if err := repo.CreateBooking(ctx, retry); err != nil {
		t.Fatalf("rebook after expire: %v", err)
	}

	// a paid booking never expires, and marking the expired one paid fails
	if _, err := repo.MarkPaid(ctx, b.ID); !errors.Is(err, domain.ErrBookingExpired) {
		t.Fatalf("paying an expired booking: want ErrBookingExpired, got %v", err)
	}
	if changed, err := repo.Expire(ctx, retry.ID); err != nil || !changed {
		t.Fatalf("Expire retry: changed=%v err=%v", changed, err)
	}
}

func TestRepo_MySQL_Reviews(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	first, err := repo.InsertReview(ctx, domain.Review{Name: "Ana", Country: "HR", Comment: "Lovely garden", Rating: 5})
	if err != nil {
		t.Fatalf("InsertReview: %v", err)
	}
	if first.ID == 0 || first.CreatedAt.IsZero() {
		t.Fatalf("expected server-assigned id and timestamp, got %+v", first)
	}

	// let created_at tick so ordering is deterministic
	time.Sleep(1100 * time.Millisecond)

	second, err := repo.InsertReview(ctx, domain.Review{Name: "Bob", Country: "UK", Comment: "Great breakfast", Rating: 4})
	if err != nil {
		t.Fatalf("InsertReview: %v", err)
	}

	list, err := repo.ListReviews(ctx, 100)
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("want newest first, got %+v", list)
	}

	limited, err := repo.ListReviews(ctx, 1)
	if err != nil {
		t.Fatalf("ListReviews limit=1: %v", err)
	}
	if len(limited) != 1 || limited[0].Name != "Bob" {
		t.Fatalf("unexpected limited list: %+v", limited)
	}
}
