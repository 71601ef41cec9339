//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	// Run migrations
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func TestIdentityRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewIdentityRepository(pool)

	t.Run("UpsertAndGet", func(t *testing.T) {
		err := repo.Upsert(ctx, database.Identity{ExternalID: "E001", DisplayName: "Ada Lovelace"})
		if err != nil {
			t.Fatalf("Failed to upsert identity: %v", err)
		}

		got, err := repo.Get(ctx, "E001")
		if err != nil {
			t.Fatalf("Failed to get identity: %v", err)
		}
		if got == nil {
			t.Fatal("Expected identity, got nil")
		}
		if got.DisplayName != "Ada Lovelace" {
			t.Errorf("Expected display name 'Ada Lovelace', got '%s'", got.DisplayName)
		}
	})

	t.Run("UpsertReplacesDisplayName", func(t *testing.T) {
		if err := repo.Upsert(ctx, database.Identity{ExternalID: "E002", DisplayName: "First"}); err != nil {
			t.Fatalf("Failed to upsert identity: %v", err)
		}
		if err := repo.Upsert(ctx, database.Identity{ExternalID: "E002", DisplayName: "Second"}); err != nil {
			t.Fatalf("Failed to re-upsert identity: %v", err)
		}

		got, err := repo.Get(ctx, "E002")
		if err != nil {
			t.Fatalf("Failed to get identity: %v", err)
		}
		if got.DisplayName != "Second" {
			t.Errorf("Expected latest display name 'Second', got '%s'", got.DisplayName)
		}

		all, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list identities: %v", err)
		}
		count := 0
		for _, id := range all {
			if id.ExternalID == "E002" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("Expected exactly one row for E002, got %d", count)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		got, err := repo.Get(ctx, "NOPE")
		if err != nil {
			t.Fatalf("Unexpected error for missing identity: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for missing identity, got %+v", got)
		}
	})
}

func TestAttendanceRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewAttendanceRepository(pool)

	t.Run("InsertReturnsRow", func(t *testing.T) {
		a, err := repo.Insert(ctx, "E001")
		if err != nil {
			t.Fatalf("Failed to insert attendance: %v", err)
		}
		if a.ID == 0 {
			t.Error("Expected autoincrement id to be set")
		}
		if a.ExternalID != "E001" {
			t.Errorf("Expected external id 'E001', got '%s'", a.ExternalID)
		}
		if a.RecordedAt.IsZero() {
			t.Error("Expected recorded_at to be set by the database")
		}
	})

	t.Run("EveryMatchIsANewEvent", func(t *testing.T) {
		for range 3 {
			if _, err := repo.Insert(ctx, "E002"); err != nil {
				t.Fatalf("Failed to insert attendance: %v", err)
			}
		}

		events, err := repo.RecentByExternalID(ctx, "E002", 10)
		if err != nil {
			t.Fatalf("Failed to query attendance: %v", err)
		}
		if len(events) != 3 {
			t.Errorf("Expected 3 events, got %d", len(events))
		}
	})

	t.Run("DailyCounts", func(t *testing.T) {
		counts, err := repo.DailyCounts(ctx, 7)
		if err != nil {
			t.Fatalf("Failed to query daily counts: %v", err)
		}
		if len(counts) == 0 {
			t.Fatal("Expected at least one day of counts")
		}
		// All inserts in this test run land on today.
		if counts[0].Count < 4 {
			t.Errorf("Expected at least 4 events today, got %d", counts[0].Count)
		}
	})
}
