package repository

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/domain"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

var testDB *sql.DB

func setupTestDatabase() (func(), error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	teardown := func() {
		if testDB != nil {
			testDB.Close()
		}
		if err := container.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}

	host, err := container.Host(ctx)
	if err != nil {
		teardown()
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		teardown()
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		teardown()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(testDB, zap.NewNop()); err != nil {
		teardown()
		return nil, err
	}

	return teardown, nil
}

func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Short() {
		os.Exit(m.Run())
	}

	teardown, err := setupTestDatabase()
	if err != nil {
		log.Printf("postgres tests disabled: %v", err)
		testDB = nil
		os.Exit(m.Run())
	}

	code := m.Run()
	teardown()
	os.Exit(code)
}

func requireDB(t *testing.T) *sql.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres container not available")
	}
	return testDB
}

func truncate(t *testing.T, db *sql.DB, tables ...string) {
	t.Helper()
	for _, table := range tables {
		_, err := db.Exec("TRUNCATE TABLE " + table + " CASCADE")
		require.NoError(t, err)
	}
}

func TestProductRepository_Postgres(t *testing.T) {
	db := requireDB(t)
	truncate(t, db, "products")
	repo := NewProductRepository(db)
	ctx := context.Background()

	for _, p := range SeedProducts() {
		require.NoError(t, repo.Create(ctx, p))
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, []string{all[0].ID, all[1].ID, all[2].ID, all[3].ID})

	seeded := SeedProducts()[0]
	found, err := repo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, seeded.Name, found.Name)
	assert.Equal(t, seeded.Sizes, found.Sizes)
	assert.InDelta(t, seeded.Price, found.Price, 0.001)

	updated := found.Clone()
	updated.Name = "Renamed"
	updated.Colors = []string{}
	updated.CreatedAt = time.Now().Add(time.Hour)
	require.NoError(t, repo.Update(ctx, &updated))

	found, err = repo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Name)
	assert.Equal(t, []string{}, found.Colors)
	assert.True(t, seeded.CreatedAt.Equal(found.CreatedAt))

	assert.ErrorIs(t, repo.Update(ctx, &domain.Product{ID: "missing", Price: 1}), ErrProductNotFound)

	require.NoError(t, repo.Delete(ctx, "p1"))
	assert.ErrorIs(t, repo.Delete(ctx, "p1"), ErrProductNotFound)
	_, err = repo.FindByID(ctx, "p1")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCategoryRepository_Postgres(t *testing.T) {
	db := requireDB(t)
	truncate(t, db, "categories")
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	for _, c := range SeedCategories() {
		require.NoError(t, repo.Create(ctx, c))
	}
	err := repo.Create(ctx, &domain.Category{ID: "other", Name: "Shirts", Slug: "shirts"})
	assert.ErrorIs(t, err, ErrCategoryAlreadyExists)

	require.NoError(t, repo.Delete(ctx, "pants"))
	assert.ErrorIs(t, repo.Delete(ctx, "pants"), ErrCategoryNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "shirts", all[0].Slug)
	assert.Equal(t, "jackets", all[1].Slug)
}

func TestUserAndSessionRepository_Postgres(t *testing.T) {
	db := requireDB(t)
	truncate(t, db, "users")
	users := NewUserRepository(db)
	sessions := NewSessionRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	user := &domain.User{
		ID:           uuid.New(),
		Email:        "owner@shop.com",
		PasswordHash: "hash",
		Role:         "admin",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, users.Create(ctx, user))

	dup := *user
	dup.ID = uuid.New()
	assert.ErrorIs(t, users.Create(ctx, &dup), ErrUserAlreadyExists)

	found, err := users.FindByEmail(ctx, "owner@shop.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.False(t, found.Disabled)

	require.NoError(t, users.SetDisabled(ctx, user.ID, true))
	found, err = users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, found.Disabled)
	assert.ErrorIs(t, users.SetDisabled(ctx, uuid.New(), true), ErrUserNotFound)

	_, err = users.FindByEmail(ctx, "nobody@shop.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	record := &domain.SessionRecord{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, sessions.Create(ctx, record))

	got, err := sessions.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	require.NoError(t, sessions.Revoke(ctx, record.ID))
	_, err = sessions.FindByID(ctx, record.ID)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	_, err = sessions.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, sessions.Revoke(ctx, uuid.New()), ErrSessionNotFound)
}
