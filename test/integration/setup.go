package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/nafia007/afd-submissions-sub001/internal/adapters/handler/http"
	pgrepo "github.com/nafia007/afd-submissions-sub001/internal/adapters/repository/postgres"
	"github.com/nafia007/afd-submissions-sub001/internal/app"
	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
	"github.com/nafia007/afd-submissions-sub001/internal/database"
)

var jwtSecret = []byte("test-secret")

type TestApp struct {
	DB     *sql.DB
	Repos  *database.Repositories
	Ledger *app.App
	Server *httptest.Server

	container testcontainers.Container
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	container, connStr, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := database.ConnectPostgres(ctx, connStr, logger)
	require.NoError(t, err)
	require.NoError(t, pgrepo.ApplyMigrations(ctx, db))
	// re-running is a no-op
	require.NoError(t, pgrepo.ApplyMigrations(ctx, db))

	repos := database.NewPostgres(db)
	ledger := app.New(repos, app.Options{
		EligibleRoles: []string{domain.RoleUser},
		Logger:        logger,
	})

	return &TestApp{
		DB:        db,
		Repos:     repos,
		Ledger:    ledger,
		Server:    httptest.NewServer(ledger.Handler(jwtSecret)),
		container: container,
	}
}

func (a *TestApp) Teardown(t *testing.T) {
	t.Helper()
	a.Server.Close()
	_ = a.Repos.Close()
	require.NoError(t, a.container.Terminate(context.Background()))
}

func createUserAndToken(t *testing.T, db *sql.DB, userID string) string {
	t.Helper()

	email := fmt.Sprintf("%s@example.com", userID)
	_, err := db.Exec("INSERT INTO users (id, email, role) VALUES ($1, $2, 'user')", userID, email)
	require.NoError(t, err)

	return tokenFor(t, userID, false)
}

func tokenFor(t *testing.T, userID string, admin bool) string {
	t.Helper()
	signed, err := handler.IssueToken(jwtSecret, userID, admin, jwt.MapClaims{
		"exp": time.Now().Add(15 * time.Minute).Unix(),
		"iat": time.Now().Unix(),
	})
	require.NoError(t, err)
	return signed
}
