package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"worksheet-quiz/internal/app"
	"worksheet-quiz/internal/domain"
	"worksheet-quiz/internal/infra/postgres"
	pgmigrations "worksheet-quiz/internal/infra/postgres/migrations"
	infraredis "worksheet-quiz/internal/infra/redis"
	"worksheet-quiz/internal/logger"
)

const sampleWorksheet = `{
	"code": "103052",
	"title": "Adding fractions",
	"subject": "Mathematics",
	"level": "Beginner",
	"questions": [
		{"id": 1, "question": "1/2 + 1/2?", "options": ["1", "2", "1/4", "0"], "correctAnswer": 0, "points": 10},
		{"id": 2, "question": "1/4 + 1/4?", "options": ["1", "1/2", "2", "0"], "correctAnswer": 1, "points": 20}
	]
}`

func TestWorksheetsSurviveRestartEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	durable := postgres.NewBlobStore(pool, "worksheets")
	if _, err := durable.Load(ctx); !errors.Is(err, domain.ErrBlobNotFound) {
		t.Fatalf("expected empty table, got %v", err)
	}

	store := infraredis.NewBlobStore(redisClient, "worksheets", durable, 5*time.Minute)
	repo := app.NewRepository(store, logger.Discard(), nil)
	if _, err := repo.Ingest("103052.json", []byte(sampleWorksheet)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := repo.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Drop the cache so the reload has to go through Postgres.
	if err := redisClient.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	restarted := app.NewRepository(infraredis.NewBlobStore(redisClient, "worksheets", durable, 5*time.Minute), logger.Discard(), nil)
	if err := restarted.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	ws, err := restarted.Get("103052")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(ws.Questions) != 2 || ws.Questions[1].Points != 20 {
		t.Fatalf("unexpected worksheet after reload: %+v", ws)
	}
	if n, err := redisClient.Exists(ctx, "worksheets:worksheets").Result(); err != nil || n != 1 {
		t.Fatalf("expected reload to refill the cache, exists=%d err=%v", n, err)
	}

	game := app.NewGame("player-1", restarted, logger.Discard(), nil, nil)
	game.Dispatch(ctx, app.QuickCodeSelected{Code: "103052"})
	snap, effects := game.Dispatch(ctx, app.Activate{})
	if snap.State != domain.StateReady || len(effects) != 1 || effects[0].Kind != domain.EffectActivated {
		t.Fatalf("expected activated worksheet, got state=%s effects=%+v", snap.State, effects)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
