//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/prowheel/wheellab/pkg/db/migrate"
	database "github.com/prowheel/wheellab/pkg/db/postgres"
)

// SetupTestDB starts (or reuses) a postgres container, applies the
// migrations and returns a pool for it.
func SetupTestDB() *pgxpool.Pool {
	ctx := context.Background()
	container, err := SetupPostgres(ctx,
		WithInitialDatabase("postgres", "password", "postgres"),
		WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
		WithName("wheellab-test"),
	)
	if err != nil {
		log.Fatal(err)
	}
	dbURL, err := container.ConnectionString(ctx)
	if err != nil {
		log.Fatal(err)
	}

	return setupPool(ctx, dbURL)
}

// SetupExternalTestDB uses the database referenced by TESTDB_URL.
func SetupExternalTestDB() *pgxpool.Pool {
	return setupPool(context.Background(), os.Getenv("TESTDB_URL"))
}

func setupPool(ctx context.Context, dbURL string) *pgxpool.Pool {
	if err := migrate.MigrateDB(dbURL); err != nil {
		log.Fatal(err)
	}
	pool, err := database.InitWithURL(ctx, dbURL)
	if err != nil {
		log.Fatal(err)
	}
	return pool
}

func ClearRecipeTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from recipe")
}

func ClearBuildTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from build")
}

func ClearCatalogTables(pool *pgxpool.Pool) {
	for _, table := range []string{"nipple", "spoke", "hub", "rim"} {
		pool.Exec(context.Background(), "delete from "+table)
	}
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearRecipeTable(pool)
	ClearBuildTable(pool)
	ClearCatalogTables(pool)
}
