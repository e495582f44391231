// Package main loads generated users into the configured store for local
// testing and benchmarks.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chybatronik/goUserFilter/internal/config"
	"github.com/chybatronik/goUserFilter/internal/database"
	"github.com/chybatronik/goUserFilter/internal/database/sqlite"
	"github.com/chybatronik/goUserFilter/internal/logging"
	"github.com/chybatronik/goUserFilter/internal/models"
)

var (
	firstNames = []string{"Alex", "Maria", "John", "Sarah", "Mike", "Emma", "David", "Lisa", "Ivan", "Olga"}
	lastNames  = []string{"Smith", "Johnson", "Brown", "Davis", "Wilson", "Miller", "Taylor", "Anderson", "Ivanov", "Petrova"}
)

type seedOptions struct {
	users     int
	companies int
	seed      uint64
	batch     int
}

// companyStore creates the companies users are spread over
type companyStore interface {
	CreateCompany(ctx context.Context, name string) (models.Company, error)
}

// loader writes one batch of users and reports how many were stored
type loader func(ctx context.Context, users []models.User) (int64, error)

func main() {
	opts := seedOptions{}

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Generate test users in the configured database",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.users, "users", 10000, "Number of users to generate")
	cmd.Flags().IntVar(&opts.companies, "companies", 5, "Number of companies to spread users over")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "Random seed; the same seed generates the same users")
	cmd.Flags().IntVar(&opts.batch, "batch", 1000, "Users written per batch")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts seedOptions) error {
	if opts.users < 0 || opts.companies < 0 || opts.batch <= 0 {
		return fmt.Errorf("users and companies must not be negative, batch must be positive")
	}

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.NewLogger(os.Stderr, appConfig.Logging.Level, "text", "goUserFilter-seed", "")

	var (
		companies companyStore
		load      loader
	)

	switch appConfig.Database.Driver {
	case config.DriverPostgres:
		pool, err := database.NewConnectionPool(ctx, appConfig, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := database.NewUserStore(pool, logger)
		companies, load = store, store.CopyUsers

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, appConfig.Database.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()

		store := sqlite.NewUserStore(db)
		companies, load = store, createEach(store)

	default:
		return fmt.Errorf("cannot seed the %s driver", appConfig.Database.Driver)
	}

	return seed(ctx, opts, companies, load, logger)
}

// seed creates the companies, then generates and loads users in batches
func seed(ctx context.Context, opts seedOptions, companies companyStore, load loader, logger *logging.Logger) error {
	start := time.Now()
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed))

	created := make([]models.Company, 0, opts.companies)
	for i := range opts.companies {
		c, err := companies.CreateCompany(ctx, fmt.Sprintf("Company %d-%d", opts.seed, i+1))
		if err != nil {
			return fmt.Errorf("failed to create company: %w", err)
		}
		created = append(created, c)
	}

	var total int64
	for from := 0; from < opts.users; from += opts.batch {
		n, err := load(ctx, generateUsers(rng, from, min(opts.batch, opts.users-from), opts.seed, created))
		if err != nil {
			return fmt.Errorf("failed to load users %d-%d: %w", from, from+opts.batch, err)
		}
		total += n
		logger.Info("batch loaded", "loaded", total, "of", opts.users)
	}

	logger.Info("seeding completed",
		"users", total,
		"companies", len(created),
		logging.FieldDurationMs, time.Since(start).Milliseconds(),
	)
	return nil
}

// generateUsers builds n users numbered from offset. Usernames embed the seed
// and the number so repeated runs with different seeds do not collide. About
// one in ten users has no birth date and one in five has no company.
func generateUsers(rng *rand.Rand, offset, n int, seed uint64, companies []models.Company) []models.User {
	now := time.Now().UTC()
	users := make([]models.User, 0, n)

	for i := offset; i < offset+n; i++ {
		first := firstNames[rng.IntN(len(firstNames))]
		last := lastNames[rng.IntN(len(lastNames))]

		u := models.User{
			Username:  fmt.Sprintf("%s.%s.%d.%d", strings.ToLower(first), strings.ToLower(last), seed, i),
			FirstName: first,
			LastName:  last,
			Role:      models.RoleUser,
		}
		if rng.IntN(20) == 0 {
			u.Role = models.RoleAdmin
		}
		if rng.IntN(10) != 0 {
			birth := time.Date(now.Year()-18-rng.IntN(62), time.Month(1+rng.IntN(12)), 1+rng.IntN(28), 0, 0, 0, 0, time.UTC)
			u.BirthDate = &birth
		}
		if len(companies) > 0 && rng.IntN(5) != 0 {
			id := companies[rng.IntN(len(companies))].ID
			u.CompanyID = &id
		}
		users = append(users, u)
	}
	return users
}

// createEach loads users one insert at a time for stores without bulk copy
func createEach(store interface {
	Create(ctx context.Context, u models.User) (models.User, error)
}) loader {
	return func(ctx context.Context, users []models.User) (int64, error) {
		var n int64
		for _, u := range users {
			if _, err := store.Create(ctx, u); err != nil {
				return n, err
			}
			n++
		}
		return n, nil
	}
}
