package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"rovia/internal/adapters/observability"
	"rovia/internal/domain"
	"rovia/internal/shared"
	mysqlrepo "rovia/internal/storage/mysql"
)

// Seeds the roles, the administrator account, and the baseline attraction
// catalog. Safe to run repeatedly; existing rows are left alone.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, "seeder")
	log.Info().Int("workers", cfg.SeedWorkers).Msg("seeder starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	for _, role := range []string{domain.RoleVisitor, domain.RolePromoter, domain.RoleAdministrator} {
		if _, err := repo.EnsureRole(ctx, role); err != nil {
			log.Fatal().Str("role", role).Err(err).Msg("ensure role failed")
		}
	}

	adminRoleID, err := repo.RoleIDByName(ctx, domain.RoleAdministrator)
	if err != nil {
		log.Fatal().Err(err).Msg("administrator role missing after seed")
	}
	if err := repo.EnsureUser(ctx, "admin", "admin@rovia.example", "", adminRoleID); err != nil {
		log.Fatal().Err(err).Msg("ensure admin failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.SeedWorkers))
	var wg sync.WaitGroup

	for _, a := range baselineAttractions {
		a := a

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(a domain.Attraction) {
			defer wg.Done()
			defer sem.Release(1)

			if err := repo.SeedAttraction(ctx, a); err != nil {
				log.Warn().Str("name", a.Name).Err(err).Msg("seed failed")
				return
			}
			log.Info().Str("name", a.Name).Msg("seed ok")
		}(a)
	}

	wg.Wait()
	log.Info().Msg("seeding completed")
}
