package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/paddlelab/leaguesync/internal/config"
	"github.com/paddlelab/leaguesync/internal/domain/orphanmap"
	"github.com/paddlelab/leaguesync/internal/infrastructure/repository/postgres"
	"github.com/paddlelab/leaguesync/internal/infrastructure/source"
	"github.com/paddlelab/leaguesync/internal/platform/logging"
	"github.com/paddlelab/leaguesync/internal/usecase"
)

// Engine bundles the wired run service with the resources it owns.
type Engine struct {
	Runs  *usecase.RunService
	Rules config.RuleSet

	db     *sqlx.DB
	logger *logging.Logger
}

// NewEngine opens the database, loads the league rules and wires every
// service. The caller owns the engine and must Close it.
func NewEngine(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Engine, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.DBURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}

	db, err := otelsqlx.Connect("postgres", cfg.DBURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxWorkers * 2)
	db.SetMaxIdleConns(cfg.MaxWorkers)

	rules := config.DefaultRuleSet()
	if cfg.LeagueRulesPath != "" {
		rules, err = config.LoadRuleSet(cfg.LeagueRulesPath)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("league rules loaded", "path", cfg.LeagueRulesPath, "version", rules.Version)
	}

	leagueRepo := postgres.NewLeagueRepository(db)
	clubRepo := postgres.NewClubRepository(db)
	seriesRepo := postgres.NewSeriesRepository(db)
	teamRepo := postgres.NewTeamRepository(db)
	playerRepo := postgres.NewPlayerRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	matchRepo := postgres.NewMatchRepository(db)
	statRepo := postgres.NewSeriesStatRepository(db)
	orphanRepo := postgres.NewOrphanMappingRepository(db)

	loader := source.NewLoader(cfg.SourceDir, logger)
	resolver := usecase.NewResolverService(teamRepo, seriesRepo, clubRepo, playerRepo, logger)
	consolidator := usecase.NewConsolidationService(seriesRepo, logger)
	importer := usecase.NewImportService(
		playerRepo, scheduleRepo, matchRepo, statRepo,
		cfg.BatchSize, cfg.RowErrorCeiling, logger,
	)
	integrity := usecase.NewIntegrityService(
		playerRepo, matchRepo, scheduleRepo, statRepo, orphanRepo,
		cfg.TeamAssignConfidence, logger,
	)

	runs := usecase.NewRunService(
		loader, leagueRepo, resolver, consolidator, importer, integrity,
		rules, cfg.MaxWorkers, logger,
	)

	return &Engine{Runs: runs, Rules: rules, db: db, logger: logger}, nil
}

// SyncOrphanMappings pushes the rules file's orphan remaps into the mapping
// table so the integrity sweep can apply them.
func (e *Engine) SyncOrphanMappings(ctx context.Context) error {
	orphanRepo := postgres.NewOrphanMappingRepository(e.db)
	for _, remap := range e.Rules.OrphanRemaps {
		mapping := orphanmap.Mapping{
			OrphanLeagueID:  remap.OrphanLeagueID,
			CurrentLeagueID: remap.CurrentLeagueID,
			Version:         e.Rules.Version,
			Note:            remap.Note,
		}
		if err := orphanRepo.Upsert(ctx, mapping); err != nil {
			return fmt.Errorf("sync orphan mapping %d: %w", remap.OrphanLeagueID, err)
		}
	}
	return nil
}

func (e *Engine) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}
