package fx

import (
	"hero-arena/internal/config"
	"hero-arena/internal/database"
	"hero-arena/internal/logger"
	"hero-arena/internal/repository"
	"hero-arena/internal/server"
	"hero-arena/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func provideBattleEngine(log zerolog.Logger) *service.BattleEngine {
	return service.NewBattleEngine(log)
}

func provideLifecycleService(
	matchStore service.MatchStore,
	submissionStore service.SubmissionStore,
	roundStore service.RoundStore,
	eventStore service.EventStore,
	catalog service.HeroCatalog,
	engine *service.BattleEngine,
	fatigue *service.FatigueService,
	log zerolog.Logger,
	cfg *config.Config,
) *service.LifecycleService {
	return service.NewLifecycleService(
		matchStore, submissionStore, roundStore, eventStore, catalog,
		engine, fatigue, log, cfg.BatchWorkers,
	)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos, bound to the store contracts the services consume
	fx.Provide(
		fx.Annotate(repository.NewHeroRepository, fx.As(new(service.HeroCatalog)), fx.As(new(service.RosterCatalog))),
		fx.Annotate(repository.NewSessionRepository, fx.As(new(service.SessionStore))),
		fx.Annotate(repository.NewTeamRepository, fx.As(new(service.TeamStore))),
		fx.Annotate(repository.NewRoundRepository, fx.As(new(service.RoundStore))),
		fx.Annotate(repository.NewSubmissionRepository, fx.As(new(service.SubmissionStore))),
		fx.Annotate(repository.NewMatchRepository, fx.As(new(service.MatchStore))),
		fx.Annotate(repository.NewEventRepository, fx.As(new(service.EventStore))),
		fx.Annotate(repository.NewUsageRepository, fx.As(new(service.UsageStore))),
	),
	// svc
	fx.Provide(
		provideBattleEngine,
		service.NewFatigueService,
		service.NewSubmissionValidator,
		service.NewSessionService,
		service.NewRoundService,
		service.NewRosterService,
		provideLifecycleService,
	),
	// server
	fx.Provide(server.NewArenaServer),
)
