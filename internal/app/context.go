package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/nameless/internal/audit"
	"github.com/oggyb/nameless/internal/auth"
	"github.com/oggyb/nameless/internal/cache"
	"github.com/oggyb/nameless/internal/config"
	"github.com/oggyb/nameless/internal/mutation"
	"github.com/oggyb/nameless/internal/pending"
	"github.com/oggyb/nameless/internal/repository"
	"github.com/oggyb/nameless/internal/search"
	"github.com/oggyb/nameless/internal/token"
	"github.com/oggyb/nameless/internal/verification"
)

// Notifier is the fire-and-forget mail sink shared by every service.
type Notifier interface {
	Notify(to, body string)
}

// AppContext holds shared dependencies (DB, Redis, Logger, engines, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger

	Store        *repository.Store
	Index        search.Index
	Notifier     Notifier
	Audit        *audit.Trail
	Tokens       *token.Service
	Auth         *auth.Engine
	Verification *verification.Engine
	Mutation     *mutation.Orchestrator
}

// Deps are the infrastructure handles opened by the caller.
type Deps struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Index      search.Index
	Notifier   Notifier
	Audit      *audit.Trail
	Logger     *slog.Logger
}

// New creates a new AppContext and builds the engines on top of deps.
//
// Behavior:
//   - One token service signs mail, access and refresh tokens.
//   - Pending records live in Redis under the mail-token TTL.
//   - Fails only when the token settings are unusable.
func New(cfg *config.Config, deps Deps) (*AppContext, error) {
	tokens, err := token.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	store := repository.NewStore(deps.DB)

	return &AppContext{
		Config:     cfg,
		DB:         deps.DB,
		RedisCache: deps.RedisCache,
		Logger:     deps.Logger,

		Store:    store,
		Index:    deps.Index,
		Notifier: deps.Notifier,
		Audit:    deps.Audit,
		Tokens:   tokens,
		Auth:     auth.NewEngine(store.Users, tokens, deps.Logger),
		Verification: verification.NewEngine(
			pending.NewRedisStore(deps.RedisCache), tokens, deps.Notifier, deps.Logger,
			verification.WithConsumeOnConfirm(cfg.Verification.ConsumeOnConfirm),
		),
		Mutation: mutation.New(store, deps.Index, deps.Notifier, deps.Logger),
	}, nil
}
