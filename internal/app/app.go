package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/unclebandit/quickreview-backend/internal/config"
	"github.com/unclebandit/quickreview-backend/internal/db"
	"github.com/unclebandit/quickreview-backend/internal/queue"
	"github.com/unclebandit/quickreview-backend/internal/repository"
	"github.com/unclebandit/quickreview-backend/internal/service"
	"github.com/unclebandit/quickreview-backend/internal/token"
)

// App holds the services shared by the server, worker and seeder binaries.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Queue  *queue.InMemoryQueue

	Campaigns *service.CampaignService
	Items     *service.CampaignItemService
	Posts     *service.PostService
	Settings  *service.SettingsService
	Validator *service.ReferenceValidator
	Sync      *service.CounterSynchronizer
}

// New builds every repository and service once and subscribes the counter
// synchronizer to the comment event topics.
func New(cfg *config.Config, conn *sqlx.DB, logger *zap.Logger) (*App, error) {
	schema, err := db.NewSchema(cfg.Schema.HostPrefix)
	if err != nil {
		return nil, fmt.Errorf("invalid schema config: %w", err)
	}

	campaignRepo := repository.NewCampaignRepository(conn, schema)
	itemRepo := repository.NewCampaignItemRepository(conn, schema)
	commentRepo := repository.NewCommentRepository(conn, schema)
	postRepo := repository.NewPostRepository(conn, schema)
	settingsRepo := repository.NewSettingsRepository(conn, schema)

	settings := &service.SettingsService{SettingsRepo: settingsRepo}
	validator := service.NewReferenceValidator(itemRepo, cfg.App.Location())

	a := &App{
		Config: cfg,
		Logger: logger,
		DB:     conn,
		Queue:  queue.NewInMemoryQueue(),
		Campaigns: &service.CampaignService{
			CampaignRepo: campaignRepo,
			PostRepo:     postRepo,
			Logger:       logger.Named("campaigns"),
		},
		Items: &service.CampaignItemService{
			CampaignRepo: campaignRepo,
			ItemRepo:     itemRepo,
			PostRepo:     postRepo,
			Tokens:       token.NewGenerator(itemRepo),
			SiteURL:      cfg.App.SiteURL,
			Logger:       logger.Named("items"),
		},
		Posts: &service.PostService{
			PostRepo: postRepo,
			Settings: settings,
			SiteURL:  cfg.App.SiteURL,
			PerPage:  cfg.Search.PostsPerPage,
		},
		Settings:  settings,
		Validator: validator,
		Sync: &service.CounterSynchronizer{
			Comments:  commentRepo,
			ItemRepo:  itemRepo,
			Validator: validator,
			Logger:    logger.Named("sync"),
		},
	}

	if err := queue.SubscribeCommentEvents(a.Queue, a.Sync, logger.Named("queue")); err != nil {
		return nil, err
	}
	return a, nil
}
