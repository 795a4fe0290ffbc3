//cmd/seeder/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/unclebandit/quickreview-backend/internal/app"
	"github.com/unclebandit/quickreview-backend/internal/config"
	"github.com/unclebandit/quickreview-backend/internal/db"
	"github.com/unclebandit/quickreview-backend/internal/logger"
	"github.com/unclebandit/quickreview-backend/internal/migration"
	"github.com/unclebandit/quickreview-backend/internal/service"
)

const (
	demoPostName  = "quickreview-demo"
	demoItemCount = 3
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.App.LogLevel, cfg.App.LogFile).Named("seeder")
	defer func() { _ = log.Sync() }()

	if err := migration.Up(cfg.Database.GetDatabaseURL()); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	conn, err := db.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	defer conn.Close()

	a, err := app.New(cfg, conn, log)
	if err != nil {
		log.Fatal("failed to build services", zap.Error(err))
	}

	postID, err := seedPost(ctx, a)
	if err != nil {
		log.Fatal("failed to seed post", zap.Error(err))
	}

	if _, err := a.Settings.SavePostTypes(ctx, []string{"post", "page"}); err != nil {
		log.Fatal("failed to seed settings", zap.Error(err))
	}

	today := time.Now().In(cfg.App.Location())
	campaignID, err := a.Campaigns.EnsureCampaign(ctx, service.CampaignInput{
		Name:      "Demo campaign",
		StartDate: today.Format(service.DateLayout),
		EndDate:   today.AddDate(0, 1, 0).Format(service.DateLayout),
		Status:    "published",
		PostID:    postID,
	})
	if err != nil {
		log.Fatal("failed to seed campaign", zap.Error(err))
	}

	for i := 1; i <= demoItemCount; i++ {
		item, err := a.Items.CreateItem(ctx, service.ItemInput{
			PostID:     postID,
			CampaignID: campaignID,
			Name:       fmt.Sprintf("Demo item %d", i),
		})
		if err != nil {
			log.Fatal("failed to seed item", zap.Error(err))
		}
		fmt.Printf("Seeded item %s -> %s\n", item.Reference, item.ReviewURL)
	}

	fmt.Println("Database seeding completed successfully!")
}

// seedPost makes sure the demo post exists in the host posts table.
func seedPost(ctx context.Context, a *app.App) (int64, error) {
	schema, err := db.NewSchema(a.Config.Schema.HostPrefix)
	if err != nil {
		return 0, err
	}

	var id int64
	err = a.DB.GetContext(ctx, &id, fmt.Sprintf(`SELECT id FROM %s WHERE post_name = $1 LIMIT 1`, schema.Posts), demoPostName)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	err = a.DB.QueryRowxContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (post_type, post_title, post_name, post_status, post_date)
		VALUES ('post', 'QuickReview demo', $1, 'publish', NOW())
		RETURNING id`, schema.Posts), demoPostName).Scan(&id)
	return id, err
}
