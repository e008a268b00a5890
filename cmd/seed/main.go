package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/rs/zerolog"

	"telegram-subscription-tracker/internal/config"
	"telegram-subscription-tracker/internal/domain/model"
	pg "telegram-subscription-tracker/internal/infra/db/postgres"
	red "telegram-subscription-tracker/internal/infra/redis"
	"telegram-subscription-tracker/internal/usecase"
)

// seed fills the database with a few records for one Telegram account so the
// list, sort and reminder flows can be tried by hand.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	tgID := flag.Int64("tg", 0, "Telegram user id to seed records for")
	reset := flag.Bool("reset", false, "wipe all tables before seeding")
	flag.Parse()
	if *tgID <= 0 {
		log.Fatal("-tg is required")
	}

	// ---- Config ----
	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := zerolog.Nop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()

	if *reset {
		log.Println("wiping users, settings and subscriptions...")
		if _, err := pool.Exec(ctx, `TRUNCATE users, user_settings, subscriptions RESTART IDENTITY CASCADE`); err != nil {
			log.Fatalf("truncate: %v", err)
		}
	}
	// a dialogue left over from before the reseed would point at missing records
	if err := red.NewSessionStore(redisClient, cfg.Redis.TTL, &logger).EndDialogue(ctx, *tgID); err != nil {
		log.Fatalf("clear session: %v", err)
	}

	tm := pg.NewTxManager(pool)
	userUC, err := usecase.NewUserUseCase(pg.NewUserRepo(pool), tm, &logger)
	if err != nil {
		log.Fatalf("user use case: %v", err)
	}
	subUC := usecase.NewSubscriptionUseCase(
		pg.NewSubscriptionRepoCacheDecorator(pg.NewSubscriptionRepo(pool), redisClient, 0),
		tm, cfg.Session.PageSize, &logger)

	user, err := userUC.FindOrCreate(ctx, *tgID, "seed")
	if err != nil {
		log.Fatalf("user: %v", err)
	}

	today := model.DateOf(time.Now().In(cfg.Location()))
	seed := []struct {
		Name     string
		Price    int64
		InDays   int
		Months   int
		Category string
	}{
		{"Netflix", 79900, 3, 1, "video"},
		{"Spotify", 29950, 7, 1, "music"},
		{"iCloud", 14900, 1, 1, "cloud"},
		{"Domain", 120000, 40, 12, "hosting"},
		{"Gym", 250000, 12, 1, "sport"},
		{"Newspaper", 39900, 20, 3, ""},
	}
	for _, s := range seed {
		rec := &model.Subscription{
			Name:          s.Name,
			PriceMinor:    s.Price,
			PaymentDate:   today.AddDate(0, 0, s.InDays),
			RenewalMonths: s.Months,
			Category:      s.Category,
		}
		if err := subUC.Save(ctx, user.ID, rec); err != nil {
			log.Fatalf("save %q: %v", s.Name, err)
		}
		fmt.Printf("seeded: %s (id=%d, pays %s, %s)\n",
			rec.Name, rec.ID, rec.PaymentDate.Format(model.DisplayDateLayout), model.FormatPrice(rec.PriceMinor)+" "+cfg.Bot.Currency)
	}
	fmt.Println("Seeding complete.")
}
