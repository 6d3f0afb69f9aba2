package main

import (
	"context"
	"flag"
	"foodia-handoff/cmd/config"
	migration "foodia-handoff/cmd/database/migrate"
	"foodia-handoff/internal/utils"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	migrate := flag.Bool("migrate", false, "run database migrations before serving")
	flag.Parse()

	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("error connecting database: %v", err)
	}
	if *migrate {
		if err := migration.Migrate(db); err != nil {
			log.Fatalf("error migrating database: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := config.NewApp(ctx, db)
	if err != nil {
		log.Fatalf("error creating app: %v", err)
	}

	port := utils.GetConfig("PORT")
	if port == "" {
		port = "8080"
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resumed, err := app.TransactionService.ResumeSessions(gctx)
		if err != nil {
			log.Errorf("error resuming tracking sessions: %v", err)
			return nil
		}
		log.Infof("resumed %d tracking sessions", resumed)
		return nil
	})
	g.Go(func() error {
		return app.Fiber.Listen(":" + port)
	})
	g.Go(func() error {
		<-gctx.Done()
		app.Shutdown()
		return app.Fiber.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil {
		log.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
	log.Info("server stopped cleanly")
}
