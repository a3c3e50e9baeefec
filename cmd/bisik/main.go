package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gitlab.com/bisikapp/bisik/internal/content"
	"gitlab.com/bisikapp/bisik/internal/engagement"
	"gitlab.com/bisikapp/bisik/internal/feed"
	"gitlab.com/bisikapp/bisik/internal/models"
	"gitlab.com/bisikapp/bisik/internal/moderation"
	"gitlab.com/bisikapp/bisik/internal/routes"
	"gitlab.com/bisikapp/bisik/internal/store"
)

const usage = `Usage:
	- start
	- migrate [up/down/drop]
`

// reapInterval is how often expired records are physically removed. Reads
// are correct without the reaper; this only bounds table growth.
const reapInterval = 1 * time.Hour

func main() {
	if len(os.Args) == 1 {
		fmt.Print(usage)
		return
	}
	envConfig := models.ReadEnvConfig()
	switch os.Args[1] {
	case "start":
		server := BisikServer{EnvConfig: envConfig}
		server.Setup()
		server.Run()
	case "migrate":
		if len(os.Args) < 3 {
			fmt.Print(usage)
			return
		}
		var err error
		switch os.Args[2] {
		case "up":
			err = store.MigrateUp(envConfig.DatabaseURL)
		case "down":
			err = store.MigrateDown(envConfig.DatabaseURL)
		case "drop":
			err = store.Drop(envConfig.DatabaseURL)
		default:
			fmt.Print(usage)
			return
		}
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Done")
	default:
		fmt.Print(usage)
	}
}

type BisikServer struct {
	models.EnvConfig
	addr       string
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	database   *store.Postgres
}

func (server *BisikServer) setupLogger() {
	var writer io.Writer
	if server.Debug {
		writer = zerolog.ConsoleWriter{Out: os.Stdout}
	} else {
		writer = os.Stdout
	}
	log := zerolog.New(writer).With().Timestamp().Logger()
	if server.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	server.logger = log
}

func (server *BisikServer) setupStore() {
	err := store.MigrateUp(server.DatabaseURL)
	if err != nil {
		server.logger.Fatal().Err(err).Send()
	}
	database, err := store.Connect(context.Background(), server.DatabaseURL)
	if err != nil {
		server.logger.Fatal().AnErr("Connecting to postgres", err).Send()
	}
	server.database = database
}

func (server *BisikServer) setupRouter() {
	s := server.database.Store()
	r := &routes.Routes{
		Content:    content.NewService(s, server.BanGatesIntel),
		Feed:       feed.NewComposer(s, server.FeedLimit, server.SeedFiller),
		Engagement: engagement.NewService(s),
		Moderation: moderation.NewEngine(s, server.logger),
	}
	server.router = r.Router(server.logger)
}

func (server *BisikServer) setupHttpServer() {
	server.addr = fmt.Sprintf(":%s", server.EnvConfig.Port)
	server.httpServer = &http.Server{
		Addr:         server.addr,
		Handler:      server.router,
		ReadTimeout:  1 * time.Minute,
		WriteTimeout: 1 * time.Minute,
	}
}

func (server *BisikServer) Setup() {
	server.setupLogger()
	server.setupStore()
	server.setupRouter()
	server.setupHttpServer()
}

func (server *BisikServer) Shutdown() {
	if err := server.httpServer.Shutdown(context.Background()); err != nil {
		server.logger.Error().
			Err(err).
			Msg("Error shutting down")
	}
	server.database.Close()
}

func (server *BisikServer) reapLoop(ctx context.Context) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reaped, err := server.database.ReapExpired(ctx)
			if err != nil {
				server.logger.Error().Err(err).Msg("Reaping expired records")
				continue
			}
			if reaped > 0 {
				server.logger.Info().Int64("reaped", reaped).Msg("Expired records removed")
			}
		}
	}
}

func (server *BisikServer) Run() {
	server.logger.Info().Str("server_address", server.addr).Msg("Server is starting")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go server.httpServer.ListenAndServe()
	go server.reapLoop(ctx)
	server.logger.Info().Msg("Ready")

	<-ctx.Done()
	stop() // Stop listening for signals
	server.logger.Info().Msg("Shutting down gracefully")
	server.Shutdown()
}
