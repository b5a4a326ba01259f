// Command webui serves the browser chat interface and the JSON chat API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/graphchat/server/internal/chatbot"
	"github.com/graphchat/server/internal/config"
	"github.com/graphchat/server/internal/httpserver"
	logx "github.com/graphchat/server/pkg/logger"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Println("Note: no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Env()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := chatbot.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize chatbot: %v\n", err)
		os.Exit(1)
	}

	server := httpserver.New(httpserver.Config{
		Port:        cfg.HTTPPort,
		Environment: cfg.Env(),
	}, bot)

	logx.Info().Str("port", cfg.HTTPPort).Msg("starting web UI")
	fmt.Printf("Chat UI available at http://localhost:%s\n", cfg.HTTPPort)

	if err := server.Run(ctx); err != nil {
		logx.Error().Err(err).Msg("HTTP server terminated")
		os.Exit(1)
	}
}
