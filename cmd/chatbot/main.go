// Command chatbot runs the interactive terminal chat loop.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/graphchat/server/internal/chatbot"
	"github.com/graphchat/server/internal/config"
	"github.com/graphchat/server/internal/viz"
	logx "github.com/graphchat/server/pkg/logger"
)

var exitWords = map[string]bool{
	"quit": true,
	"exit": true,
	"q":    true,
}

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

	health := bot.HealthCheck(ctx)
	if !health.Healthy() {
		fmt.Fprintf(os.Stderr, "Chatbot is unhealthy: %v\n", health.Errors)
		os.Exit(1)
	}

	if cfg.SaveVisualizations {
		saveVisualizations(ctx, cfg, bot)
	}

	printBanner(cfg, bot)
	runLoop(ctx, cfg, bot)
}

// saveVisualizations writes the graph diagram artifacts. Failures only warn.
func saveVisualizations(ctx context.Context, cfg *config.Config, bot *chatbot.Chatbot) {
	v := viz.New(cfg.VizOutputDir, cfg.VizFormats)
	for format, path := range v.Generate(ctx, bot.Mermaid()) {
		if path == "" {
			fmt.Printf("Could not save %s visualization\n", format)
			continue
		}
		fmt.Printf("Graph visualization saved: %s\n", path)
	}
}

func printBanner(cfg *config.Config, bot *chatbot.Chatbot) {
	fmt.Println("==================================================")
	fmt.Printf("%s - powered by %s\n", cfg.AssistantName, cfg.ModelName)
	if cfg.SearchEnabled() {
		fmt.Println("Web search: enabled")
	} else {
		fmt.Println("Web search: disabled (set TAVILY_API_KEY to enable)")
	}
	if bot.Monitor().Enabled() {
		fmt.Printf("Tracing: %s\n", bot.Monitor().ProjectURL())
	} else {
		fmt.Println("Tracing: disabled (set LANGSMITH_API_KEY to enable)")
	}
	fmt.Println("Type 'quit', 'exit' or 'q' to leave.")
	fmt.Println("==================================================")
}

func runLoop(ctx context.Context, cfg *config.Config, bot *chatbot.Chatbot) {
	sessionID := bot.StartSession(ctx, "")
	logx.Info().Str("session_id", sessionID).Msg("chat session started")

	scanner := bufio.NewScanner(os.Stdin)
	turns := 0

	for {
		if cfg.MaxConversationTurns > 0 && turns >= cfg.MaxConversationTurns {
			fmt.Printf("\nReached the maximum of %d turns for this session. Goodbye!\n", cfg.MaxConversationTurns)
			return
		}

		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "Input error: %v\n", err)
			}
			fmt.Println("\nGoodbye!")
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if exitWords[strings.ToLower(input)] {
			fmt.Println("Goodbye!")
			return
		}

		reply, err := bot.Chat(ctx, sessionID, input)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Sorry, something went wrong: %v\n", err)
			continue
		}

		turns++
		fmt.Printf("\n%s: %s\n", cfg.AssistantName, reply)
	}
}
