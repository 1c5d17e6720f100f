package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mikeboe/deep-research/pkg/config"
	"github.com/mikeboe/deep-research/pkg/research"
)

var topic string

func main() {
	// Setup structured logging
	handler := slog.NewTextHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(handler))

	// Load .env file
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, as long as env vars are set
	}

	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "deep-research",
		Short: "A terminal-based research agent",
		Long:  `deep-research plans web searches for a topic, summarizes the sources it finds, fills knowledge gaps with follow-up searches, and writes the result into a markdown report.`,
		Run: func(cmd *cobra.Command, args []string) {

			if !cmd.Flags().Changed("topic") {
				// Interactive Mode
				reader := bufio.NewReader(os.Stdin)

				fmt.Print("Enter research topic: ")
				input, _ := reader.ReadString('\n')
				topic = strings.TrimSpace(input)
			}

			if strings.TrimSpace(topic) == "" {
				slog.Error("Topic cannot be empty")
				os.Exit(1)
			}

			slog.Info("Starting research", "topic", topic)

			graph, err := research.NewGraph(cfg)
			if err != nil {
				slog.Error("Failed to initialize research pipeline", "error", err)
				os.Exit(1)
			}

			state, err := graph.Run(context.Background(), topic, func(step research.Step, progress int, details string) {
				slog.Info(details, "step", string(step), "progress", progress)
			})
			if err != nil {
				slog.Error("Research failed", "error", err)
				os.Exit(1)
			}

			path := fmt.Sprintf("report_%s.md", time.Now().Format("20060102_150405"))
			if err := os.WriteFile(path, []byte(state.FinalDocument), 0o644); err != nil {
				slog.Error("Failed to write report", "path", path, "error", err)
				os.Exit(1)
			}

			slog.Info("Research complete", "report", path, "sources", len(state.SearchResults))
		},
	}

	rootCmd.Flags().StringVarP(&topic, "topic", "t", "", "The research topic")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
