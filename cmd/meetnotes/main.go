// Meetnotes walks through summarizing a meeting transcript and emailing the
// result, against a running meetnotes server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hal9000y/meetnotes/internal/apiclient"
	"github.com/hal9000y/meetnotes/internal/console"
	"github.com/hal9000y/meetnotes/internal/transcript"
	"github.com/hal9000y/meetnotes/internal/workflow"
)

func main() {
	defaultURL := os.Getenv("MEETNOTES_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}

	apiURL := flag.String("api-url", defaultURL, "Base URL of the meetnotes server")
	transcriptFile := flag.String("transcript", "", "Transcript file to load on start")

	flag.Parse()

	log.SetOutput(os.Stderr)

	client := apiclient.NewClient(*apiURL, nil)
	ctrl := workflow.NewController(client, client)

	if *transcriptFile != "" {
		text, err := transcript.Load(*transcriptFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("transcript.Load failed: %w", err))
			os.Exit(1)
		}
		ctrl.SetTranscript(text)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := console.New(ctrl, os.Stdout).Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("console.Run failed: %w", err))
		os.Exit(1)
	}
}
