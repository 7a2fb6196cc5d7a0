package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/lookbook/internal/probe"
)

// Default configuration constants.
const (
	defaultK           = 5
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultProbeBudget = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		corpus  = flag.String("corpus", "data/verified_photo_data.json", "Corpus the service was started with")
		k       = flag.Int("k", defaultK, "Results requested per query")
		limit   = flag.Int("limit", 0, "Max queries to send, 0 for all")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile = flag.String("log", "", "Also write logs to this file")
		verbose = flag.Bool("verbose", false, "Log every violation")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	if err := probe.SetupLogging(*logFile, *verbose); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeBudget)
	defer cancel()

	_, err := probe.Run(ctx, &probe.Config{
		BaseURL:    *baseURL,
		CorpusPath: *corpus,
		K:          *k,
		Limit:      *limit,
		Workers:    *workers,
		Timeout:    *timeout,
		Verbose:    *verbose,
	})
	if err != nil {
		_, _ = os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
