package probe

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/lookbook/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging initializes the logger writing to stdout and, when logFile is
// set, to that file too.
func SetupLogging(logFile string, verbose bool) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Lookbook Recommendation Probe
=============================

Replays every distinct garment of an outfit corpus against a running
recommender and checks each response:

  - at most k results, no repeated garments
  - every result comes from the opposite part
  - co-occurrence results precede fallback results
  - co-occurrence scores equal the corpus counts

Usage:
  go run ./cmd/probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -corpus string
        Corpus the service was started with (default "data/verified_photo_data.json")
  -k int
        Results requested per query (default 5)
  -limit int
        Max queries to send, 0 for all (default 0)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Also write logs to this file
  -verbose
        Log every violation
  -help
        Show this help message
`)
}
