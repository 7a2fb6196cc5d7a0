package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/lookbook/internal/domain/model"
	"github.com/okian/lookbook/internal/domain/types"
	"github.com/okian/lookbook/pkg/logger"
)

// ErrViolations is returned by Run when any response broke a rule.
var ErrViolations = errors.New("recommendation rules violated")

// Run executes a full probe: readiness check, corpus replay, verification.
// It returns the run statistics even when it fails.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting recommendation probe",
		logger.String("baseURL", config.BaseURL),
		logger.String("corpus", config.CorpusPath),
		logger.Int("k", config.K),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: the service must be up with a loaded model
	if err := checkServiceReady(ctx, client); err != nil {
		return stats, fmt.Errorf("service readiness check failed: %w", err)
	}

	// Step 2: derive queries and truth from the corpus
	queries, exp, err := loadCorpus(ctx, config, stats)
	if err != nil {
		return stats, fmt.Errorf("corpus load failed: %w", err)
	}

	// Step 3: replay concurrently and verify each response
	replay(ctx, config, client, queries, exp, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Violations > 0 {
		return stats, fmt.Errorf("%w: %d", ErrViolations, stats.Violations)
	}
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%d of %d requests failed", stats.Failed, stats.Sent)
	}
	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

// checkServiceReady verifies the service answers and has loaded a model.
func checkServiceReady(ctx context.Context, client *HTTPClient) error {
	status, body, err := client.Get(ctx, "/stats")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("stats returned status %d", status)
	}
	var s types.Stats
	if err := json.Unmarshal(body, &s); err != nil {
		return fmt.Errorf("decode stats: %w", err)
	}
	if !s.Ready {
		return errors.New("model is not loaded")
	}
	logger.Get().Info(ctx, "service is ready", logger.Any("genders", s.Genders))
	return nil
}

func replay(ctx context.Context, config *Config, client *HTTPClient, queries []Query, exp *Expectations, stats *Stats) {
	var (
		sent, succeeded, failed atomic.Int64
		cooc, nb, withImage     atomic.Int64
		mu                      sync.Mutex
		violations              []Violation
	)

	workers := max(config.Workers, 1)
	queryChan := make(chan Query, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q := range queryChan {
				if ctx.Err() != nil {
					return
				}
				sent.Add(1)
				resp, err := client.recommend(ctx, q, config.K)
				if err != nil {
					failed.Add(1)
					logger.Get().Warn(ctx, "probe request failed",
						logger.String("gender", q.Gender),
						logger.Any("item", q.Item),
						logger.Error(err))
					continue
				}
				succeeded.Add(1)
				for _, r := range resp.Recommendations {
					switch r.ScoreSource {
					case model.SourceCooccurrence:
						cooc.Add(1)
					case model.SourceNaiveBayes:
						nb.Add(1)
					}
					if r.ImageURL != nil {
						withImage.Add(1)
					}
				}

				found := Verify(q, config.K, resp, exp)
				if len(found) == 0 {
					continue
				}
				if config.Verbose {
					for _, v := range found {
						logger.Get().Warn(ctx, "rule violated",
							logger.String("rule", v.Rule),
							logger.String("detail", v.Detail),
							logger.String("gender", q.Gender),
							logger.Any("item", q.Item))
					}
				}
				mu.Lock()
				violations = append(violations, found...)
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(queryChan)
		for _, q := range queries {
			select {
			case <-ctx.Done():
				return
			case queryChan <- q:
			}
		}
	}()

	wg.Wait()

	stats.Sent = int(sent.Load())
	stats.Succeeded = int(succeeded.Load())
	stats.Failed = int(failed.Load())
	stats.Cooccurrence = int(cooc.Load())
	stats.NaiveBayes = int(nb.Load())
	stats.WithImage = int(withImage.Load())
	stats.ViolationsList = violations
	stats.Violations = len(violations)
}

// displayFinalStats logs the run summary.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, queriesPerSecond float64
	if stats.Sent > 0 {
		successRate = float64(stats.Succeeded) / float64(stats.Sent) * percentageMultiplier
	}
	if stats.Duration > 0 {
		queriesPerSecond = float64(stats.Sent) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("queries", stats.Queries),
		logger.Int("sent", stats.Sent),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("failed", stats.Failed),
		logger.Int("violations", stats.Violations),
		logger.Int("cooccurrenceResults", stats.Cooccurrence),
		logger.Int("fallbackResults", stats.NaiveBayes),
		logger.Int("resultsWithImage", stats.WithImage),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("queriesPerSecond", queriesPerSecond))
}
