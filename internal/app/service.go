// Package service wires the loaded corpus, the image index and the label
// oracle into the operations served by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/lookbook/internal/adapters/repository"
	"github.com/okian/lookbook/internal/domain/imagematch"
	"github.com/okian/lookbook/internal/domain/labelcache"
	"github.com/okian/lookbook/internal/domain/model"
	"github.com/okian/lookbook/internal/domain/recommend"
	"github.com/okian/lookbook/internal/domain/types"
	"github.com/okian/lookbook/pkg/logger"
	"github.com/okian/lookbook/pkg/metrics"
)

const (
	defaultK    = 5
	defaultMaxK = 50
)

// Labeler turns an image into attribute labels.
type Labeler interface {
	Analyze(ctx context.Context, image []byte, filename string) (types.Label, error)
}

// Recommender answers gender-scoped recommendation queries.
type Recommender interface {
	Recommend(ctx context.Context, item model.Item, gender string, k int) ([]model.Recommendation, error)
	Genders() []string
	Pairs(gender string) int
}

// Resolver looks up a photo for a set of attributes.
type Resolver interface {
	Resolve(gender, color, style, category string) (imagematch.Match, bool)
}

// Result is the tagged outcome of a recommendation request.
type Result struct {
	Outcome         types.Outcome
	Gender          string
	Label           types.Label
	Recommendations []model.Recommendation
}

// Service implements the API dependencies for the recommender.
type Service struct {
	mu sync.RWMutex

	// Core components
	recommender Recommender
	resolver    Resolver
	labeler     Labeler
	labels      labelcache.Cache
	indexRows   int

	// Configuration
	corpusPath     string
	imageIndexPath string
	imageBaseURL   string
	selector       imagematch.Selector
	fallbackFactor int
	defaultK       int
	maxK           int

	// State
	started  bool
	served   atomic.Int64
	outcomes map[types.Outcome]*atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCorpusPath sets the outfit pair corpus loaded by Start.
func WithCorpusPath(path string) Option {
	return func(s *Service) {
		s.corpusPath = path
	}
}

// WithImageIndexPath sets the image label index loaded by Start.
func WithImageIndexPath(path string) Option {
	return func(s *Service) {
		s.imageIndexPath = path
	}
}

// WithImageBaseURL sets the prefix joined onto resolved filenames.
func WithImageBaseURL(url string) Option {
	return func(s *Service) {
		s.imageBaseURL = url
	}
}

// WithSelector sets how a photo is picked among equally good matches.
func WithSelector(sel imagematch.Selector) Option {
	return func(s *Service) {
		if sel != nil {
			s.selector = sel
		}
	}
}

// WithFallbackFactor sets how many fallback candidates are requested per k.
func WithFallbackFactor(f int) Option {
	return func(s *Service) {
		if f > 0 {
			s.fallbackFactor = f
		}
	}
}

// WithRecommender injects a ready recommender; Start then skips loading the corpus.
func WithRecommender(r Recommender) Option {
	return func(s *Service) {
		if r != nil {
			s.recommender = r
		}
	}
}

// WithResolver injects a ready resolver; Start then skips loading the image index.
func WithResolver(r Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithLabeler sets the label oracle used for image requests.
func WithLabeler(l Labeler) Option {
	return func(s *Service) {
		if l != nil {
			s.labeler = l
		}
	}
}

// WithLabelCache remembers complete oracle labels by image content.
func WithLabelCache(c labelcache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.labels = c
		}
	}
}

// WithDefaultK sets k for requests that do not specify one.
func WithDefaultK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.defaultK = k
		}
	}
}

// WithMaxK caps k.
func WithMaxK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.maxK = k
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		fallbackFactor: 2,
		defaultK:       defaultK,
		maxK:           defaultMaxK,
		outcomes: map[types.Outcome]*atomic.Int64{
			types.OutcomeOK:            {},
			types.OutcomeNoLabel:       {},
			types.OutcomeUnknownGender: {},
		},
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.maxK < s.defaultK {
		s.maxK = s.defaultK
	}

	return s
}

// Start loads the image index and the corpus and builds the per-gender
// models. Any load failure is returned and leaves the service not ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting recommender service...")

	if s.resolver == nil {
		store := repository.NewImageIndexStore(s.imageIndexPath, repository.WithLogger(s.logger))
		index, err := store.Get(ctx)
		if err != nil {
			return err
		}
		opts := []imagematch.Option{imagematch.WithObserver(func(t imagematch.Tier) {
			metrics.RecordImageResolution(string(t))
		})}
		if s.selector != nil {
			opts = append(opts, imagematch.WithSelector(s.selector))
		}
		s.resolver = imagematch.NewResolver(index, s.imageBaseURL, opts...)
	}
	if r, ok := s.resolver.(interface{ Index() *imagematch.Index }); ok {
		s.indexRows = r.Index().Len()
	}

	if s.recommender == nil {
		start := time.Now()
		pairs, err := repository.LoadCorpus(ctx, s.corpusPath)
		if err != nil {
			return err
		}
		gopts := []recommend.Option{
			recommend.WithLogger(s.logger),
			recommend.WithHybridOptions(recommend.WithFallbackFactor(s.fallbackFactor)),
		}
		if r, ok := s.resolver.(recommend.ImageResolver); ok {
			gopts = append(gopts, recommend.WithResolver(r))
		}
		s.recommender = recommend.NewGendered(ctx, pairs, gopts...)
		s.logger.Info(ctx, "outfit corpus loaded",
			logger.String("path", s.corpusPath),
			logger.Int("pairs", len(pairs)),
			logger.Any("duration", time.Since(start)),
		)
	}

	genders := s.recommender.Genders()
	for _, g := range genders {
		metrics.UpdateCorpusPairs(g, s.recommender.Pairs(g))
	}
	metrics.UpdateModelGenders(len(genders))

	s.started = true
	s.logger.Info(ctx, "recommender service started",
		logger.Any("genders", genders),
		logger.Int("defaultK", s.defaultK),
		logger.Int("maxK", s.maxK),
	)
	return nil
}

// Stop marks the service as not ready.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "recommender service stopped")
}

// Ready reports whether Start completed.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// clampK maps a requested k onto [1, maxK], using defaultK when unset.
func (s *Service) clampK(k int) int {
	if k <= 0 {
		return s.defaultK
	}
	if k > s.maxK {
		return s.maxK
	}
	return k
}

// RecommendImage labels image with the oracle and recommends partners for
// it. A failed or incomplete label yields OutcomeNoLabel with whatever the
// oracle returned; the recommender is never called with partial data.
func (s *Service) RecommendImage(ctx context.Context, image []byte, filename, gender string, k int) (Result, error) {
	if !s.Ready() {
		return Result{}, ErrNotReady
	}
	if s.labeler == nil {
		return Result{}, ErrNoLabeler
	}

	label, err := s.label(ctx, image, filename)
	if err != nil {
		s.logger.Warn(ctx, "labeling failed", logger.String("filename", filename), logger.Error(err))
		return s.finish(ctx, Result{Outcome: types.OutcomeNoLabel, Gender: gender, Label: label}), nil
	}
	return s.RecommendLabel(ctx, label, gender, k)
}

// label asks the oracle unless the same image was labelled before. Only
// complete labels are cached.
func (s *Service) label(ctx context.Context, image []byte, filename string) (types.Label, error) {
	if s.labels != nil {
		cached, ok := s.labels.Get(ctx, image)
		metrics.RecordLabelCache(ok)
		if ok {
			return cached, nil
		}
	}
	label, err := s.labeler.Analyze(ctx, image, filename)
	if err == nil && s.labels != nil && label.Complete() {
		s.labels.Put(ctx, image, label)
	}
	return label, err
}

// RecommendLabel recommends partners for an already labelled garment.
func (s *Service) RecommendLabel(ctx context.Context, label types.Label, gender string, k int) (Result, error) {
	if !s.Ready() {
		return Result{}, ErrNotReady
	}

	res := Result{Gender: gender, Label: label}
	if !label.Complete() {
		res.Outcome = types.OutcomeNoLabel
		return s.finish(ctx, res), nil
	}

	start := time.Now()
	recs, err := s.recommender.Recommend(ctx, label.Item(), gender, s.clampK(k))
	metrics.RecordRecommendLatency(float64(time.Since(start).Microseconds()) / 1000)
	switch {
	case errors.Is(err, recommend.ErrUnknownGender):
		res.Outcome = types.OutcomeUnknownGender
		return s.finish(ctx, res), nil
	case err != nil:
		return Result{}, fmt.Errorf("recommend: %w", err)
	}

	res.Outcome = types.OutcomeOK
	res.Recommendations = recs
	return s.finish(ctx, res), nil
}

func (s *Service) finish(ctx context.Context, res Result) Result {
	if res.Recommendations == nil {
		res.Recommendations = []model.Recommendation{}
	}
	s.served.Add(1)
	s.outcomes[res.Outcome].Add(1)

	gender := model.NormalizeGender(res.Gender)
	metrics.RecordRecommendation(gender, string(res.Outcome))
	bySource := make(map[model.ScoreSource]int, 2)
	for _, r := range res.Recommendations {
		bySource[r.ScoreSource]++
	}
	for src, n := range bySource {
		metrics.RecordRecommendationResults(string(src), n)
	}
	if bySource[model.SourceNaiveBayes] > 0 {
		metrics.RecordFallbackTopUp()
	}

	s.logger.Debug(ctx, "recommendation served",
		logger.String("gender", gender),
		logger.String("outcome", string(res.Outcome)),
		logger.Int("results", len(res.Recommendations)),
	)
	return res
}

// ResolveImage returns a photo for the given attributes.
func (s *Service) ResolveImage(gender, color, style, category string) (imagematch.Match, bool, error) {
	s.mu.RLock()
	resolver := s.resolver
	s.mu.RUnlock()
	if resolver == nil {
		return imagematch.Match{}, false, ErrNoResolver
	}
	m, ok := resolver.Resolve(gender, color, style, category)
	return m, ok, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Ready:             s.started,
		Genders:           []string{},
		PairsByGender:     map[string]int{},
		ImageIndexRows:    s.indexRows,
		RequestsServed:    s.served.Load(),
		RequestsByOutcome: make(map[string]int64, len(s.outcomes)),
	}
	for o, n := range s.outcomes {
		stats.RequestsByOutcome[string(o)] = n.Load()
	}
	if s.recommender != nil {
		stats.Genders = s.recommender.Genders()
		for _, g := range stats.Genders {
			stats.PairsByGender[g] = s.recommender.Pairs(g)
		}
	}
	return stats
}
