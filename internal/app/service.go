// Package service implements the leaderboard store used by the HTTP API:
// validation, the load-mutate-save cycle and the ranking it serves.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/okian/typerank/internal/adapters/repository"
	"github.com/okian/typerank/internal/domain/board"
	"github.com/okian/typerank/internal/domain/types"
	"github.com/okian/typerank/pkg/logger"
	"github.com/okian/typerank/pkg/metrics"
)

// untieredLabel names the single bucket of an untiered board in metrics and stats.
const untieredLabel = "all"

// DefaultTiers are the difficulty tiers used when none are configured.
var DefaultTiers = []string{"easy", "medium", "hard"}

// Service owns the leaderboard document. Every operation reloads it from the
// store; mutations rewrite it whole under the write lock.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	layout  board.Layout
	backend string

	authEnabled bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the document store and the backend name reported in stats.
func WithStore(store repository.Store, backend string) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.backend = backend
		}
	}
}

// WithTiers sets the recognized difficulty tiers. Passing none disables tiering.
func WithTiers(tiers ...string) Option {
	return func(s *Service) {
		s.layout = board.NewLayout(tiers...)
	}
}

// WithAuthEnabled records whether the admin surface is protected; reported in stats only.
func WithAuthEnabled(enabled bool) Option {
	return func(s *Service) {
		s.authEnabled = enabled
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Without options it keeps the board in memory
// with the default tiers.
func New(opts ...Option) *Service {
	s := &Service{
		store:       repository.NewMemoryStore(),
		backend:     repository.BackendMemory,
		layout:      board.NewLayout(DefaultTiers...),
		authEnabled: true,
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the underlying store when it holds resources.
func (s *Service) Close() error {
	if c, ok := s.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Tiered reports whether scores are partitioned by difficulty tier.
func (s *Service) Tiered() bool { return s.layout.Tiered() }

// Tiers returns the recognized tiers in configured order; empty when untiered.
func (s *Service) Tiers() []string { return s.layout.Tiers() }

// Load returns the current document. A missing document yields an empty one
// and nothing is written.
func (s *Service) Load(ctx context.Context) (*board.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx)
}

// SubmitScore records score for name when the player has none yet or the new
// score is strictly higher. It reports whether the document changed.
func (s *Service) SubmitScore(ctx context.Context, tier, name string, score float64) (bool, error) {
	label := s.label(tier)
	if err := s.validate(tier, name, score); err != nil {
		metrics.RecordScoreSubmission(label, "invalid")
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		metrics.RecordScoreSubmission(label, "error")
		return false, err
	}

	scores := doc.Scores(tier)
	if current, ok := scores[name]; ok && score <= current {
		metrics.RecordScoreSubmission(label, "ignored")
		return false, nil
	}
	scores[name] = score

	if err := s.save(ctx, doc); err != nil {
		metrics.RecordScoreSubmission(label, "error")
		return false, err
	}
	metrics.RecordScoreSubmission(label, "recorded")
	s.logger.Debug(ctx, "score recorded",
		logger.String("tier", label),
		logger.String("name", name),
		logger.Float64("score", score),
	)
	return true, nil
}

// Ranking returns tier's entries, highest score first and ties by name.
func (s *Service) Ranking(ctx context.Context, tier string) ([]types.Entry, error) {
	if err := s.validateTier(tier); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	metrics.RecordRankingQuery(s.label(tier))
	return doc.Ranking(tier), nil
}

// SetScore overwrites name's score unconditionally.
func (s *Service) SetScore(ctx context.Context, tier, name string, score float64) error {
	if err := s.validate(tier, name, score); err != nil {
		metrics.RecordAdminOperation("set", "invalid")
		return err
	}
	return s.mutate(ctx, "set", func(doc *board.Document) error {
		doc.Scores(tier)[name] = score
		s.logger.Info(ctx, "score overwritten",
			logger.String("tier", s.label(tier)),
			logger.String("name", name),
			logger.Float64("score", score),
		)
		return nil
	})
}

// DeletePlayer removes name from tier. A player holding a score of zero is
// still present and is removed.
func (s *Service) DeletePlayer(ctx context.Context, tier, name string) error {
	if err := s.validateTier(tier); err != nil {
		metrics.RecordAdminOperation("delete", "invalid")
		return err
	}
	if err := validateName(name); err != nil {
		metrics.RecordAdminOperation("delete", "invalid")
		return err
	}
	return s.mutate(ctx, "delete", func(doc *board.Document) error {
		scores := doc.Scores(tier)
		if _, ok := scores[name]; !ok {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		delete(scores, name)
		s.logger.Info(ctx, "player deleted",
			logger.String("tier", s.label(tier)),
			logger.String("name", name),
		)
		return nil
	})
}

// ResetTier clears one tier and leaves the others untouched. On an untiered
// board it clears everything.
func (s *Service) ResetTier(ctx context.Context, tier string) error {
	if err := s.validateTier(tier); err != nil {
		metrics.RecordAdminOperation("reset", "invalid")
		return err
	}
	return s.mutate(ctx, "reset", func(doc *board.Document) error {
		doc.Reset(tier)
		s.logger.Info(ctx, "tier reset", logger.String("tier", s.label(tier)))
		return nil
	})
}

// WipeAll replaces the document with a fresh empty one. Unknown tier keys
// kept from older documents are dropped here.
func (s *Service) WipeAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(ctx, board.Empty(s.layout)); err != nil {
		metrics.RecordAdminOperation("wipe", "error")
		return err
	}
	metrics.RecordAdminOperation("wipe", "ok")
	s.logger.Warn(ctx, "leaderboard wiped")
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) (map[string]interface{}, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	players := make(map[string]int)
	total := 0
	for _, tier := range s.statTiers() {
		n := doc.Players(tier)
		players[s.label(tier)] = n
		total += n
		metrics.UpdatePlayers(s.label(tier), n)
	}

	return map[string]interface{}{
		"tiered":       s.Tiered(),
		"tiers":        s.Tiers(),
		"authEnabled":  s.authEnabled,
		"backend":      s.backend,
		"players":      players,
		"totalPlayers": total,
	}, nil
}

// mutate runs fn against a freshly loaded document and saves it when fn
// succeeds. Nothing is written when fn fails.
func (s *Service) mutate(ctx context.Context, op string, fn func(*board.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		metrics.RecordAdminOperation(op, "error")
		return err
	}
	if err := fn(doc); err != nil {
		outcome := "error"
		if errors.Is(err, ErrNotFound) {
			outcome = "not_found"
		}
		metrics.RecordAdminOperation(op, outcome)
		return err
	}
	if err := s.save(ctx, doc); err != nil {
		metrics.RecordAdminOperation(op, "error")
		return err
	}
	metrics.RecordAdminOperation(op, "ok")
	return nil
}

func (s *Service) load(ctx context.Context) (*board.Document, error) {
	data, err := s.store.Load(ctx)
	if errors.Is(err, repository.ErrNoDocument) {
		return board.Empty(s.layout), nil
	}
	if err != nil {
		s.logger.Error(ctx, "failed to load leaderboard", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	doc, err := board.Decode(s.layout, data)
	if err != nil {
		s.logger.Error(ctx, "failed to parse leaderboard", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return doc, nil
}

func (s *Service) save(ctx context.Context, doc *board.Document) error {
	data, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("encode leaderboard: %w", err)
	}
	if err := s.store.Save(ctx, data); err != nil {
		s.logger.Error(ctx, "failed to save leaderboard", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	for _, tier := range s.statTiers() {
		metrics.UpdatePlayers(s.label(tier), doc.Players(tier))
	}
	return nil
}

func (s *Service) validate(tier, name string, score float64) error {
	if err := s.validateTier(tier); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	return validateScore(score)
}

func (s *Service) validateTier(tier string) error {
	if !s.layout.Recognized(tier) {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, tier)
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return nil
}

func validateScore(score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return fmt.Errorf("%w: score must be a finite number", ErrInvalidInput)
	}
	if score < 0 {
		return fmt.Errorf("%w: score must not be negative", ErrInvalidInput)
	}
	return nil
}

// statTiers lists the buckets reported in stats and metrics.
func (s *Service) statTiers() []string {
	if !s.Tiered() {
		return []string{""}
	}
	return s.layout.Tiers()
}

func (s *Service) label(tier string) string {
	if !s.Tiered() {
		return untieredLabel
	}
	if !s.layout.Recognized(tier) {
		return "unknown"
	}
	return tier
}
