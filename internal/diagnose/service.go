package diagnose

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/folio/internal/diagnose"

// ID prefixes for generated identifiers.
const (
	PatternIDPrefix = "pattern_"
	LogIDPrefix     = "diag_"
)

// PatternStore persists curated patterns.
//
// ListPatterns must return patterns in a stable natural order; the matcher
// breaks ties by that order.
type PatternStore interface {
	ListPatterns(ctx context.Context) ([]IssuePattern, error)
	GetPattern(ctx context.Context, id string) (*IssuePattern, error)
	CreatePattern(ctx context.Context, p *IssuePattern) error
	UpdatePattern(ctx context.Context, p *IssuePattern) error
	DeletePattern(ctx context.Context, id string) error
	CountPatterns(ctx context.Context) (int, error)
}

// LogStore persists diagnostic logs. Logs are append-only.
type LogStore interface {
	InsertLog(ctx context.Context, l *DiagnosticLog) error
	GetLog(ctx context.Context, id string) (*DiagnosticLog, error)
	ListLogs(ctx context.Context, filter LogFilter) ([]DiagnosticLog, error)
	CountLogs(ctx context.Context) (total, matched int, err error)
}

// Sanitizer cleans visitor text. StripUnsafe output is stored; StripMarkup
// output is only matched against and keeps credentials the stored form redacts.
type Sanitizer interface {
	StripUnsafe(text string) string
	StripMarkup(text string) string
}

// Service provides diagnosis and knowledge-base administration.
type Service interface {
	// Diagnose matches a request and records exactly one DiagnosticLog.
	Diagnose(ctx context.Context, req Request) (*Result, error)

	// Stats returns aggregate diagnostic counters.
	Stats(ctx context.Context) (*Stats, error)

	CreatePattern(ctx context.Context, p IssuePattern) (*IssuePattern, error)
	UpdatePattern(ctx context.Context, id string, p IssuePattern) (*IssuePattern, error)
	DeletePattern(ctx context.Context, id string) error
	GetPattern(ctx context.Context, id string) (*IssuePattern, error)
	ListPatterns(ctx context.Context) ([]IssuePattern, error)

	// SeedPatterns inserts the given patterns whose ids are not already present
	// and returns how many were inserted.
	SeedPatterns(ctx context.Context, patterns []IssuePattern) (int, error)

	ListLogs(ctx context.Context, filter LogFilter) ([]DiagnosticLog, error)
	GetLog(ctx context.Context, id string) (*DiagnosticLog, error)

	// ConvertLog creates a curated pattern from an unmatched log.
	ConvertLog(ctx context.Context, logID string, p IssuePattern) (*IssuePattern, error)
}

// Option configures the service.
type Option func(*service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithIDGenerator overrides uuid generation for pattern and log ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *service) { s.newID = gen }
}

type service struct {
	patterns  PatternStore
	logs      LogStore
	sanitizer Sanitizer
	matcher   *Matcher
	logger    *zap.Logger

	now   func() time.Time
	newID func() string

	tracer       trace.Tracer
	meter        metric.Meter
	diagCounter  metric.Int64Counter
	matchCounter metric.Int64Counter
}

// NewService creates a diagnose service.
func NewService(patterns PatternStore, logs LogStore, sanitizer Sanitizer, matcher *Matcher, logger *zap.Logger, opts ...Option) (Service, error) {
	if patterns == nil {
		return nil, errors.New("pattern store is required")
	}
	if logs == nil {
		return nil, errors.New("log store is required")
	}
	if sanitizer == nil {
		return nil, errors.New("sanitizer is required")
	}
	if matcher == nil {
		var err error
		if matcher, err = NewMatcher(nil); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &service{
		patterns:  patterns,
		logs:      logs,
		sanitizer: sanitizer,
		matcher:   matcher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
		tracer:    otel.Tracer(instrumentationName),
		meter:     otel.Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.initMetrics()

	return s, nil
}

func (s *service) initMetrics() {
	var err error

	s.diagCounter, err = s.meter.Int64Counter(
		"folio.diagnose.requests_total",
		metric.WithDescription("Total number of diagnose requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		s.logger.Warn("failed to create diagnose counter", zap.Error(err))
	}

	s.matchCounter, err = s.meter.Int64Counter(
		"folio.diagnose.curated_matches_total",
		metric.WithDescription("Total number of diagnoses answered by a curated pattern"),
		metric.WithUnit("{match}"),
	)
	if err != nil {
		s.logger.Warn("failed to create match counter", zap.Error(err))
	}
}

// Diagnose matches the request against the ranked rule list.
func (s *service) Diagnose(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "diagnose.diagnose")
	defer span.End()

	outcome := OutcomeError
	defer func() {
		DiagnoseTotal.WithLabelValues(outcome).Inc()
		DiagnoseDuration.Observe(time.Since(start).Seconds())
		if s.diagCounter != nil {
			s.diagCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		}
	}()

	if strings.TrimSpace(req.Description) == "" {
		outcome = OutcomeInvalid
		span.SetStatus(codes.Error, "validation failed")
		return nil, &ValidationError{Message: MsgDescriptionRequired}
	}

	clean := Request{
		Description:  s.sanitizer.StripUnsafe(req.Description),
		TechStack:    s.sanitizer.StripUnsafe(req.TechStack),
		ErrorMessage: s.sanitizer.StripUnsafe(req.ErrorMessage),
		Environment:  s.sanitizer.StripUnsafe(req.Environment),
	}
	if clean.Description == "" {
		outcome = OutcomeInvalid
		span.SetStatus(codes.Error, "validation failed")
		return nil, &ValidationError{Message: MsgDescriptionRequired}
	}

	patterns, err := s.patterns.ListPatterns(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list patterns failed")
		return nil, persistErr("list patterns", err)
	}
	curated := make([]Rule, len(patterns))
	for i := range patterns {
		curated[i] = RuleFromPattern(patterns[i])
	}

	match := s.matcher.Match(Normalize(s.sanitizer.StripMarkup(req.Description)), curated)
	result := match.Result()

	entry := &DiagnosticLog{
		ID:           LogIDPrefix + s.newID(),
		Description:  clean.Description,
		TechStack:    clean.TechStack,
		ErrorMessage: clean.ErrorMessage,
		Environment:  clean.Environment,
		CreatedAt:    s.now(),
	}
	if match.Rule.Tier == TierCurated {
		id := match.Rule.PatternID
		entry.MatchedPatternID = &id
	}
	if err := s.logs.InsertLog(ctx, entry); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert log failed")
		return nil, persistErr("insert diagnostic log", err)
	}
	result.ID = entry.ID

	outcome = result.Outcome()
	span.SetAttributes(
		attribute.String("diagnose.outcome", outcome),
		attribute.String("diagnose.rule", match.Rule.Name),
		attribute.Int("diagnose.score", match.Score),
		attribute.Int("diagnose.patterns", len(patterns)),
	)
	if result.IsMatch && s.matchCounter != nil {
		s.matchCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("pattern_id", match.Rule.PatternID)))
	}

	s.logger.Debug("diagnosis served",
		zap.String("log_id", entry.ID),
		zap.String("outcome", outcome),
		zap.String("rule", match.Rule.Name),
		zap.Int("score", match.Score),
	)

	return result, nil
}

// Stats returns aggregate diagnostic counters.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	ctx, span := s.tracer.Start(ctx, "diagnose.stats")
	defer span.End()

	total, matched, err := s.logs.CountLogs(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, persistErr("count logs", err)
	}
	patterns, err := s.patterns.CountPatterns(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, persistErr("count patterns", err)
	}
	return &Stats{DiagRuns: total, PatternsMatched: matched, Patterns: patterns}, nil
}

// CreatePattern validates and stores a new pattern. An empty ID is generated.
func (s *service) CreatePattern(ctx context.Context, p IssuePattern) (*IssuePattern, error) {
	ctx, span := s.tracer.Start(ctx, "diagnose.create_pattern")
	defer span.End()

	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = PatternIDPrefix + s.newID()
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now

	if err := s.patterns.CreatePattern(ctx, &p); err != nil {
		span.RecordError(err)
		return nil, persistErr("create pattern", err)
	}
	PatternMutations.WithLabelValues("create").Inc()
	s.logger.Info("pattern created", zap.String("pattern_id", p.ID), zap.Strings("keywords", p.Keywords))
	return &p, nil
}

// UpdatePattern replaces the content of an existing pattern.
func (s *service) UpdatePattern(ctx context.Context, id string, p IssuePattern) (*IssuePattern, error) {
	ctx, span := s.tracer.Start(ctx, "diagnose.update_pattern")
	defer span.End()
	span.SetAttributes(attribute.String("pattern_id", id))

	existing, err := s.patterns.GetPattern(ctx, id)
	if err != nil {
		return nil, persistErr("get pattern", err)
	}

	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now()

	if err := s.patterns.UpdatePattern(ctx, &p); err != nil {
		span.RecordError(err)
		return nil, persistErr("update pattern", err)
	}
	PatternMutations.WithLabelValues("update").Inc()
	s.logger.Info("pattern updated", zap.String("pattern_id", p.ID))
	return &p, nil
}

// DeletePattern removes a pattern. Logs that reference it are kept.
func (s *service) DeletePattern(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "diagnose.delete_pattern")
	defer span.End()
	span.SetAttributes(attribute.String("pattern_id", id))

	if err := s.patterns.DeletePattern(ctx, id); err != nil {
		return persistErr("delete pattern", err)
	}
	PatternMutations.WithLabelValues("delete").Inc()
	s.logger.Info("pattern deleted", zap.String("pattern_id", id))
	return nil
}

func (s *service) GetPattern(ctx context.Context, id string) (*IssuePattern, error) {
	p, err := s.patterns.GetPattern(ctx, id)
	if err != nil {
		return nil, persistErr("get pattern", err)
	}
	return p, nil
}

func (s *service) ListPatterns(ctx context.Context) ([]IssuePattern, error) {
	patterns, err := s.patterns.ListPatterns(ctx)
	if err != nil {
		return nil, persistErr("list patterns", err)
	}
	return patterns, nil
}

// SeedPatterns inserts patterns that are not yet stored. Existing ids are left untouched.
func (s *service) SeedPatterns(ctx context.Context, patterns []IssuePattern) (int, error) {
	ctx, span := s.tracer.Start(ctx, "diagnose.seed_patterns")
	defer span.End()

	inserted := 0
	for _, p := range patterns {
		if p.ID != "" {
			_, err := s.patterns.GetPattern(ctx, p.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, ErrNotFound) {
				return inserted, persistErr("get pattern", err)
			}
		}
		if _, err := s.CreatePattern(ctx, p); err != nil {
			return inserted, err
		}
		inserted++
	}
	span.SetAttributes(attribute.Int("seed.inserted", inserted))
	return inserted, nil
}

// ListLogs returns logs newest first.
func (s *service) ListLogs(ctx context.Context, filter LogFilter) ([]DiagnosticLog, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultLogLimit
	case filter.Limit > MaxLogLimit:
		filter.Limit = MaxLogLimit
	}
	logs, err := s.logs.ListLogs(ctx, filter)
	if err != nil {
		return nil, persistErr("list logs", err)
	}
	return logs, nil
}

func (s *service) GetLog(ctx context.Context, id string) (*DiagnosticLog, error) {
	l, err := s.logs.GetLog(ctx, id)
	if err != nil {
		return nil, persistErr("get log", err)
	}
	return l, nil
}

// ConvertLog turns an unanswered question into a curated pattern. The log itself
// is not modified.
func (s *service) ConvertLog(ctx context.Context, logID string, p IssuePattern) (*IssuePattern, error) {
	ctx, span := s.tracer.Start(ctx, "diagnose.convert_log")
	defer span.End()
	span.SetAttributes(attribute.String("log_id", logID))

	entry, err := s.logs.GetLog(ctx, logID)
	if err != nil {
		return nil, persistErr("get log", err)
	}
	if entry.Matched() {
		return nil, ErrAlreadyMatched
	}

	p.ID = ""
	created, err := s.CreatePattern(ctx, p)
	if err != nil {
		return nil, err
	}
	PatternMutations.WithLabelValues("convert").Inc()
	s.logger.Info("diagnostic log converted",
		zap.String("log_id", logID),
		zap.String("pattern_id", created.ID),
	)
	return created, nil
}
