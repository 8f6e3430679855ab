package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"faq-bot/internal/categorizer"
	"faq-bot/internal/domain"
	"faq-bot/internal/nlp"
)

type AnswerStore interface {
	Examples() []domain.TrainingExample
	Answer(category string) (string, bool)
}

type Analyzer interface {
	Sentences(ctx context.Context, text string) ([]string, error)
	Analyze(ctx context.Context, sentence string) (nlp.Analysis, error)
}

type Classifier interface {
	Classify(lemmas []string) (domain.ClassificationResult, error)
}

// TrainFunc builds a Classifier from the training corpus.
type TrainFunc func(examples []domain.TrainingExample) (Classifier, error)

type ExchangeRecorder interface {
	RecordExchange(ctx context.Context, ex domain.Exchange) error
}

// MaxentTrainer trains the maximum entropy categorizer with params.
func MaxentTrainer(params categorizer.TrainingParams) TrainFunc {
	return func(examples []domain.TrainingExample) (Classifier, error) {
		m, err := categorizer.Train(examples, params)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

type Option func(*AnswerService)

func WithTerminalCategory(category string) Option {
	return func(s *AnswerService) {
		if c := strings.TrimSpace(category); c != "" {
			s.terminal = c
		}
	}
}

func WithFallbackAnswer(answer string) Option {
	return func(s *AnswerService) { s.fallback = answer }
}

// WithRecorder enables the exchange transcript. A nil recorder disables it.
func WithRecorder(r ExchangeRecorder) Option {
	return func(s *AnswerService) { s.recorder = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *AnswerService) {
		if l != nil {
			s.logger = l
		}
	}
}

type AnswerService struct {
	store    AnswerStore
	analyzer Analyzer
	train    TrainFunc
	terminal string
	fallback string
	recorder ExchangeRecorder
	logger   *slog.Logger

	cacheMu sync.RWMutex
	model   Classifier
}

type AnswerInput struct {
	Question      string
	CorrelationID string
}

// SentenceResult is the analysis and classification of one input sentence.
type SentenceResult struct {
	Analysis nlp.Analysis
	Result   domain.ClassificationResult
}

type AnswerOutput struct {
	Response   domain.ChatResponse
	Sentences  []SentenceResult
	ExchangeID string
}

func NewAnswerService(store AnswerStore, analyzer Analyzer, train TrainFunc, opts ...Option) (*AnswerService, error) {
	if store == nil {
		return nil, errors.New("usecase: answer store must not be nil")
	}
	if analyzer == nil {
		return nil, errors.New("usecase: analyzer must not be nil")
	}
	if train == nil {
		return nil, errors.New("usecase: train func must not be nil")
	}
	s := &AnswerService{
		store:    store,
		analyzer: analyzer,
		train:    train,
		terminal: DefaultTerminalCategory,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Warm trains the model ahead of the first request.
func (s *AnswerService) Warm(ctx context.Context) error {
	if _, err := s.ensureModel(ctx); err != nil {
		return classifyError(err)
	}
	return nil
}

// Answer classifies every sentence of the question and joins the canned
// answers. Any stage or classification failure aborts the whole request.
func (s *AnswerService) Answer(ctx context.Context, in AnswerInput) (AnswerOutput, error) {
	model, err := s.ensureModel(ctx)
	if err != nil {
		return AnswerOutput{}, classifyError(err)
	}

	sentences, err := s.analyzer.Sentences(ctx, in.Question)
	if err != nil {
		return AnswerOutput{}, classifyError(err)
	}

	results := make([]SentenceResult, 0, len(sentences))
	classes := make([]domain.ClassificationResult, 0, len(sentences))
	for _, sentence := range sentences {
		if err := ctx.Err(); err != nil {
			return AnswerOutput{}, newError(ErrorInternal, "internal_error", err)
		}
		analysis, err := s.analyzer.Analyze(ctx, sentence)
		if err != nil {
			return AnswerOutput{}, classifyError(err)
		}
		res, err := model.Classify(analysis.Lemmas)
		if err != nil {
			return AnswerOutput{}, classifyError(err)
		}
		s.logger.DebugContext(ctx, "categorized sentence",
			"sentence", analysis.Sentence,
			"category", res.Category,
			"correlation_id", in.CorrelationID,
		)
		results = append(results, SentenceResult{Analysis: analysis, Result: res})
		classes = append(classes, res)
	}

	resp, unmapped := Aggregate(classes, s.store.Answer, s.terminal, s.fallback)
	for _, u := range unmapped {
		s.logger.WarnContext(ctx, "category has no answer, using fallback",
			"category", u.Category,
			"sentence", u.Sentence,
			"correlation_id", in.CorrelationID,
			"error", u,
		)
	}

	out := AnswerOutput{Response: resp, Sentences: results}
	if s.recorder != nil {
		out.ExchangeID = newUUID()
		s.record(ctx, in, out)
	}
	return out, nil
}

func (s *AnswerService) record(ctx context.Context, in AnswerInput, out AnswerOutput) {
	categories := make([]string, len(out.Sentences))
	for i, r := range out.Sentences {
		categories[i] = r.Result.Category
	}
	ex := domain.Exchange{
		ExchangeID:           out.ExchangeID,
		CorrelationID:        in.CorrelationID,
		Question:             in.Question,
		Answer:               out.Response.Answer,
		Categories:           categories,
		ConversationComplete: out.Response.ConversationComplete,
		CreatedAt:            now().UTC().Format(time.RFC3339),
	}
	if err := s.recorder.RecordExchange(ctx, ex); err != nil {
		s.logger.WarnContext(ctx, "failed to record exchange",
			"exchange_id", ex.ExchangeID,
			"correlation_id", in.CorrelationID,
			"error", err,
		)
	}
}

func (s *AnswerService) ensureModel(ctx context.Context) (Classifier, error) {
	s.cacheMu.RLock()
	if s.model != nil {
		m := s.model
		s.cacheMu.RUnlock()
		return m, nil
	}
	s.cacheMu.RUnlock()

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.model != nil {
		return s.model, nil
	}

	examples := s.store.Examples()
	start := now()
	m, err := s.train(examples)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "model trained",
		"examples", len(examples),
		"duration", time.Since(start).String(),
	)
	s.model = m
	return m, nil
}

var newUUID = func() string {
	return uuid.NewString()
}

var now = time.Now
