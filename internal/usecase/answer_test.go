package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"faq-bot/internal/categorizer"
	"faq-bot/internal/corpus"
	"faq-bot/internal/domain"
	"faq-bot/internal/nlp"
	"faq-bot/resources"
)

func scenarioStore(t *testing.T) *corpus.Store {
	t.Helper()
	store, err := corpus.NewStore(
		[]domain.TrainingExample{
			{Label: "greeting", Text: "hello"},
			{Label: "farewell", Text: "bye"},
			{Label: "conversation-complete", Text: "goodbye now"},
		},
		map[string]string{
			"greeting":              "Hi there!",
			"farewell":              "Goodbye!",
			"conversation-complete": "See you!",
		},
	)
	require.NoError(t, err)
	return store
}

func defaultPipeline(t *testing.T) *nlp.Pipeline {
	t.Helper()
	p, err := nlp.NewPipeline(resources.FS, nlp.DefaultResources(), nil)
	require.NoError(t, err)
	return p
}

func newService(t *testing.T, opts ...Option) *AnswerService {
	t.Helper()
	svc, err := NewAnswerService(scenarioStore(t), defaultPipeline(t), MaxentTrainer(categorizer.DefaultTrainingParams()), opts...)
	require.NoError(t, err)
	return svc
}

type mockRecorder struct {
	mu    sync.Mutex
	saved []domain.Exchange
	err   error
}

func (m *mockRecorder) RecordExchange(_ context.Context, ex domain.Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, ex)
	return m.err
}

type fixedClassifier struct {
	categories map[string]string
	err        error
}

func (c fixedClassifier) Classify(lemmas []string) (domain.ClassificationResult, error) {
	if c.err != nil {
		return domain.ClassificationResult{}, c.err
	}
	if len(lemmas) == 0 {
		return domain.ClassificationResult{Category: "greeting"}, nil
	}
	return domain.ClassificationResult{Category: c.categories[lemmas[0]]}, nil
}

type mockAnalyzer struct {
	sentences   []string
	sentenceErr error
	analyzeErr  error
	cancel      context.CancelFunc
}

func (m *mockAnalyzer) Sentences(_ context.Context, _ string) ([]string, error) {
	return m.sentences, m.sentenceErr
}

func (m *mockAnalyzer) Analyze(_ context.Context, sentence string) (nlp.Analysis, error) {
	if m.cancel != nil {
		m.cancel()
	}
	if m.analyzeErr != nil {
		return nlp.Analysis{}, m.analyzeErr
	}
	return nlp.Analysis{Sentence: sentence, Lemmas: []string{sentence}}, nil
}

func expectCode(t *testing.T, err error, code ErrorCode, reason string) {
	t.Helper()
	var ucErr *Error
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, code, ucErr.Code)
	require.Equal(t, reason, ucErr.Reason)
}

func TestAnswer_Scenario(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	out, err := svc.Answer(ctx, AnswerInput{Question: "hello"})
	require.NoError(t, err)
	require.Equal(t, domain.ChatResponse{Answer: " Hi there!", ConversationComplete: false}, out.Response)
	require.Len(t, out.Sentences, 1)
	require.Equal(t, "greeting", out.Sentences[0].Result.Category)

	out, err = svc.Answer(ctx, AnswerInput{Question: "hello. goodbye now."})
	require.NoError(t, err)
	require.Equal(t, domain.ChatResponse{Answer: " Hi there! See you!", ConversationComplete: true}, out.Response)
	require.Equal(t, "goodbye now.", out.Sentences[1].Analysis.Sentence)
	require.Empty(t, out.ExchangeID)
}

func TestAnswer_EmptyInput(t *testing.T) {
	svc := newService(t)
	for _, q := range []string{"", "   \n\t"} {
		out, err := svc.Answer(context.Background(), AnswerInput{Question: q})
		require.NoError(t, err)
		require.Equal(t, domain.ChatResponse{}, out.Response)
		require.Empty(t, out.Sentences)
	}
}

func TestAnswer_UnmappedCategoryUsesFallback(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	store := scenarioStore(t)
	train := func([]domain.TrainingExample) (Classifier, error) {
		return fixedClassifier{categories: map[string]string{"a": "greeting", "b": "mystery"}}, nil
	}
	svc, err := NewAnswerService(store, &mockAnalyzer{sentences: []string{"a", "b"}}, train,
		WithFallbackAnswer("Sorry?"), WithLogger(logger))
	require.NoError(t, err)

	out, err := svc.Answer(context.Background(), AnswerInput{Question: "a b", CorrelationID: "corr-1"})
	require.NoError(t, err)
	require.Equal(t, " Hi there! Sorry?", out.Response.Answer)
	require.False(t, out.Response.ConversationComplete)
	require.Contains(t, buf.String(), "category=mystery")
	require.Contains(t, buf.String(), "correlation_id=corr-1")
}

func TestAnswer_CustomTerminalCategory(t *testing.T) {
	svc := newService(t, WithTerminalCategory("farewell"))
	out, err := svc.Answer(context.Background(), AnswerInput{Question: "bye"})
	require.NoError(t, err)
	require.Equal(t, domain.ChatResponse{Answer: " Goodbye!", ConversationComplete: true}, out.Response)
}

func TestAnswer_RecordsExchange(t *testing.T) {
	origUUID, origNow := newUUID, now
	newUUID = func() string { return "ex-1" }
	now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { newUUID, now = origUUID, origNow })

	rec := &mockRecorder{}
	svc := newService(t, WithRecorder(rec))
	out, err := svc.Answer(context.Background(), AnswerInput{Question: "hello. goodbye now.", CorrelationID: "corr-9"})
	require.NoError(t, err)
	require.Equal(t, "ex-1", out.ExchangeID)

	require.Len(t, rec.saved, 1)
	require.Equal(t, domain.Exchange{
		ExchangeID:           "ex-1",
		CorrelationID:        "corr-9",
		Question:             "hello. goodbye now.",
		Answer:               " Hi there! See you!",
		Categories:           []string{"greeting", "conversation-complete"},
		ConversationComplete: true,
		CreatedAt:            "2026-03-01T12:00:00Z",
	}, rec.saved[0])
}

func TestAnswer_RecorderFailureDoesNotFailAnswer(t *testing.T) {
	rec := &mockRecorder{err: errors.New("dynamo down")}
	svc := newService(t, WithRecorder(rec))
	out, err := svc.Answer(context.Background(), AnswerInput{Question: "hello"})
	require.NoError(t, err)
	require.Equal(t, " Hi there!", out.Response.Answer)
	require.Len(t, rec.saved, 1)
}

func TestEnsureModel_TrainsOnceUnderConcurrency(t *testing.T) {
	var calls atomic.Int32
	inner := MaxentTrainer(categorizer.DefaultTrainingParams())
	train := func(ex []domain.TrainingExample) (Classifier, error) {
		calls.Add(1)
		return inner(ex)
	}
	svc, err := NewAnswerService(scenarioStore(t), defaultPipeline(t), train)
	require.NoError(t, err)

	answers := make([]string, 16)
	errs := make([]error, 16)
	var wg sync.WaitGroup
	for i := range answers {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := svc.Answer(context.Background(), AnswerInput{Question: "hello"})
			answers[i], errs[i] = out.Response.Answer, err
		}()
	}
	wg.Wait()
	for i := range answers {
		require.NoError(t, errs[i])
		require.Equal(t, " Hi there!", answers[i])
	}
	require.Equal(t, int32(1), calls.Load())
}

func TestEnsureModel_RetriesAfterFailure(t *testing.T) {
	calls := 0
	inner := MaxentTrainer(categorizer.DefaultTrainingParams())
	train := func(ex []domain.TrainingExample) (Classifier, error) {
		calls++
		if calls == 1 {
			return nil, &categorizer.TrainingError{Err: categorizer.ErrNoFeatures}
		}
		return inner(ex)
	}
	svc, err := NewAnswerService(scenarioStore(t), defaultPipeline(t), train)
	require.NoError(t, err)

	err = svc.Warm(context.Background())
	expectCode(t, err, ErrorTraining, "training_error")

	require.NoError(t, svc.Warm(context.Background()))
	_, err = svc.Answer(context.Background(), AnswerInput{Question: "hello"})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestAnswer_ErrorMapping(t *testing.T) {
	okTrain := func([]domain.TrainingExample) (Classifier, error) {
		return fixedClassifier{categories: map[string]string{}}, nil
	}

	cases := []struct {
		name     string
		analyzer *mockAnalyzer
		train    TrainFunc
		code     ErrorCode
		reason   string
	}{
		{
			name:     "sentence stage",
			analyzer: &mockAnalyzer{sentenceErr: &nlp.StageError{Stage: nlp.StageSentence, Resource: "en-sent.yaml", Err: errors.New("bad")}},
			train:    okTrain,
			code:     ErrorPreprocessing,
			reason:   "sentence_stage_error",
		},
		{
			name:     "tokenizer stage",
			analyzer: &mockAnalyzer{sentences: []string{"a"}, analyzeErr: &nlp.StageError{Stage: nlp.StageTokenize, Err: errors.New("bad")}},
			train:    okTrain,
			code:     ErrorPreprocessing,
			reason:   "tokenizer_stage_error",
		},
		{
			name:     "classification",
			analyzer: &mockAnalyzer{sentences: []string{"a"}},
			train: func([]domain.TrainingExample) (Classifier, error) {
				return fixedClassifier{err: &categorizer.ClassificationError{Err: categorizer.ErrMalformedModel}}, nil
			},
			code:   ErrorClassification,
			reason: "classification_error",
		},
		{
			name:     "training",
			analyzer: &mockAnalyzer{},
			train: func([]domain.TrainingExample) (Classifier, error) {
				return nil, &categorizer.TrainingError{Err: categorizer.ErrEmptyCorpus}
			},
			code:   ErrorTraining,
			reason: "training_error",
		},
		{
			name:     "unexpected",
			analyzer: &mockAnalyzer{sentenceErr: errors.New("boom")},
			train:    okTrain,
			code:     ErrorInternal,
			reason:   "internal_error",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, err := NewAnswerService(scenarioStore(t), tc.analyzer, tc.train)
			require.NoError(t, err)
			_, err = svc.Answer(context.Background(), AnswerInput{Question: "a"})
			expectCode(t, err, tc.code, tc.reason)
		})
	}
}

func TestClassifyError_LoadError(t *testing.T) {
	err := classifyError(&corpus.LoadError{Resource: "faq-categorizer.txt", Err: corpus.ErrEmptyResource})
	expectCode(t, err, ErrorResourceLoad, "resource_load_error")
	require.ErrorIs(t, err, corpus.ErrEmptyResource)
}

func TestAnswer_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	okTrain := func([]domain.TrainingExample) (Classifier, error) {
		return fixedClassifier{categories: map[string]string{"a": "greeting", "b": "farewell"}}, nil
	}
	svc, err := NewAnswerService(scenarioStore(t), &mockAnalyzer{sentences: []string{"a", "b"}, cancel: cancel}, okTrain)
	require.NoError(t, err)

	_, err = svc.Answer(ctx, AnswerInput{Question: "a b"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewAnswerService_Validates(t *testing.T) {
	train := MaxentTrainer(categorizer.DefaultTrainingParams())
	_, err := NewAnswerService(nil, defaultPipeline(t), train)
	require.Error(t, err)
	_, err = NewAnswerService(scenarioStore(t), nil, train)
	require.Error(t, err)
	_, err = NewAnswerService(scenarioStore(t), defaultPipeline(t), nil)
	require.Error(t, err)
}
