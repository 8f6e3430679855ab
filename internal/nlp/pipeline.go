package nlp

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
)

// Resources names the model resource of each stage inside the pipeline file
// system.
type Resources struct {
	Sentence   string
	Tokenizer  string
	POSTagger  string
	Lemmatizer string
}

// DefaultResources returns the English resources shipped with the service.
func DefaultResources() Resources {
	return Resources{
		Sentence:   "en-sent.yaml",
		Tokenizer:  "en-token.yaml",
		POSTagger:  "en-pos.yaml",
		Lemmatizer: "en-lemmatizer.yaml",
	}
}

// Analysis is one sentence carried through every stage. Tokens, Tags and
// Lemmas are aligned by position.
type Analysis struct {
	Sentence string   `json:"sentence"`
	Tokens   []string `json:"tokens"`
	Tags     []string `json:"tags"`
	Lemmas   []string `json:"lemmas"`
}

// Pipeline runs sentence detection, tokenization, tagging and lemmatization.
// It holds no open resources between calls and is safe for concurrent use.
type Pipeline struct {
	sentences  *SentenceDetector
	tokenizer  *Tokenizer
	tagger     *Tagger
	lemmatizer *Lemmatizer
	logger     *slog.Logger
}

// NewPipeline builds a pipeline reading stage resources from fsys. A nil
// logger uses slog.Default.
func NewPipeline(fsys fs.FS, res Resources, logger *slog.Logger) (*Pipeline, error) {
	sd, err := NewSentenceDetector(fsys, res.Sentence)
	if err != nil {
		return nil, err
	}
	tok, err := NewTokenizer(fsys, res.Tokenizer)
	if err != nil {
		return nil, err
	}
	tg, err := NewTagger(fsys, res.POSTagger)
	if err != nil {
		return nil, err
	}
	lm, err := NewLemmatizer(fsys, res.Lemmatizer)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{sentences: sd, tokenizer: tok, tagger: tg, lemmatizer: lm, logger: logger}, nil
}

// Sentences splits text into sentences.
func (p *Pipeline) Sentences(ctx context.Context, text string) ([]string, error) {
	out, err := p.sentences.Detect(ctx, text)
	if err != nil {
		return nil, err
	}
	p.logger.DebugContext(ctx, "sentence detection", "sentences", strings.Join(out, " | "))
	return out, nil
}

// Analyze tokenizes, tags and lemmatizes one sentence.
func (p *Pipeline) Analyze(ctx context.Context, sentence string) (Analysis, error) {
	tokens, err := p.tokenizer.Tokenize(ctx, sentence)
	if err != nil {
		return Analysis{}, err
	}
	p.logger.DebugContext(ctx, "tokenizer", "tokens", strings.Join(tokens, " | "))

	tags, err := p.tagger.Tag(ctx, tokens)
	if err != nil {
		return Analysis{}, err
	}
	if len(tags) != len(tokens) {
		return Analysis{}, &StageError{
			Stage:    StagePOS,
			Resource: p.tagger.resource,
			Err:      fmt.Errorf("%d tags for %d tokens", len(tags), len(tokens)),
		}
	}
	p.logger.DebugContext(ctx, "pos tags", "tags", strings.Join(tags, " | "))

	lemmas, err := p.lemmatizer.Lemmatize(ctx, tokens, tags)
	if err != nil {
		return Analysis{}, err
	}
	p.logger.DebugContext(ctx, "lemmatizer", "lemmas", strings.Join(lemmas, " | "))

	return Analysis{Sentence: sentence, Tokens: tokens, Tags: tags, Lemmas: lemmas}, nil
}
