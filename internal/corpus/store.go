package corpus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/magiconair/properties"

	"faq-bot/internal/domain"
)

const (
	DefaultCorpusResource  = "faq-categorizer.txt"
	DefaultAnswersResource = "questionAnswer.properties"

	maxLineSize = 1 << 20
)

var (
	ErrEmptyResource = errors.New("resource is empty")
	ErrMissingText   = errors.New("line has a label but no example text")
	ErrEmptyLabel    = errors.New("entry has an empty category label")
)

// Names identifies the corpus and answer resources inside a Source.
type Names struct {
	Corpus  string
	Answers string
}

// DefaultNames returns the resource names shipped with the service.
func DefaultNames() Names {
	return Names{Corpus: DefaultCorpusResource, Answers: DefaultAnswersResource}
}

// Store holds the training corpus and the category to answer mapping. It is
// immutable once built and safe for concurrent readers.
type Store struct {
	examples []domain.TrainingExample
	answers  map[string]string
}

// Load reads both resources from src and builds a Store.
func Load(ctx context.Context, src Source, names Names) (*Store, error) {
	if src == nil {
		return nil, errors.New("corpus: source must not be nil")
	}
	if strings.TrimSpace(names.Corpus) == "" || strings.TrimSpace(names.Answers) == "" {
		return nil, errors.New("corpus: resource names must not be empty")
	}

	examples, err := loadWith(ctx, src, names.Corpus, func(r io.Reader) ([]domain.TrainingExample, error) {
		return ParseCorpus(r, names.Corpus)
	})
	if err != nil {
		return nil, err
	}
	answers, err := loadWith(ctx, src, names.Answers, func(r io.Reader) (map[string]string, error) {
		return ParseAnswers(r, names.Answers)
	})
	if err != nil {
		return nil, err
	}
	return NewStore(examples, answers)
}

func loadWith[T any](ctx context.Context, src Source, name string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	rc, err := src.Open(ctx, name)
	if err != nil {
		return zero, &LoadError{Resource: name, Err: err}
	}
	defer func() { _ = rc.Close() }()
	return parse(rc)
}

// NewStore builds a Store from already parsed tables. Both tables are copied.
func NewStore(examples []domain.TrainingExample, answers map[string]string) (*Store, error) {
	if len(examples) == 0 {
		return nil, &LoadError{Resource: "corpus", Err: ErrEmptyResource}
	}
	if len(answers) == 0 {
		return nil, &LoadError{Resource: "answers", Err: ErrEmptyResource}
	}
	s := &Store{
		examples: make([]domain.TrainingExample, len(examples)),
		answers:  make(map[string]string, len(answers)),
	}
	copy(s.examples, examples)
	for k, v := range answers {
		s.answers[k] = v
	}
	return s, nil
}

// ParseCorpus reads one training example per line: a category label, then
// whitespace, then the example text. Blank lines are skipped.
func ParseCorpus(r io.Reader, resource string) ([]domain.TrainingExample, error) {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var out []domain.TrainingExample
	line := 0
	for scan.Scan() {
		line++
		fields := strings.Fields(scan.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) == 1 {
			return nil, &LoadError{Resource: resource, Line: line, Err: ErrMissingText}
		}
		out = append(out, domain.TrainingExample{
			Label: fields[0],
			Text:  strings.Join(fields[1:], " "),
		})
	}
	if err := scan.Err(); err != nil {
		return nil, &LoadError{Resource: resource, Line: line, Err: err}
	}
	if len(out) == 0 {
		return nil, &LoadError{Resource: resource, Err: ErrEmptyResource}
	}
	return out, nil
}

// ParseAnswers reads a Java properties document mapping category labels to
// canned answers. Property expansion is disabled so answers are kept verbatim.
func ParseAnswers(r io.Reader, resource string) (map[string]string, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Resource: resource, Err: err}
	}

	p := properties.NewProperties()
	p.DisableExpansion = true
	if err := p.Load(buf, properties.UTF8); err != nil {
		return nil, &LoadError{Resource: resource, Err: fmt.Errorf("parse properties: %w", err)}
	}

	out := make(map[string]string, p.Len())
	for _, key := range p.Keys() {
		if strings.TrimSpace(key) == "" {
			return nil, &LoadError{Resource: resource, Err: ErrEmptyLabel}
		}
		v, _ := p.Get(key)
		out[key] = v
	}
	if len(out) == 0 {
		return nil, &LoadError{Resource: resource, Err: ErrEmptyResource}
	}
	return out, nil
}

// Examples returns a copy of the training corpus in file order.
func (s *Store) Examples() []domain.TrainingExample {
	out := make([]domain.TrainingExample, len(s.examples))
	copy(out, s.examples)
	return out
}

// Len returns the number of training examples.
func (s *Store) Len() int {
	return len(s.examples)
}

// Answer returns the canned answer for category.
func (s *Store) Answer(category string) (string, bool) {
	a, ok := s.answers[category]
	return a, ok
}

// Categories returns the answer map keys in lexical order.
func (s *Store) Categories() []string {
	out := make([]string, 0, len(s.answers))
	for k := range s.answers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Validate returns the answer categories that have no training example.
// Such categories can never be predicted.
func (s *Store) Validate() []string {
	seen := make(map[string]struct{}, len(s.examples))
	for _, ex := range s.examples {
		seen[ex.Label] = struct{}{}
	}
	var missing []string
	for _, c := range s.Categories() {
		if _, ok := seen[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}
