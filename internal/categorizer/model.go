package categorizer

import (
	"fmt"

	"faq-bot/internal/domain"
	"faq-bot/internal/textnorm"
)

// Model is a trained maximum entropy document categorizer. It is read-only
// after Train returns and safe for concurrent use.
type Model struct {
	labels     []string
	features   map[string]int
	weights    [][]float64
	generators []FeatureGenerator
	language   string
	iterations int
}

// Labels returns every label seen in training, in lexical order.
func (m *Model) Labels() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.labels...)
}

// Language returns the language the model was trained for.
func (m *Model) Language() string {
	if m == nil {
		return ""
	}
	return m.language
}

// Iterations returns the number of scaling rounds run during training.
func (m *Model) Iterations() int {
	if m == nil {
		return 0
	}
	return m.iterations
}

func (m *Model) check() error {
	if m == nil {
		return ErrNilModel
	}
	if len(m.labels) == 0 {
		return fmt.Errorf("%w: no labels", ErrMalformedModel)
	}
	if len(m.generators) == 0 {
		return fmt.Errorf("%w: no feature generators", ErrMalformedModel)
	}
	if len(m.weights) != len(m.features) {
		return fmt.Errorf("%w: %d weight rows for %d features", ErrMalformedModel, len(m.weights), len(m.features))
	}
	for _, row := range m.weights {
		if len(row) != len(m.labels) {
			return fmt.Errorf("%w: weight row has %d columns for %d labels", ErrMalformedModel, len(row), len(m.labels))
		}
	}
	return nil
}

// Categorize returns the probability of every label, aligned with Labels,
// for the given tokens. Features unseen in training are ignored.
func (m *Model) Categorize(tokens []string) ([]float64, error) {
	if err := m.check(); err != nil {
		return nil, &ClassificationError{Err: err}
	}

	names, values := featureCounts(m.generators, textnorm.FoldAll(tokens))
	features := make([]int, 0, len(names))
	kept := make([]float64, 0, len(values))
	for i, n := range names {
		fi, ok := m.features[n]
		if !ok {
			continue
		}
		if fi < 0 || fi >= len(m.weights) {
			return nil, &ClassificationError{Err: fmt.Errorf("%w: feature index %d out of range", ErrMalformedModel, fi)}
		}
		features = append(features, fi)
		kept = append(kept, values[i])
	}

	probs := make([]float64, len(m.labels))
	evalInto(probs, m.weights, features, kept)
	return probs, nil
}

// BestCategory returns the label with the highest probability. Ties go to the
// lexically lowest label.
func (m *Model) BestCategory(probs []float64) (string, error) {
	if err := m.check(); err != nil {
		return "", &ClassificationError{Err: err}
	}
	if len(probs) != len(m.labels) {
		return "", &ClassificationError{Err: fmt.Errorf("%w: %d probabilities for %d labels", ErrMalformedModel, len(probs), len(m.labels))}
	}
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return m.labels[best], nil
}

// Classify scores a lemma sequence and picks its category.
func (m *Model) Classify(lemmas []string) (domain.ClassificationResult, error) {
	probs, err := m.Categorize(lemmas)
	if err != nil {
		return domain.ClassificationResult{}, err
	}
	category, err := m.BestCategory(probs)
	if err != nil {
		return domain.ClassificationResult{}, err
	}
	scores := make(map[string]float64, len(probs))
	for i, p := range probs {
		scores[m.labels[i]] = p
	}
	return domain.ClassificationResult{Category: category, Scores: scores}, nil
}
