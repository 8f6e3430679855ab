package categorizer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"faq-bot/internal/domain"
	"faq-bot/internal/textnorm"
)

const (
	DefaultIterations = 100
	DefaultCutoff     = 0
	DefaultTolerance  = 1e-5
	DefaultLanguage   = "en"
)

// TrainingParams controls model construction.
type TrainingParams struct {
	Language   string
	Cutoff     int
	Iterations int
	Tolerance  float64
	Generators []FeatureGenerator
}

// DefaultTrainingParams returns bag-of-words features, no frequency cutoff and
// 100 scaling iterations.
func DefaultTrainingParams() TrainingParams {
	return TrainingParams{
		Language:   DefaultLanguage,
		Cutoff:     DefaultCutoff,
		Iterations: DefaultIterations,
		Tolerance:  DefaultTolerance,
		Generators: []FeatureGenerator{BagOfWords{}},
	}
}

func (p TrainingParams) validate() error {
	if p.Iterations <= 0 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidParams, p.Iterations)
	}
	if p.Cutoff < 0 {
		return fmt.Errorf("%w: cutoff must not be negative, got %d", ErrInvalidParams, p.Cutoff)
	}
	if p.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance must not be negative", ErrInvalidParams)
	}
	if len(p.Generators) == 0 {
		return fmt.Errorf("%w: at least one feature generator is required", ErrInvalidParams)
	}
	return nil
}

type event struct {
	label    int
	features []int
	values   []float64
}

// Train fits a maximum entropy model to examples using Generalized Iterative
// Scaling. The result depends only on examples and params.
func Train(examples []domain.TrainingExample, params TrainingParams) (*Model, error) {
	if err := params.validate(); err != nil {
		return nil, &TrainingError{Err: err}
	}
	if len(examples) == 0 {
		return nil, &TrainingError{Err: ErrEmptyCorpus}
	}

	type rawEvent struct {
		label  string
		names  []string
		values []float64
	}
	raws := make([]rawEvent, 0, len(examples))
	labelSet := make(map[string]struct{})
	featureFreq := make(map[string]float64)
	for i, ex := range examples {
		label := strings.TrimSpace(ex.Label)
		if label == "" {
			return nil, &TrainingError{Err: fmt.Errorf("%w: example %d has an empty label", ErrNoLabels, i+1)}
		}
		labelSet[label] = struct{}{}
		names, values := featureCounts(params.Generators, textnorm.Fields(ex.Text))
		for j, n := range names {
			featureFreq[n] += values[j]
		}
		raws = append(raws, rawEvent{label: label, names: names, values: values})
	}

	labels := sortedKeys(labelSet)
	labelIndex := indexOf(labels)

	kept := make(map[string]struct{}, len(featureFreq))
	for f, n := range featureFreq {
		if n >= float64(params.Cutoff) {
			kept[f] = struct{}{}
		}
	}
	features := sortedKeys(kept)
	if len(features) == 0 {
		return nil, &TrainingError{Err: ErrNoFeatures}
	}
	featureIndex := indexOf(features)

	events := make([]event, 0, len(raws))
	correction := 0.0
	for _, r := range raws {
		ev := event{label: labelIndex[r.label]}
		total := 0.0
		for j, n := range r.names {
			fi, ok := featureIndex[n]
			if !ok {
				continue
			}
			ev.features = append(ev.features, fi)
			ev.values = append(ev.values, r.values[j])
			total += r.values[j]
		}
		if total > correction {
			correction = total
		}
		events = append(events, ev)
	}
	if correction == 0 {
		return nil, &TrainingError{Err: ErrNoFeatures}
	}

	weights := newMatrix(len(features), len(labels))
	observed := newMatrix(len(features), len(labels))
	for _, ev := range events {
		for j, fi := range ev.features {
			observed[fi][ev.label] += ev.values[j]
		}
	}

	probs := make([]float64, len(labels))
	prevLL := math.Inf(-1)
	iterations := 0
	for iterations < params.Iterations {
		iterations++
		expected := newMatrix(len(features), len(labels))
		ll := 0.0
		for _, ev := range events {
			evalInto(probs, weights, ev.features, ev.values)
			for j, fi := range ev.features {
				for o, p := range probs {
					expected[fi][o] += ev.values[j] * p
				}
			}
			ll += math.Log(probs[ev.label])
		}

		for fi := range weights {
			for o := range weights[fi] {
				if observed[fi][o] == 0 || expected[fi][o] == 0 {
					continue
				}
				weights[fi][o] += math.Log(observed[fi][o]/expected[fi][o]) / correction
			}
		}

		if math.Abs(ll-prevLL) < params.Tolerance {
			break
		}
		prevLL = ll
	}

	return &Model{
		labels:     labels,
		features:   featureIndex,
		weights:    weights,
		generators: append([]FeatureGenerator(nil), params.Generators...),
		language:   params.Language,
		iterations: iterations,
	}, nil
}

// evalInto writes the label distribution for one feature vector into probs.
func evalInto(probs []float64, weights [][]float64, features []int, values []float64) {
	for o := range probs {
		probs[o] = 0
	}
	for j, fi := range features {
		row := weights[fi]
		for o := range probs {
			probs[o] += values[j] * row[o]
		}
	}
	softmax(probs)
}

func softmax(scores []float64) {
	if len(scores) == 0 {
		return
	}
	peak := scores[0]
	for _, s := range scores[1:] {
		if s > peak {
			peak = s
		}
	}
	sum := 0.0
	for i, s := range scores {
		scores[i] = math.Exp(s - peak)
		sum += scores[i]
	}
	for i := range scores {
		scores[i] /= sum
	}
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func indexOf(keys []string) map[string]int {
	out := make(map[string]int, len(keys))
	for i, k := range keys {
		out[k] = i
	}
	return out
}
