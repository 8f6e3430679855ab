package categorizer

import "strings"

// FeatureGenerator turns a token sequence into feature names. A feature may
// be emitted more than once; every occurrence counts.
type FeatureGenerator interface {
	ExtractFeatures(tokens []string) []string
}

// BagOfWords emits one "bow=<token>" feature per token occurrence.
type BagOfWords struct{}

func (BagOfWords) ExtractFeatures(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if strings.TrimSpace(t) == "" {
			continue
		}
		out = append(out, "bow="+t)
	}
	return out
}

// featureCounts collapses repeated features while keeping first-seen order,
// which keeps floating point accumulation order stable across runs.
func featureCounts(gens []FeatureGenerator, tokens []string) ([]string, []float64) {
	index := make(map[string]int)
	var names []string
	var values []float64
	for _, g := range gens {
		for _, f := range g.ExtractFeatures(tokens) {
			if i, ok := index[f]; ok {
				values[i]++
				continue
			}
			index[f] = len(names)
			names = append(names, f)
			values = append(values, 1)
		}
	}
	return names, values
}
