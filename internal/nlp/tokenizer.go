package nlp

import (
	"context"
	"errors"
	"io/fs"
	"sort"
	"strings"
	"unicode"

	"faq-bot/internal/textnorm"
)

const kindTokenizer = "tokenizer"

type tokenizerModel struct {
	header        `yaml:",inline"`
	Contractions  []string `yaml:"contractions"`
	Abbreviations []string `yaml:"abbreviations"`

	abbrev map[string]struct{}
}

func (m *tokenizerModel) validate() error {
	if err := m.checkKind(kindTokenizer); err != nil {
		return err
	}
	for _, c := range m.Contractions {
		if strings.TrimSpace(c) == "" {
			return errors.New("contractions must not contain empty entries")
		}
	}
	// longest suffix wins
	sort.SliceStable(m.Contractions, func(i, j int) bool {
		return len(m.Contractions[i]) > len(m.Contractions[j])
	})
	m.abbrev = lowerSet(m.Abbreviations)
	return nil
}

// Tokenizer splits a sentence into word and punctuation tokens.
type Tokenizer struct {
	fsys     fs.FS
	resource string
}

// NewTokenizer creates a tokenizer backed by the named resource in fsys.
func NewTokenizer(fsys fs.FS, resource string) (*Tokenizer, error) {
	if fsys == nil {
		return nil, errors.New("nlp: tokenizer file system must not be nil")
	}
	if strings.TrimSpace(resource) == "" {
		return nil, errors.New("nlp: tokenizer resource must not be empty")
	}
	return &Tokenizer{fsys: fsys, resource: resource}, nil
}

// Tokenize returns the tokens of sentence in order.
func (t *Tokenizer) Tokenize(_ context.Context, sentence string) ([]string, error) {
	var (
		m   tokenizerModel
		out []string
	)
	err := useResource(t.fsys, StageTokenize, t.resource, &m, func() error {
		out = m.tokenize(sentence)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *tokenizerModel) tokenize(sentence string) []string {
	var out []string
	for _, field := range strings.Fields(textnorm.NFC(sentence)) {
		out = append(out, m.splitField(field)...)
	}
	return out
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func (m *tokenizerModel) isAbbreviation(s string) bool {
	_, ok := m.abbrev[strings.ToLower(s)]
	return ok
}

func (m *tokenizerModel) splitField(field string) []string {
	if m.isAbbreviation(field) {
		return []string{field}
	}
	runes := []rune(field)

	var lead []string
	i := 0
	for i < len(runes) && isPunct(runes[i]) {
		lead = append(lead, string(runes[i]))
		i++
	}
	runes = runes[i:]
	if len(runes) == 0 {
		return groupPunct(lead)
	}

	j := len(runes)
	for j > 0 && isPunct(runes[j-1]) {
		j--
	}
	core := string(runes[:j])
	trail := runes[j:]

	// "Mr." and "e.g." keep their period
	if len(trail) > 0 && trail[0] == '.' && core != "" && m.isAbbreviation(core+".") {
		core += "."
		trail = trail[1:]
	}

	out := groupPunct(lead)
	if core != "" {
		out = append(out, m.splitContraction(core)...)
	}
	return append(out, groupRuns(trail)...)
}

// splitContraction separates a known clitic such as "n't" or "'s".
func (m *tokenizerModel) splitContraction(word string) []string {
	normalized := strings.ReplaceAll(word, "’", "'")
	lower := strings.ToLower(normalized)
	if len(lower) != len(normalized) {
		return []string{word}
	}
	for _, c := range m.Contractions {
		c = strings.ToLower(c)
		if len(lower) > len(c) && strings.HasSuffix(lower, c) {
			cut := len(normalized) - len(c)
			return []string{normalized[:cut], normalized[cut:]}
		}
	}
	return []string{word}
}

func groupPunct(items []string) []string {
	var runes []rune
	for _, it := range items {
		runes = append(runes, []rune(it)...)
	}
	return groupRuns(runes)
}

// groupRuns emits one token per run of identical punctuation, so "..." stays
// whole while "?!" becomes two tokens.
func groupRuns(runes []rune) []string {
	var out []string
	for i := 0; i < len(runes); {
		j := i + 1
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		out = append(out, string(runes[i:j]))
		i = j
	}
	return out
}
