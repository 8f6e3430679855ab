package nlp

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"unicode"
)

const kindPOSTagger = "pos-tagger"

type suffixTag struct {
	Suffix string `yaml:"suffix"`
	Tag    string `yaml:"tag"`
}

type contextRule struct {
	After []string `yaml:"after"`
	From  []string `yaml:"from"`
	To    string   `yaml:"to"`
}

type taggerModel struct {
	header       `yaml:",inline"`
	DefaultTag   string            `yaml:"default_tag"`
	NumberTag    string            `yaml:"number_tag"`
	ProperTag    string            `yaml:"proper_noun_tag"`
	MinStem      int               `yaml:"min_stem"`
	Lexicon      map[string]string `yaml:"lexicon"`
	Punctuation  map[string]string `yaml:"punctuation"`
	PunctDefault string            `yaml:"punctuation_default"`
	Suffixes     []suffixTag       `yaml:"suffixes"`
	Rules        []contextRule     `yaml:"rules"`

	lexicon map[string]string
}

func (m *taggerModel) validate() error {
	if err := m.checkKind(kindPOSTagger); err != nil {
		return err
	}
	if strings.TrimSpace(m.DefaultTag) == "" {
		return errors.New("default_tag must not be empty")
	}
	for i, s := range m.Suffixes {
		if s.Suffix == "" || s.Tag == "" {
			return fmt.Errorf("suffix rule %d is incomplete", i+1)
		}
	}
	for i, r := range m.Rules {
		if len(r.After) == 0 || len(r.From) == 0 || r.To == "" {
			return fmt.Errorf("context rule %d is incomplete", i+1)
		}
	}
	sort.SliceStable(m.Suffixes, func(i, j int) bool {
		return len(m.Suffixes[i].Suffix) > len(m.Suffixes[j].Suffix)
	})
	m.lexicon = make(map[string]string, len(m.Lexicon))
	for w, tag := range m.Lexicon {
		m.lexicon[strings.ToLower(w)] = tag
	}
	return nil
}

// Tagger assigns a Penn Treebank part-of-speech tag to every token.
type Tagger struct {
	fsys     fs.FS
	resource string
}

// NewTagger creates a tagger backed by the named resource in fsys.
func NewTagger(fsys fs.FS, resource string) (*Tagger, error) {
	if fsys == nil {
		return nil, errors.New("nlp: tagger file system must not be nil")
	}
	if strings.TrimSpace(resource) == "" {
		return nil, errors.New("nlp: tagger resource must not be empty")
	}
	return &Tagger{fsys: fsys, resource: resource}, nil
}

// Tag returns one tag per token, aligned by position.
func (t *Tagger) Tag(_ context.Context, tokens []string) ([]string, error) {
	var (
		m   taggerModel
		out []string
	)
	err := useResource(t.fsys, StagePOS, t.resource, &m, func() error {
		out = m.tag(tokens)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *taggerModel) tag(tokens []string) []string {
	tags := make([]string, len(tokens))
	for i, tok := range tokens {
		tags[i] = m.baseline(tok, i == 0)
	}
	for i := 1; i < len(tags); i++ {
		for _, r := range m.Rules {
			if contains(r.After, tags[i-1]) && contains(r.From, tags[i]) {
				tags[i] = r.To
				break
			}
		}
	}
	return tags
}

func (m *taggerModel) baseline(tok string, first bool) string {
	lower := strings.ToLower(tok)
	if tag, ok := m.lexicon[lower]; ok {
		return tag
	}
	if tag, ok := m.Punctuation[tok]; ok {
		return tag
	}
	if allFunc(tok, isPunct) {
		if m.PunctDefault != "" {
			return m.PunctDefault
		}
		return tok
	}
	if m.NumberTag != "" && isNumber(tok) {
		return m.NumberTag
	}
	if m.ProperTag != "" && !first && startsUpper(tok) {
		return m.ProperTag
	}
	for _, s := range m.Suffixes {
		if len(lower)-len(s.Suffix) >= m.MinStem && strings.HasSuffix(lower, s.Suffix) {
			return s.Tag
		}
	}
	return m.DefaultTag
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func allFunc(s string, f func(rune) bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !f(r) {
			return false
		}
	}
	return true
}

func isNumber(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == ',' || r == '-' || r == '/' || r == ':' || r == '%':
		default:
			return false
		}
	}
	return digits > 0
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
