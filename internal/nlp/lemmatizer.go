package nlp

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"faq-bot/internal/textnorm"
)

const kindLemmatizer = "lemmatizer"

type lemmaEntry struct {
	Word  string `yaml:"word"`
	Tag   string `yaml:"tag"`
	Lemma string `yaml:"lemma"`
}

type lemmaRule struct {
	Tags    []string `yaml:"tags"`
	Suffix  string   `yaml:"suffix"`
	Replace string   `yaml:"replace"`
	Except  []string `yaml:"except"`
}

type lemmatizerModel struct {
	header  `yaml:",inline"`
	MinStem int          `yaml:"min_stem"`
	Entries []lemmaEntry `yaml:"entries"`
	Rules   []lemmaRule  `yaml:"rules"`

	exact  map[string]string
	coarse map[string]string
}

func lemmaKey(word, tag string) string {
	return word + "\x00" + tag
}

// coarseTag reduces a Penn tag to its word class: NNS -> NN, VBZ -> VB.
func coarseTag(tag string) string {
	if len(tag) > 2 {
		return tag[:2]
	}
	return tag
}

func (m *lemmatizerModel) validate() error {
	if err := m.checkKind(kindLemmatizer); err != nil {
		return err
	}
	m.exact = make(map[string]string, len(m.Entries))
	m.coarse = make(map[string]string, len(m.Entries))
	for i, e := range m.Entries {
		if e.Word == "" || e.Tag == "" || e.Lemma == "" {
			return fmt.Errorf("lemma entry %d is incomplete", i+1)
		}
		w := textnorm.Fold(e.Word)
		m.exact[lemmaKey(w, e.Tag)] = e.Lemma
		ck := lemmaKey(w, coarseTag(e.Tag))
		if _, ok := m.coarse[ck]; !ok {
			m.coarse[ck] = e.Lemma
		}
	}
	for i, r := range m.Rules {
		if len(r.Tags) == 0 || r.Suffix == "" {
			return fmt.Errorf("lemma rule %d is incomplete", i+1)
		}
	}
	sort.SliceStable(m.Rules, func(i, j int) bool {
		return len(m.Rules[i].Suffix) > len(m.Rules[j].Suffix)
	})
	return nil
}

// Lemmatizer reduces tokens to their dictionary form given their tags.
type Lemmatizer struct {
	fsys     fs.FS
	resource string
}

// NewLemmatizer creates a lemmatizer backed by the named resource in fsys.
func NewLemmatizer(fsys fs.FS, resource string) (*Lemmatizer, error) {
	if fsys == nil {
		return nil, errors.New("nlp: lemmatizer file system must not be nil")
	}
	if strings.TrimSpace(resource) == "" {
		return nil, errors.New("nlp: lemmatizer resource must not be empty")
	}
	return &Lemmatizer{fsys: fsys, resource: resource}, nil
}

// Lemmatize returns one lemma per token. tokens and tags must have the same
// length.
func (l *Lemmatizer) Lemmatize(_ context.Context, tokens, tags []string) ([]string, error) {
	if len(tokens) != len(tags) {
		return nil, &StageError{
			Stage:    StageLemmatize,
			Resource: l.resource,
			Err:      fmt.Errorf("%d tokens but %d tags", len(tokens), len(tags)),
		}
	}
	var (
		m   lemmatizerModel
		out []string
	)
	err := useResource(l.fsys, StageLemmatize, l.resource, &m, func() error {
		out = make([]string, len(tokens))
		for i := range tokens {
			out[i] = m.lemma(tokens[i], tags[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *lemmatizerModel) lemma(token, tag string) string {
	word := textnorm.Fold(strings.ReplaceAll(token, "’", "'"))
	if l, ok := m.exact[lemmaKey(word, tag)]; ok {
		return l
	}
	if l, ok := m.coarse[lemmaKey(word, coarseTag(tag))]; ok {
		return l
	}
	for _, r := range m.Rules {
		if !contains(r.Tags, tag) || contains(r.Except, word) {
			continue
		}
		if len(word)-len(r.Suffix) >= m.MinStem && strings.HasSuffix(word, r.Suffix) {
			return word[:len(word)-len(r.Suffix)] + r.Replace
		}
	}
	return word
}
