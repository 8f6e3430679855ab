package nlp

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"unicode"
)

const kindSentenceDetector = "sentence-detector"

type sentenceModel struct {
	header        `yaml:",inline"`
	EndOfSentence []string `yaml:"end_of_sentence"`
	Closing       []string `yaml:"closing"`
	Abbreviations []string `yaml:"abbreviations"`
	Initials      bool     `yaml:"initials"`

	eos     map[rune]struct{}
	closing map[rune]struct{}
	abbrev  map[string]struct{}
}

func (m *sentenceModel) validate() error {
	if err := m.checkKind(kindSentenceDetector); err != nil {
		return err
	}
	if len(m.EndOfSentence) == 0 {
		return errors.New("end_of_sentence must not be empty")
	}
	m.eos = runeSet(m.EndOfSentence)
	m.closing = runeSet(m.Closing)
	m.abbrev = lowerSet(m.Abbreviations)
	return nil
}

// SentenceDetector splits raw text into sentences.
type SentenceDetector struct {
	fsys     fs.FS
	resource string
}

// NewSentenceDetector creates a detector backed by the named resource in fsys.
func NewSentenceDetector(fsys fs.FS, resource string) (*SentenceDetector, error) {
	if fsys == nil {
		return nil, errors.New("nlp: sentence detector file system must not be nil")
	}
	if strings.TrimSpace(resource) == "" {
		return nil, errors.New("nlp: sentence detector resource must not be empty")
	}
	return &SentenceDetector{fsys: fsys, resource: resource}, nil
}

// Detect returns the sentences of text in order. Empty or blank text yields
// no sentences.
func (d *SentenceDetector) Detect(_ context.Context, text string) ([]string, error) {
	var (
		m   sentenceModel
		out []string
	)
	err := useResource(d.fsys, StageSentence, d.resource, &m, func() error {
		out = m.detect(text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *sentenceModel) detect(text string) []string {
	runes := []rune(text)
	n := len(runes)
	var out []string
	start := 0
	for i := 0; i < n; i++ {
		if _, ok := m.eos[runes[i]]; !ok {
			continue
		}
		end := i
		for end+1 < n {
			if _, ok := m.eos[runes[end+1]]; !ok {
				break
			}
			end++
		}
		single := end == i
		for end+1 < n {
			if _, ok := m.closing[runes[end+1]]; !ok {
				break
			}
			end++
		}
		if end+1 < n && !unicode.IsSpace(runes[end+1]) {
			i = end
			continue
		}
		if single && runes[i] == '.' && m.isAbbreviation(runes[start:i]) {
			i = end
			continue
		}
		if s := strings.TrimSpace(string(runes[start : end+1])); s != "" {
			out = append(out, s)
		}
		start = end + 1
		i = end
	}
	if start < n {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// isAbbreviation reports whether the word ending the span is a known
// abbreviation or, when enabled, a single capital initial.
func (m *sentenceModel) isAbbreviation(span []rune) bool {
	j := len(span)
	for j > 0 && !unicode.IsSpace(span[j-1]) {
		j--
	}
	word := strings.TrimLeftFunc(string(span[j:]), func(r rune) bool {
		return unicode.IsPunct(r) && r != '.'
	})
	if word == "" {
		return false
	}
	if _, ok := m.abbrev[strings.ToLower(word)]; ok {
		return true
	}
	if m.Initials {
		r := []rune(word)
		return len(r) == 1 && unicode.IsUpper(r[0])
	}
	return false
}
