package nlp

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stage names one step of the preprocessing pipeline.
type Stage string

const (
	StageSentence  Stage = "sentence"
	StageTokenize  Stage = "tokenizer"
	StagePOS       Stage = "pos"
	StageLemmatize Stage = "lemmatizer"
)

// StageError reports a failure to load or apply a stage resource.
type StageError struct {
	Stage    Stage
	Resource string
	Err      error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("nlp: %s stage (%s): %v", e.Stage, e.Resource, e.Err)
}

func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// header is the common prefix of every stage resource document.
type header struct {
	Kind     string `yaml:"kind"`
	Language string `yaml:"language"`
}

type stageModel interface {
	validate() error
}

func (h header) checkKind(want string) error {
	if h.Kind != want {
		return fmt.Errorf("resource kind %q, want %q", h.Kind, want)
	}
	return nil
}

// useResource opens name, decodes it into m, runs apply and closes the file
// on every path. No handle outlives the call.
func useResource(fsys fs.FS, stage Stage, name string, m stageModel, apply func() error) (err error) {
	if fsys == nil {
		return &StageError{Stage: stage, Resource: name, Err: errors.New("resource file system is nil")}
	}
	f, err := fsys.Open(name)
	if err != nil {
		return &StageError{Stage: stage, Resource: name, Err: fmt.Errorf("open: %w", err)}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &StageError{Stage: stage, Resource: name, Err: fmt.Errorf("close: %w", cerr)}
		}
	}()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil {
		return &StageError{Stage: stage, Resource: name, Err: fmt.Errorf("decode: %w", err)}
	}
	if err := m.validate(); err != nil {
		return &StageError{Stage: stage, Resource: name, Err: err}
	}
	if err := apply(); err != nil {
		return &StageError{Stage: stage, Resource: name, Err: err}
	}
	return nil
}

func lowerSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		out[strings.ToLower(it)] = struct{}{}
	}
	return out
}

func runeSet(items []string) map[rune]struct{} {
	out := make(map[rune]struct{}, len(items))
	for _, it := range items {
		for _, r := range it {
			out[r] = struct{}{}
		}
	}
	return out
}
