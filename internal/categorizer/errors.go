package categorizer

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCorpus    = errors.New("corpus is empty")
	ErrNoLabels       = errors.New("corpus contains no labels")
	ErrNoFeatures     = errors.New("corpus produced no features")
	ErrInvalidParams  = errors.New("invalid training parameters")
	ErrNilModel       = errors.New("model is nil")
	ErrMalformedModel = errors.New("model is malformed")
)

// TrainingError reports that a model could not be built from a corpus.
type TrainingError struct {
	Err error
}

func (e *TrainingError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("categorizer: training: %v", e.Err)
}

func (e *TrainingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ClassificationError reports that a model could not score an input.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("categorizer: classification: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
