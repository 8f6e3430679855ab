package usecase

import (
	"errors"
	"fmt"

	"faq-bot/internal/categorizer"
	"faq-bot/internal/corpus"
	"faq-bot/internal/nlp"
)

type ErrorCode string

const (
	ErrorInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrorResourceLoad   ErrorCode = "RESOURCE_LOAD_ERROR"
	ErrorTraining       ErrorCode = "TRAINING_ERROR"
	ErrorPreprocessing  ErrorCode = "PREPROCESSING_ERROR"
	ErrorClassification ErrorCode = "CLASSIFICATION_ERROR"
	ErrorInternal       ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// UnmappedCategoryError reports a predicted category with no canned answer.
// It is logged and replaced by the fallback answer, never returned.
type UnmappedCategoryError struct {
	Category string
	Sentence int
}

func (e *UnmappedCategoryError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("usecase: category %q of sentence %d has no answer", e.Category, e.Sentence)
}

// classifyError maps a component failure onto the use case error taxonomy.
func classifyError(err error) *Error {
	var (
		ucErr    *Error
		loadErr  *corpus.LoadError
		trainErr *categorizer.TrainingError
		stageErr *nlp.StageError
		clsErr   *categorizer.ClassificationError
	)
	switch {
	case errors.As(err, &ucErr):
		return ucErr
	case errors.As(err, &loadErr):
		return newError(ErrorResourceLoad, "resource_load_error", err)
	case errors.As(err, &trainErr):
		return newError(ErrorTraining, "training_error", err)
	case errors.As(err, &stageErr):
		return newError(ErrorPreprocessing, string(stageErr.Stage)+"_stage_error", err)
	case errors.As(err, &clsErr):
		return newError(ErrorClassification, "classification_error", err)
	default:
		return newError(ErrorInternal, "internal_error", err)
	}
}
