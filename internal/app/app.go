// Package app wires the corpus store, preprocessing pipeline, categorizer and
// optional AWS adapters into an AnswerService. Both the Lambda entry point and
// the console CLI build on it.
package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"faq-bot/internal/categorizer"
	"faq-bot/internal/corpus"
	"faq-bot/internal/integrations/paramstore"
	"faq-bot/internal/nlp"
	"faq-bot/internal/repository"
	"faq-bot/internal/usecase"
	"faq-bot/resources"
)

// Config selects where resources come from and how answers are built.
// Zero values fall back to the embedded resources and default parameters.
type Config struct {
	ResourceDir      string
	ParamPrefix      string
	TranscriptTable  string
	TerminalCategory string
	FallbackAnswer   string
	Iterations       int
}

type App struct {
	Store      *corpus.Store
	Pipeline   *nlp.Pipeline
	Service    *usecase.AnswerService
	Transcript *repository.Client
}

var loadAWSConfig = func(ctx context.Context) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx)
}

// Build loads the corpus and stage resources and constructs the service. The
// model is not trained until Warm or the first Answer.
func Build(ctx context.Context, cfg Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var stageFS fs.FS = resources.FS
	if dir := strings.TrimSpace(cfg.ResourceDir); dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("app: resource dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("app: resource dir %q is not a directory", dir)
		}
		stageFS = os.DirFS(dir)
	}

	var awsCfg *aws.Config
	needAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := loadAWSConfig(ctx)
		if err != nil {
			return aws.Config{}, fmt.Errorf("app: load AWS config: %w", err)
		}
		awsCfg = &c
		return c, nil
	}

	var src corpus.Source
	if prefix := strings.TrimSpace(cfg.ParamPrefix); prefix != "" {
		c, err := needAWS()
		if err != nil {
			return nil, err
		}
		ps, err := paramstore.New(awsssm.NewFromConfig(c), prefix)
		if err != nil {
			return nil, err
		}
		src = ps
	} else {
		fsSrc, err := corpus.NewFSSource(stageFS)
		if err != nil {
			return nil, err
		}
		src = fsSrc
	}

	store, err := corpus.Load(ctx, src, corpus.DefaultNames())
	if err != nil {
		return nil, err
	}
	if untrained := store.Validate(); len(untrained) > 0 {
		logger.WarnContext(ctx, "answer categories without training examples", "categories", untrained)
	}

	pipeline, err := nlp.NewPipeline(stageFS, nlp.DefaultResources(), logger)
	if err != nil {
		return nil, err
	}

	params := categorizer.DefaultTrainingParams()
	if cfg.Iterations > 0 {
		params.Iterations = cfg.Iterations
	}

	opts := []usecase.Option{
		usecase.WithLogger(logger),
		usecase.WithTerminalCategory(cfg.TerminalCategory),
		usecase.WithFallbackAnswer(cfg.FallbackAnswer),
	}

	a := &App{Store: store, Pipeline: pipeline}
	if table := strings.TrimSpace(cfg.TranscriptTable); table != "" {
		c, err := needAWS()
		if err != nil {
			return nil, err
		}
		transcript, err := repository.New(awsdynamodb.NewFromConfig(c), table)
		if err != nil {
			return nil, err
		}
		a.Transcript = transcript
		opts = append(opts, usecase.WithRecorder(transcript))
	}

	a.Service, err = usecase.NewAnswerService(store, pipeline, usecase.MaxentTrainer(params), opts...)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "faq bot configured",
		"examples", store.Len(),
		"categories", len(store.Categories()),
		"remote_corpus", cfg.ParamPrefix != "",
		"transcript", a.Transcript != nil,
		"iterations", params.Iterations,
	)
	return a, nil
}
