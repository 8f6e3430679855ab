package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"faq-bot/internal/app"
)

const envPrefix = "FAQBOT"

type settings struct {
	Resources        string `mapstructure:"resources"`
	ParamPrefix      string `mapstructure:"param-prefix"`
	TranscriptTable  string `mapstructure:"transcript-table"`
	TerminalCategory string `mapstructure:"terminal-category"`
	FallbackAnswer   string `mapstructure:"fallback-answer"`
	Iterations       int    `mapstructure:"iterations"`
	Debug            bool   `mapstructure:"debug"`
}

// runtime carries the bound configuration to every subcommand.
type runtime struct {
	v *viper.Viper
}

func NewRootCommand() *cobra.Command {
	rootCmd, _ := newRootCommand()
	return rootCmd
}

func newRootCommand() (*cobra.Command, *runtime) {
	rootCmd := &cobra.Command{
		Use:   "faqctl",
		Short: "FAQ bot console",
		Long: `faqctl answers FAQ questions locally with the same corpus, preprocessing
pipeline and categorizer the Lambda uses.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("resources", "", "Directory holding corpus, answers and stage resources (default: embedded)")
	flags.String("param-prefix", "", "Read corpus and answers from SSM parameters under this prefix")
	flags.String("transcript-table", "", "DynamoDB table recording answered exchanges")
	flags.String("terminal-category", "", "Category that ends the conversation (default: conversation-complete)")
	flags.String("fallback-answer", "", "Answer used for categories without a canned answer")
	flags.Int("iterations", 0, "Training iterations (default: 100)")
	flags.Bool("debug", false, "Enable debug logging")

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rt := &runtime{v: v}
	rootCmd.AddCommand(NewAskCommand(rt))
	rootCmd.AddCommand(NewChatCommand(rt))
	rootCmd.AddCommand(NewEvalCommand(rt))
	rootCmd.AddCommand(NewExchangeCommand(rt))

	return rootCmd, rt
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (r *runtime) settings() (settings, error) {
	var s settings
	if err := r.v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("cli: read settings: %w", err)
	}
	return s, nil
}

// load builds the application and trains the model.
func (r *runtime) load(cmd *cobra.Command) (*app.App, error) {
	s, err := r.settings()
	if err != nil {
		return nil, err
	}
	level := slog.LevelWarn
	if s.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	ctx := commandContext(cmd)
	a, err := app.Build(ctx, app.Config{
		ResourceDir:      s.Resources,
		ParamPrefix:      s.ParamPrefix,
		TranscriptTable:  s.TranscriptTable,
		TerminalCategory: s.TerminalCategory,
		FallbackAnswer:   s.FallbackAnswer,
		Iterations:       s.Iterations,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := a.Service.Warm(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
