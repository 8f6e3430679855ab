package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"faq-bot/internal/usecase"
)

type sentenceReport struct {
	Sentence string             `json:"sentence"`
	Tokens   []string           `json:"tokens"`
	Tags     []string           `json:"tags"`
	Lemmas   []string           `json:"lemmas"`
	Category string             `json:"category"`
	Scores   map[string]float64 `json:"scores"`
}

type askReport struct {
	Answer               string           `json:"answer"`
	ConversationComplete bool             `json:"conversationComplete"`
	ExchangeID           string           `json:"exchangeId,omitempty"`
	Sentences            []sentenceReport `json:"sentences,omitempty"`
}

func NewAskCommand(rt *runtime) *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, rt, strings.Join(args, " "), explain)
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "Include tokens, tags, lemmas and scores per sentence")
	return cmd
}

func runAsk(cmd *cobra.Command, rt *runtime, question string, explain bool) error {
	a, err := rt.load(cmd)
	if err != nil {
		return err
	}
	out, err := a.Service.Answer(commandContext(cmd), usecase.AnswerInput{Question: question})
	if err != nil {
		return err
	}

	report := askReport{
		Answer:               out.Response.Answer,
		ConversationComplete: out.Response.ConversationComplete,
		ExchangeID:           out.ExchangeID,
	}
	if explain {
		for _, s := range out.Sentences {
			report.Sentences = append(report.Sentences, sentenceReport{
				Sentence: s.Analysis.Sentence,
				Tokens:   s.Analysis.Tokens,
				Tags:     s.Analysis.Tags,
				Lemmas:   s.Analysis.Lemmas,
				Category: s.Result.Category,
				Scores:   s.Result.Scores,
			})
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
