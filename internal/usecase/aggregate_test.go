package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"faq-bot/internal/domain"
)

func lookupFrom(m map[string]string) AnswerLookup {
	return func(c string) (string, bool) {
		a, ok := m[c]
		return a, ok
	}
}

func results(categories ...string) []domain.ClassificationResult {
	out := make([]domain.ClassificationResult, len(categories))
	for i, c := range categories {
		out[i] = domain.ClassificationResult{Category: c}
	}
	return out
}

func TestAggregate(t *testing.T) {
	answers := lookupFrom(map[string]string{
		"greeting":              "Hi there!",
		"farewell":              "Goodbye!",
		"conversation-complete": "See you!",
	})

	cases := []struct {
		name       string
		categories []string
		want       domain.ChatResponse
	}{
		{"empty", nil, domain.ChatResponse{}},
		{"single", []string{"greeting"}, domain.ChatResponse{Answer: " Hi there!"}},
		{"order kept", []string{"farewell", "greeting"}, domain.ChatResponse{Answer: " Goodbye! Hi there!"}},
		{"terminal", []string{"greeting", "conversation-complete"}, domain.ChatResponse{Answer: " Hi there! See you!", ConversationComplete: true}},
		{"complete stays set", []string{"conversation-complete", "greeting"}, domain.ChatResponse{Answer: " See you! Hi there!", ConversationComplete: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, unmapped := Aggregate(results(tc.categories...), answers, DefaultTerminalCategory, "")
			require.Equal(t, tc.want, got)
			require.Empty(t, unmapped)
		})
	}
}

func TestAggregate_Unmapped(t *testing.T) {
	answers := lookupFrom(map[string]string{"greeting": "Hi there!"})

	got, unmapped := Aggregate(results("greeting", "mystery"), answers, DefaultTerminalCategory, "")
	require.Equal(t, " Hi there! ", got.Answer)
	require.Len(t, unmapped, 1)
	require.Equal(t, "mystery", unmapped[0].Category)
	require.Equal(t, 2, unmapped[0].Sentence)
	require.EqualError(t, unmapped[0], `usecase: category "mystery" of sentence 2 has no answer`)

	got, _ = Aggregate(results("mystery"), answers, DefaultTerminalCategory, "Could you rephrase?")
	require.Equal(t, " Could you rephrase?", got.Answer)
}

func TestAggregate_TerminalWithoutAnswer(t *testing.T) {
	got, unmapped := Aggregate(results("conversation-complete"), lookupFrom(nil), DefaultTerminalCategory, "")
	require.True(t, got.ConversationComplete)
	require.Len(t, unmapped, 1)
}
