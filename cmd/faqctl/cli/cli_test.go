package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAsk(t *testing.T) {
	out, err := run(t, "", "ask", "hello.", "goodbye", "now.")
	require.NoError(t, err)

	var report askReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.True(t, report.ConversationComplete)
	require.True(t, strings.HasPrefix(report.Answer, " "))
	require.Empty(t, report.Sentences)
}

func TestAsk_Explain(t *testing.T) {
	out, err := run(t, "", "ask", "--explain", "How much does it cost?")
	require.NoError(t, err)

	var report askReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Sentences, 1)
	s := report.Sentences[0]
	require.Equal(t, []string{"How", "much", "does", "it", "cost", "?"}, s.Tokens)
	require.Equal(t, []string{"how", "much", "do", "it", "cost", "?"}, s.Lemmas)
	require.Equal(t, "price-inquiry", s.Category)
	require.Contains(t, s.Scores, "greeting")
}

func TestAsk_RequiresQuestion(t *testing.T) {
	_, err := run(t, "", "ask")
	require.Error(t, err)
}

func TestChat_StopsOnCompletion(t *testing.T) {
	out, err := run(t, "hello\n\nthanks, bye\nnever read\n", "chat")
	require.NoError(t, err)
	require.Equal(t, 3, strings.Count(out, "> "))
	require.NotContains(t, out, "never read")
}

func TestChat_StopsOnEOF(t *testing.T) {
	out, err := run(t, "hello\n", "chat")
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(out, "> "))
}

func TestEval(t *testing.T) {
	out, err := run(t, "", "eval")
	require.NoError(t, err)
	require.Contains(t, out, "CATEGORY")
	require.Contains(t, out, "price-inquiry")
	require.Contains(t, out, "accuracy: ")
}

func TestExchange_RequiresTable(t *testing.T) {
	_, err := run(t, "", "exchange", "ex-1")
	require.ErrorContains(t, err, "--transcript-table")
}

func TestSettings_FlagsAndEnv(t *testing.T) {
	t.Setenv("FAQBOT_ITERATIONS", "7")
	t.Setenv("FAQBOT_FALLBACK_ANSWER", "Sorry?")
	t.Setenv("FAQBOT_TERMINAL_CATEGORY", "ignored")

	cmd, rt := newRootCommand()
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--terminal-category", "farewell", "--debug"}))

	s, err := rt.settings()
	require.NoError(t, err)
	require.Equal(t, 7, s.Iterations)
	require.Equal(t, "Sorry?", s.FallbackAnswer)
	require.Equal(t, "farewell", s.TerminalCategory)
	require.True(t, s.Debug)
	require.Empty(t, s.Resources)
}

func TestResourcesFlag_MissingDir(t *testing.T) {
	_, err := run(t, "", "--resources", "/does/not/exist", "ask", "hello")
	require.Error(t, err)
}
