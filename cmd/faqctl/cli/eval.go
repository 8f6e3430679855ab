package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"faq-bot/internal/usecase"
)

type categoryStats struct {
	total    int
	correct  int
	confused map[string]int
}

func NewEvalCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "eval",
		Short: "Re-classify the training corpus and report accuracy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, rt)
		},
	}
}

func runEval(cmd *cobra.Command, rt *runtime) error {
	a, err := rt.load(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	stats := make(map[string]*categoryStats)
	correct, total := 0, 0
	for _, ex := range a.Store.Examples() {
		out, err := a.Service.Answer(ctx, usecase.AnswerInput{Question: ex.Text})
		if err != nil {
			return err
		}
		predicted := ""
		if len(out.Sentences) > 0 {
			predicted = out.Sentences[0].Result.Category
		}

		st, ok := stats[ex.Label]
		if !ok {
			st = &categoryStats{confused: make(map[string]int)}
			stats[ex.Label] = st
		}
		st.total++
		total++
		if predicted == ex.Label {
			st.correct++
			correct++
		} else {
			st.confused[predicted]++
		}
	}

	labels := make([]string, 0, len(stats))
	for l := range stats {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tCORRECT\tTOTAL\tCONFUSED WITH")
	for _, l := range labels {
		st := stats[l]
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", l, st.correct, st.total, confusion(st.confused))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "accuracy: %d/%d (%.1f%%)\n", correct, total, percent(correct, total))
	return err
}

func confusion(m map[string]int) string {
	if len(m) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s(%d)", k, m[k])
	}
	return out
}

func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return 100 * float64(n) / float64(d)
}
