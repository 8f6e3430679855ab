package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"faq-bot/internal/usecase"
)

func NewChatCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive console chat",
		Long:  `Reads one question per line and prints the answer until the conversation completes or input ends.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, rt)
		},
	}
}

func runChat(cmd *cobra.Command, rt *runtime) error {
	a, err := rt.load(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Chat initialized, ask away.")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		res, err := a.Service.Answer(ctx, usecase.AnswerInput{Question: line})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, strings.TrimSpace(res.Response.Answer))
		if res.Response.ConversationComplete {
			return nil
		}
	}
}
