package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
)

func NewExchangeCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "exchange <id>",
		Short: "Show a recorded exchange from the transcript table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.load(cmd)
			if err != nil {
				return err
			}
			if a.Transcript == nil {
				return errors.New("exchange: --transcript-table is required")
			}
			ex, err := a.Transcript.GetExchange(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ex)
		},
	}
}
