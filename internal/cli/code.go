package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"worksheet-quiz/internal/addressing"
)

// NewCodeCmd explains a worksheet code and where its file is expected.
func NewCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "code <code>",
		Short: "Decode a 6-digit worksheet code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := addressing.ParseCode(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, info.Display)
			fmt.Fprintf(out, "file: %s\n", addressing.ExpectedPath(info))
			return nil
		},
	}
}
