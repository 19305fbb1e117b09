package cli

import (
	"fmt"

	"github.com/rvoicu/scribe/internal/manifest"
	"github.com/spf13/cobra"
)

func newManifestCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest <file>",
		Short: "Parse and validate a pip-style requirements manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.ParseFile(args[0])
			if err != nil {
				return err
			}

			if err := m.Validate(); err != nil {
				return fmt.Errorf("validate %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			for _, req := range m.Requirements {
				fmt.Fprintln(out, req.String())
			}
			fmt.Fprintf(out, "%d requirements OK\n", len(m.Requirements))
			return nil
		},
	}

	bindLoggingFlags(cmd, app)

	return cmd
}
