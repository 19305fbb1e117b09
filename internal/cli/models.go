package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/rvoicu/scribe/internal/whisper"
	"github.com/spf13/cobra"
)

func newModelsCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List available speech models and their download state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			modelDir, err := app.modelStorageDir()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tSTATUS\tNOTES")

			autoSelected := whisper.DefaultModelFor(app.language)
			for _, name := range whisper.ModelNames() {
				model, _ := whisper.LookupModel(name)

				status := "missing"
				if _, err := os.Stat(filepath.Join(modelDir, model.FileName)); err == nil {
					status = "downloaded"
				}

				notes := model.Notes
				if name == autoSelected {
					notes += " (auto-selected for --language " + app.language + ")"
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", model.Name, model.SizeLabel, status, notes)
			}

			return w.Flush()
		},
	}

	bindLoggingFlags(cmd, app)
	bindModelFlags(cmd, app)
	cmd.Flags().StringVar(&app.language, "language", app.language, "Language code used for the auto-selection hint")

	return cmd
}
