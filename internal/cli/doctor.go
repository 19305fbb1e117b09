package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rvoicu/scribe/internal/diagnostics"
	"github.com/rvoicu/scribe/internal/platform"
	"github.com/spf13/cobra"
)

func newDoctorCmd(app *appState) *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, model storage and manifest health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			modelDir, err := platform.ResolveModelDir(firstNonEmpty(app.modelDir, app.cfg.ModelDir))
			if err != nil {
				return err
			}

			outputDir, err := platform.ResolveTranscriptDir(app.cfg.OutputDir)
			if err != nil {
				return err
			}

			if manifestPath == "" {
				// Pick up a requirements file sitting next to the invocation.
				if _, statErr := os.Stat("requirements.txt"); statErr == nil {
					manifestPath = "requirements.txt"
				}
			}

			report := diagnostics.NewChecker().Run(diagnostics.Settings{
				ModelDir:     modelDir,
				OutputDir:    outputDir,
				ManifestPath: manifestPath,
			})

			out := cmd.OutOrStdout()
			for _, item := range report.Items {
				fmt.Fprintf(out, "[%s] %s: %s\n", strings.ToUpper(string(item.Status)), item.Name, item.Message)
				if item.Hint != "" && item.Status != diagnostics.StatusPass {
					fmt.Fprintf(out, "       hint: %s\n", item.Hint)
				}
			}

			if report.HasFailures {
				return errors.New("environment checks failed")
			}

			fmt.Fprintln(out, "All checks passed.")
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindModelFlags(cmd, app)
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Requirements manifest to validate (default: ./requirements.txt when present)")

	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
