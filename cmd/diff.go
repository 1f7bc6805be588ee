package cmd

import (
	"fmt"

	"blazehammer/internal/config"
	"blazehammer/internal/diff"
	"blazehammer/internal/placeholder"
	"blazehammer/internal/tui/styles"

	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	var width int

	diffCmd := &cobra.Command{
		Use:   "diff FILE...",
		Short: "Show how placeholders in JSON documents expand, without sending requests",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rejected []string
			engine := placeholder.NewEngine(placeholder.WithErrorHook(func(tok placeholder.Token, err error) {
				rejected = append(rejected, fmt.Sprintf("{%s}: %v", tok.Raw, err))
			}))
			out := cmd.OutOrStdout()

			failed := 0
			for _, file := range args {
				before, err := config.LoadDocument(file)
				if err != nil {
					fmt.Fprintln(out, styles.Error.Render(err.Error()))
					failed++

					continue
				}

				rejected = rejected[:0]

				entries := diff.Compare(before, engine.Expand(before))
				fmt.Fprintln(out, diff.Render(file, entries, width))

				if len(rejected) > 0 {
					fmt.Fprintln(out, styles.Warn.Render("Generator errors:"))
					for _, r := range rejected {
						fmt.Fprintf(out, " - %s\n", r)
					}
				}

				fmt.Fprintf(out, "%s %d of %d keys changed\n\n",
					styles.Subtle.Render("Summary:"), diff.Changed(entries), len(entries))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be compared", failed, len(args))
			}

			return nil
		},
	}

	diffCmd.Flags().IntVarP(&width, "width", "w", 0, "Table width (0 fits the content)")

	return diffCmd
}
