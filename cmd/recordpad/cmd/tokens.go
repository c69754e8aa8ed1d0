package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	"github.com/msto63/recordpad/internal/analyzer/report"
)

var tokensJSON bool

var tokensCmd = &cobra.Command{
	Use:   "tokens FILE",
	Short: "Show the token table of a file",
	Long: `Lists every token with its numeric code, kind, text, line and
character range. Use "-" to read from stdin.

Examples:
  recordpad tokens shapes.rec
  recordpad tokens --json shapes.rec`,
	Args: cobra.ExactArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().BoolVar(&tokensJSON, "json", false, "output JSON")
}

func runTokens(cmd *cobra.Command, args []string) error {
	content, err := readInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	svc, err := newService(false)
	if err != nil {
		return err
	}
	rows, err := svc.Tokens(content, appConfig.Locale)
	if err != nil {
		return err
	}

	if tokensJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return mdwerror.Wrap(err, "failed to write tokens").
				WithCode(mdwerror.CodeIOError).
				WithOperation("cmd.tokens")
		}
		return nil
	}

	tr, err := svc.Translator(appConfig.Locale)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.RenderTokens(rows, tr))
	return nil
}
