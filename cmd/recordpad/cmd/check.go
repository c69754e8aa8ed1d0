package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/msto63/recordpad/foundation/core/i18n"
	"github.com/msto63/recordpad/internal/analyzer/report"
	"github.com/msto63/recordpad/internal/analyzer/service"
)

var (
	checkFormat    string
	checkTokens    bool
	checkNoHistory bool
)

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Check record definitions",
	Long: `Checks one or more files and reports syntax errors with line and
column. Use "-" to read from stdin. Exits with status 1 if any file
contains errors. With several files, json output is one array and yaml
output one document per file.

Examples:
  recordpad check shapes.rec
  recordpad check --format json a.rec b.rec
  recordpad check --locale ru --tokens shapes.rec
  cat shapes.rec | recordpad check -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "table", "output format (table, json, yaml, toml)")
	checkCmd.Flags().BoolVarP(&checkTokens, "tokens", "t", false, "include the token table")
	checkCmd.Flags().BoolVar(&checkNoHistory, "no-history", false, "do not record the analysis")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(checkFormat)
	if err != nil {
		return err
	}

	svc, err := newService(!checkNoHistory)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()
	failed := false
	var (
		docs []*report.Document
		tr   *i18n.Manager
	)
	for _, path := range args {
		content, err := readInput(path, cmd.InOrStdin())
		if err != nil {
			return err
		}
		name := path
		if path == "-" {
			name = "<stdin>"
		}

		analysis, err := svc.Analyze(ctx, service.Request{
			Name:      name,
			Content:   content,
			Tokens:    checkTokens,
			NoHistory: checkNoHistory,
			Origin:    "cli",
		})
		if err != nil {
			return err
		}
		docs = append(docs, analysis.Document)
		tr = analysis.Translator
		if !analysis.Report.Success() {
			failed = true
		}
	}

	if err := report.WriteAll(cmd.OutOrStdout(), docs, format, tr); err != nil {
		return err
	}

	if failed {
		return errCheckFailed
	}
	return nil
}
