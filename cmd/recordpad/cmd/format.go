package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	mdwlog "github.com/msto63/recordpad/foundation/core/log"
)

var formatWrite bool

var formatCmd = &cobra.Command{
	Use:   "format FILE",
	Short: "Print the canonical layout of a file",
	Long: `Prints a valid file in canonical layout: lower-case keywords and
types, one field group per line, two-space indent. Invalid files are
left untouched and the first error is reported.

Examples:
  recordpad format shapes.rec
  recordpad format -w shapes.rec`,
	Args: cobra.ExactArgs(1),
	RunE: runFormat,
}

func init() {
	rootCmd.AddCommand(formatCmd)
	formatCmd.Flags().BoolVarP(&formatWrite, "write", "w", false, "write the result back to the file")
}

func runFormat(cmd *cobra.Command, args []string) error {
	path := args[0]
	content, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	svc, err := newService(false)
	if err != nil {
		return err
	}
	formatted, err := svc.Format(content)
	if err != nil {
		return err
	}

	if !formatWrite || path == "-" {
		fmt.Fprint(cmd.OutOrStdout(), formatted)
		return nil
	}
	if formatted == content {
		return nil
	}
	if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
		return mdwerror.Wrap(err, "failed to write file").
			WithCode(mdwerror.CodeIOError).
			WithOperation("cmd.format").
			WithDetail("path", path)
	}
	logger.Info("File formatted", mdwlog.Fields{"path": path})
	return nil
}
