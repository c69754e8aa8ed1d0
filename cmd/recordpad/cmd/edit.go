package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	mdwlog "github.com/msto63/recordpad/foundation/core/log"
	"github.com/msto63/recordpad/internal/tui/editor"
	"github.com/msto63/recordpad/internal/version"
)

var (
	editNoLive  bool
	editLogFile string
)

var editCmd = &cobra.Command{
	Use:   "edit [FILE]",
	Short: "Open the terminal editor",
	Long: `Opens a file in the terminal editor. The buffer is checked while
you type; F5 runs a full check and records it in the history.

Keys:
  F5 / Ctrl+R  check
  Ctrl+S       save
  Ctrl+F       canonical layout
  Ctrl+T       toggle token table
  Esc          switch to the error list, Enter jumps to the error
  Ctrl+C       quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().BoolVar(&editNoLive, "no-live", false, "check only on F5")
	editCmd.Flags().StringVar(&editLogFile, "log-file", "", "append logs to this file while the editor runs")
}

func runEdit(cmd *cobra.Command, args []string) error {
	// the terminal belongs to the editor; logs go to a file or nowhere
	editLogger, closeLog, err := editorLogger(logger, editLogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	logger = editLogger
	mdwlog.SetDefault(logger)

	svc, err := newService(true)
	if err != nil {
		return err
	}
	defer svc.Close()

	cfg := editor.DefaultConfig()
	if len(args) == 1 {
		cfg.Path = args[0]
	}
	cfg.Locale = appConfig.Locale
	cfg.TabWidth = appConfig.Editor.TabWidth
	cfg.Version = version.Version
	if editNoLive {
		cfg.Debounce = 0
	}

	return editor.Run(cfg, svc)
}

func editorLogger(base *mdwlog.Logger, path string) (*mdwlog.Logger, func() error, error) {
	if path == "" {
		return base.WithOutput(io.Discard), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, mdwerror.Wrap(err, "failed to open log file").
			WithCode(mdwerror.CodeIOError).
			WithOperation("cmd.edit").
			WithDetail("path", path)
	}
	return base.WithOutput(f), f.Close, nil
}
