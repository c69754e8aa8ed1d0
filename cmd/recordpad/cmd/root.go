package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	mdwlog "github.com/msto63/recordpad/foundation/core/log"
	"github.com/msto63/recordpad/internal/analyzer/service"
	"github.com/msto63/recordpad/internal/config"
	"github.com/msto63/recordpad/internal/history/store"
)

var (
	cfgFile string
	locale  string
	verbose bool

	appConfig *config.AppConfig
	logger    *mdwlog.Logger
)

// errCheckFailed signals a reported syntax error; it is not printed again
var errCheckFailed = mdwerror.New("check failed").WithCode(mdwerror.CodeSyntax)

var rootCmd = &cobra.Command{
	Use:   "recordpad",
	Short: "recordpad - record definition workbench",
	Long: `recordpad checks record type definitions of the form

  type Point = record
    x, y: integer;
  end;

Field types are integer, real, string, boolean and char. Keywords are
case-insensitive. Errors are reported with line and column.

Commands:
  check    - check files and report errors
  tokens   - show the token table of a file
  format   - print the canonical layout of a file
  edit     - open the terminal editor
  serve    - start the HTTP/WebSocket server
  history  - list or prune recorded analyses`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errCheckFailed) {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./recordpad.toml or $RECORDPAD_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&locale, "locale", "l", "", "message locale, e.g. en or ru")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads the configuration and builds the logger for every command
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if locale != "" {
		cfg.Locale = locale
	}
	if verbose {
		cfg.Log.Level = mdwlog.LevelDebug.String()
	}

	appConfig = cfg
	logger = cfg.Logger("recordpad")
	mdwlog.SetDefault(logger)

	if src := cfg.Source(); src != "" {
		logger.Debug("Configuration loaded", mdwlog.Fields{"path": src})
	}
	return nil
}

// newService builds the analysis service, opening the history store when
// history is enabled
func newService(withHistory bool) (*service.Service, error) {
	var st store.Store
	if withHistory && appConfig.History.Enabled {
		sqlite, err := store.NewSQLiteStore(store.SQLiteConfig{Path: appConfig.History.Path})
		if err != nil {
			// History is optional for every command but `history`
			logger.WarnWithErr("History disabled", err)
		} else {
			st = sqlite
		}
	}

	return service.New(service.Config{
		Locale:    appConfig.Locale,
		MaxTokens: appConfig.Parser.MaxTokens,
	}, st, logger)
}

func printError(err error) {
	var coded *mdwerror.Error
	if errors.As(err, &coded) {
		fmt.Fprintf(os.Stderr, "Error: %s [%s]\n", coded.Error(), coded.Code())
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// readInput returns the content of path, or stdin for "-"
func readInput(path string, stdin io.Reader) (string, error) {
	if path != "-" {
		return service.ReadSource(path)
	}
	data, err := io.ReadAll(io.LimitReader(stdin, service.MaxSourceBytes+1))
	if err != nil {
		return "", mdwerror.Wrap(err, "failed to read stdin").
			WithCode(mdwerror.CodeIOError).
			WithOperation("cmd.readInput")
	}
	return string(data), nil
}
