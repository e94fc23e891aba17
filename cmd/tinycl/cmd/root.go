package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	peg "github.com/clarete/tinypeg"
	"github.com/clarete/tinypeg/tinycl"
	"github.com/clarete/tinypeg/tinycl/interp"
)

// app holds what every command needs once the persistent flags are
// read
type app struct {
	cfgFile string
	verbose bool

	cfg    *peg.Config
	logger *slog.Logger
}

// setup loads the configuration file and builds the logger.  Debug
// messages only show up with --verbose.
func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	a.cfg = peg.NewConfig()
	if a.cfgFile != "" {
		if err := a.cfg.LoadTOMLFile(a.cfgFile); err != nil {
			return errors.Wrap(err, "can't load config")
		}
		a.logger.Debug("config loaded", "path", a.cfgFile)
	}
	return nil
}

func (a *app) parser() (*tinycl.Parser, error) {
	return tinycl.NewParser(a.cfg, a.logger)
}

func (a *app) interpreter(out io.Writer) *interp.Interpreter {
	return interp.New(out,
		interp.WithLogger(a.logger),
		interp.WithMaxDepth(a.cfg.GetInt("interp.max_depth")))
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "tinycl",
		Short: "TinyCL, a tiny language on top of a PEG engine",
		Long: `tinycl parses and runs TinyCL programs.

It can also match any input against a grammar written in PEG
notation, generate the Go code that builds such grammar and
translate programs into other languages.

Commands:
  run     - run a program
  ast     - print the syntax tree of a program
  match   - match an input against a grammar file
  gen     - generate Go code from a grammar file
  compile - translate a program into python or C
  repl    - read and run statements interactively`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "TOML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output")

	root.AddCommand(
		newRunCmd(a),
		newASTCmd(a),
		newMatchCmd(a),
		newGenCmd(a),
		newCompileCmd(a),
		newReplCmd(a),
	)
	return root
}

// Execute runs the command line and reports errors on stderr
func Execute() error {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), err)
		return err
	}
	return nil
}

// readSource reads the file at `path`, or the standard input when
// `path` is `-`
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(err, "can't read standard input")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "can't read %s", path)
	}
	return string(data), nil
}
