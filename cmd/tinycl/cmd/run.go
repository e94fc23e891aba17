package cmd

import (
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Run a TinyCL program",
		Long: `Parses the program in <file> and runs it.  Use - to read the
program from the standard input.

Examples:
  tinycl run examples/fact.tcl
  echo 'print(1 + 2);' | tinycl run -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			src, err := readSource(cmd, path)
			if err != nil {
				return err
			}
			p, err := a.parser()
			if err != nil {
				return err
			}
			program, err := p.Parse(src)
			if err != nil {
				return withSource(path, src, err)
			}
			a.logger.Debug("program parsed", "path", path, "statements", len(program.Statements))

			return withSource(path, src, a.interpreter(cmd.OutOrStdout()).Run(program))
		},
	}
}
