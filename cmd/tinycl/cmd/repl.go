package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clarete/tinypeg/tinycl/interp"
)

const replSource = "<repl>"

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Read and run TinyCL statements interactively",
		Long: `Reads one line at a time and runs it.  Declarations are kept
between lines.  A line holding a single expression prints its value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.parser()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			i := a.interpreter(out)
			scanner := bufio.NewScanner(cmd.InOrStdin())

			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				program, err := p.Parse(line)
				if err != nil {
					// a lone expression isn't a statement
					expr, exprErr := p.ParseExpression(line)
					if exprErr != nil {
						printError(cmd.ErrOrStderr(), withSource(replSource, line, err))
						continue
					}
					v, err := i.Eval(expr)
					if err != nil {
						printError(cmd.ErrOrStderr(), withSource(replSource, line, err))
						continue
					}
					fmt.Fprintln(out, interp.Format(v))
					continue
				}
				if err := i.Run(program); err != nil {
					printError(cmd.ErrOrStderr(), withSource(replSource, line, err))
				}
			}
		},
	}
}
