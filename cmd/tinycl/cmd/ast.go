package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	peg "github.com/clarete/tinypeg"
	"github.com/clarete/tinypeg/tinycl"
)

func newASTCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "ast <file>",
		Short: "Print the syntax tree of a TinyCL program",
		Long: `Parses the program in <file> and prints its syntax tree.

Formats:
  text  - one statement per line in constructor form
  yaml  - the whole tree as a YAML document
  match - the untyped match tree produced by the PEG engine`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			src, err := readSource(cmd, path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if format == "match" {
				m, err := peg.MatcherFromGrammar(tinycl.Grammar(), a.cfg)
				if err != nil {
					return err
				}
				m.SetLogger(a.logger)
				value, _, err := m.Match(src)
				if err != nil {
					return withSource(path, src, err)
				}
				fmt.Fprintln(out, peg.Highlight(value, highlight))
				return nil
			}

			p, err := a.parser()
			if err != nil {
				return err
			}
			program, err := p.Parse(src)
			if err != nil {
				return withSource(path, src, err)
			}

			switch format {
			case "text":
				for _, stmt := range program.Statements {
					fmt.Fprintln(out, stmt)
				}
			case "yaml":
				data, err := tinycl.MarshalYAML(program)
				if err != nil {
					return errors.Wrap(err, "can't encode tree")
				}
				_, err = out.Write(data)
				return err
			default:
				return errors.Errorf("unknown format %q", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, yaml or match")
	return cmd
}
