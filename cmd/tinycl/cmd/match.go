package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	peg "github.com/clarete/tinypeg"
	"github.com/clarete/tinypeg/pegfile"
)

func newMatchCmd(a *app) *cobra.Command {
	var (
		grammarPath string
		rule        string
	)
	cmd := &cobra.Command{
		Use:   "match --grammar <file.peg> <input>",
		Short: "Match an input against a grammar file",
		Long: `Loads the grammar in PEG notation and matches the whole <input>
file against it, printing the match tree.  Use - to read the input
from the standard input.

Examples:
  tinycl match --grammar json.peg data.json
  tinycl match --grammar tinycl.peg --rule Expression -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if grammarPath == "" {
				return errors.New("expected --grammar")
			}
			g, err := pegfile.LoadFile(grammarPath)
			if err != nil {
				return err
			}
			m, err := peg.MatcherFromGrammar(g, a.cfg)
			if err != nil {
				return err
			}
			m.SetLogger(a.logger)

			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			var value peg.Value
			if rule == "" {
				value, _, err = m.Match(src)
			} else {
				value, _, err = m.MatchRule(rule, src)
			}
			if err != nil {
				return withSource(args[0], src, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), peg.Highlight(value, highlight))
			return nil
		},
	}
	cmd.Flags().StringVarP(&grammarPath, "grammar", "g", "", "Path to the grammar file")
	cmd.Flags().StringVarP(&rule, "rule", "r", "", "Rule to start matching from instead of the first one")
	return cmd
}
