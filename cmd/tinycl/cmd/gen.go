package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	peg "github.com/clarete/tinypeg"
	"github.com/clarete/tinypeg/pegfile"
	"github.com/clarete/tinypeg/tinycl"
)

func newGenCmd(a *app) *cobra.Command {
	var (
		grammarPath string
		outputPath  string
		opts        pegfile.GenGoOptions
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate Go code that builds a grammar",
		Long: `Loads a grammar in PEG notation and writes the Go source of a
function that builds it with the tinypeg constructors.  Without
--grammar, the TinyCL grammar is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				g   *peg.Grammar
				err error
			)
			if grammarPath == "" {
				g, err = pegfile.Load("TinyCL", tinycl.Notation())
			} else {
				g, err = pegfile.LoadFile(grammarPath)
			}
			if err != nil {
				return err
			}
			if a.cfg.GetBool("grammar.validate") {
				if err := g.Validate(); err != nil {
					return err
				}
			}

			src, err := pegfile.GenGo(g, opts)
			if err != nil {
				return err
			}
			if outputPath == "" {
				_, err = cmd.OutOrStdout().Write([]byte(src))
				return err
			}
			if err := os.WriteFile(outputPath, []byte(src), 0o644); err != nil {
				return errors.Wrap(err, "can't write output")
			}
			a.logger.Debug("grammar generated", "path", outputPath, "rules", len(g.Rules()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&grammarPath, "grammar", "g", "", "Path to the grammar file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to the output file, stdout if empty")
	cmd.Flags().StringVar(&opts.PackageName, "package", "grammar", "Name of the go package in the generated code")
	cmd.Flags().StringVar(&opts.FuncName, "func", "Grammar", "Name of the function that returns the grammar")
	return cmd
}
