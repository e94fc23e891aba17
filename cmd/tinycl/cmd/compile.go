package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/clarete/tinypeg/tinycl/gen"
)

func newCompileCmd(a *app) *cobra.Command {
	var (
		target     string
		outputPath string
	)
	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Translate a TinyCL program into another language",
		Long: fmt.Sprintf(`Parses the program in <file> and writes its translation to
another language.  Use - to read the program from the standard input.

Targets: %s

Examples:
  tinycl compile examples/fact.tcl > fact.py
  tinycl compile -t c -o fact.c examples/fact.tcl`, strings.Join(gen.Targets(), ", ")),
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

			out, err := gen.Compile(program, target)
			if err != nil {
				return withSource(path, src, err)
			}
			if outputPath == "" {
				_, err = cmd.OutOrStdout().Write([]byte(out))
				return err
			}
			if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
				return errors.Wrap(err, "can't write output")
			}
			a.logger.Debug("program compiled", "path", path, "target", target, "output", outputPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "python", "Language to translate the program to")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to the output file, stdout if empty")
	return cmd
}
