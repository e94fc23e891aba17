package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	peg "github.com/clarete/tinypeg"
	"github.com/clarete/tinypeg/tinycl"
	"github.com/clarete/tinypeg/tinycl/gen"
	"github.com/clarete/tinypeg/tinycl/interp"
)

var (
	colorError = lipgloss.Color("#EF4444")
	colorMuted = lipgloss.Color("#6B7280")
	colorMark  = lipgloss.Color("#F59E0B")
	colorToken = lipgloss.Color("#10B981")
	colorOp    = lipgloss.Color("#06B6D4")

	styleError = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleMuted = lipgloss.NewStyle().Foreground(colorMuted)
	styleMark  = lipgloss.NewStyle().Foreground(colorMark).Bold(true)
	styleToken = lipgloss.NewStyle().Foreground(colorToken)
	styleOp    = lipgloss.NewStyle().Foreground(colorOp)
)

// highlight is the tinypeg.FormatFunc used to print match trees
func highlight(input string, token peg.FormatToken) string {
	switch token {
	case peg.FormatToken_Range:
		return styleMuted.Render(input)
	case peg.FormatToken_Literal:
		return styleToken.Render(input)
	case peg.FormatToken_Operator:
		return styleOp.Render(input)
	default:
		return input
	}
}

// sourceError keeps the text an error refers to, so it can be quoted
// when the error is reported
type sourceError struct {
	path string
	src  string
	err  error
}

func (e *sourceError) Error() string { return e.err.Error() }
func (e *sourceError) Unwrap() error { return e.err }

func withSource(path, src string, err error) error {
	if err == nil {
		return nil
	}
	return &sourceError{path: path, src: src, err: err}
}

// printError writes `err` to `w`, pointing at the place in the source
// text where it happened when that's known
func printError(w io.Writer, err error) {
	var serr *sourceError
	if !errors.As(err, &serr) {
		fmt.Fprintf(w, "%s %s\n", styleError.Render("error:"), err)
		return
	}

	var (
		perr *peg.ParsingError
		rerr *tinycl.ReconstructionError
		xerr *interp.RuntimeError
		gerr *gen.Error
	)
	switch {
	case errors.As(err, &perr):
		report(w, serr, perr.Location, perr.Message())
		if len(perr.Rules) > 0 {
			fmt.Fprintf(w, "  %s %s\n", styleMuted.Render("while matching"), strings.Join(perr.Rules, " > "))
		}
		if f := perr.Farthest; f != nil {
			fmt.Fprintf(w, "%s\n", styleMuted.Render("farthest failure:"))
			report(w, serr, f.Location, f.Message())
			if len(f.Rules) > 0 {
				fmt.Fprintf(w, "  %s %s\n", styleMuted.Render("while matching"), strings.Join(f.Rules, " > "))
			}
		}
	case errors.As(err, &rerr):
		report(w, serr, rerr.Location, fmt.Sprintf("can't build %s: %s", rerr.Level, rerr.Message))
	case errors.As(err, &xerr):
		report(w, serr, peg.LocationAt(serr.src, xerr.Range.Start), xerr.Error())
	case errors.As(err, &gerr):
		report(w, serr, peg.LocationAt(serr.src, gerr.Range.Start), gerr.Error())
	default:
		fmt.Fprintf(w, "%s %s\n", styleError.Render("error:"), err)
	}
}

// report prints `msg`, where it happened and the line of source text
// with a mark under the column
func report(w io.Writer, serr *sourceError, loc peg.Location, msg string) {
	fmt.Fprintf(w, "%s %s\n", styleError.Render("error:"), msg)
	fmt.Fprintf(w, "  %s %s:%s\n", styleMuted.Render("-->"), serr.path, loc)

	lines := strings.Split(serr.src, "\n")
	if loc.Line < 1 || loc.Line > len(lines) {
		return
	}
	line := lines[loc.Line-1]
	gutter := fmt.Sprintf("%d | ", loc.Line)
	fmt.Fprintf(w, "  %s%s\n", styleMuted.Render(gutter), line)
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", len(gutter)+loc.Column-1), styleMark.Render("^"))
}
