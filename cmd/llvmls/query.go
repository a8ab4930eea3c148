package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"llvmls/internal/query"
	"llvmls/internal/source"
)

var queryFormat string

func init() {
	for _, c := range []*cobra.Command{definitionCmd, referencesCmd, foldingCmd} {
		c.Flags().StringVar(&queryFormat, "format", "pretty", "output format (pretty|json)")
		c.PreRunE = checkQueryFormat
	}
}

var definitionCmd = &cobra.Command{
	Use:   "definition <file.ll> <line:col>",
	Short: "Print the definition of the identifier at a 1-based position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := parsePosition(args[1])
		if err != nil {
			return err
		}
		doc, model, err := loadModel(cmd, args[0])
		if err != nil {
			return err
		}
		link, ok := query.Definition(model, doc, pos)
		if !ok {
			return fmt.Errorf("%s:%s: no definition found", args[0], args[1])
		}
		out := cmd.OutOrStdout()
		if isJSON() {
			return writeJSON(out, link)
		}
		fmt.Fprintf(out, "%s:%s: %s\n", doc.URI(), formatPos(link.Target.Start),
			strings.TrimSpace(doc.Text(link.Preview)))
		return nil
	},
}

var referencesCmd = &cobra.Command{
	Use:   "references <file.ll> <line:col>",
	Short: "List the uses of the identifier at a 1-based position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := parsePosition(args[1])
		if err != nil {
			return err
		}
		doc, model, err := loadModel(cmd, args[0])
		if err != nil {
			return err
		}
		refs := query.References(model, doc, pos)
		out := cmd.OutOrStdout()
		if isJSON() {
			return writeJSON(out, refs)
		}
		for _, r := range refs {
			fmt.Fprintf(out, "%s:%s %s\n", doc.URI(), formatRange(r), doc.Text(r))
		}
		return nil
	},
}

var foldingCmd = &cobra.Command{
	Use:   "folding <file.ll>",
	Short: "List the folding regions of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, model, err := loadModel(cmd, args[0])
		if err != nil {
			return err
		}
		folds := query.FoldingRanges(model)
		out := cmd.OutOrStdout()
		if isJSON() {
			return writeJSON(out, folds)
		}
		for _, f := range folds {
			fmt.Fprintf(out, "%d-%d %s\n", f.StartLine+1, f.EndLine+1, f.Kind)
		}
		return nil
	},
}

// parsePosition reads a 1-based "line:col" and returns the zero-based
// position. The column counts bytes.
func parsePosition(s string) (source.Position, error) {
	lineStr, colStr, ok := strings.Cut(s, ":")
	if !ok {
		return source.Position{}, fmt.Errorf("invalid position %q (want line:col)", s)
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return source.Position{}, fmt.Errorf("invalid line in %q", s)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil || col < 1 {
		return source.Position{}, fmt.Errorf("invalid column in %q", s)
	}
	return source.Position{Line: line - 1, Col: col - 1}, nil
}

func checkQueryFormat(*cobra.Command, []string) error {
	switch strings.ToLower(queryFormat) {
	case "pretty", "json":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", queryFormat)
	}
}

func isJSON() bool {
	return strings.EqualFold(queryFormat, "json")
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
