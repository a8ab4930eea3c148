package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"llvmls/internal/source"
	"llvmls/internal/symbols"
)

var symbolsFormat string

func init() {
	symbolsCmd.Flags().StringVar(&symbolsFormat, "format", "pretty", "output format (pretty|json|yaml)")
}

var symbolsCmd = &cobra.Command{
	Use:   "symbols <file.ll>",
	Short: "Dump the symbol tables and folding regions of one file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(symbolsFormat)
		switch format {
		case "pretty", "json", "yaml":
		default:
			return fmt.Errorf("unsupported format %q (must be pretty, json or yaml)", symbolsFormat)
		}
		_, model, err := loadModel(cmd, args[0])
		if err != nil {
			return err
		}
		return renderSymbols(cmd.OutOrStdout(), model, format)
	},
}

// loadModel reads path and indexes it through the in-process model cache.
func loadModel(cmd *cobra.Command, path string) (*source.Document, *symbols.Model, error) {
	done := track("load")
	doc, err := source.Load(path)
	if err != nil {
		done("failed")
		return nil, nil, err
	}
	done(path)

	done = track("scan")
	model := run.cache.Get(cmd.Context(), doc)
	done(fmt.Sprintf("%d lines", doc.LineCount()))
	return doc, model, nil
}

func renderSymbols(out io.Writer, m *symbols.Model, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(m.Snapshot())
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(m.Snapshot()); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintln(out, keyColor.Sprint("globals"))
	symbolTable(&m.Global).render(out)
	for _, name := range m.FunctionNames() {
		fn, _ := m.Function(name)
		span := "unterminated"
		if fn.Closed() {
			span = fmt.Sprintf("lines %d-%d", fn.LineStart+1, fn.LineEnd+1)
		}
		fmt.Fprintf(out, "\n%s %s %s\n", keyColor.Sprint("function"), name, dimColor.Sprint(span))
		symbolTable(&fn.VariableTable).render(out)
	}
	if len(m.FoldingRanges) > 0 {
		fmt.Fprintf(out, "\n%s\n", keyColor.Sprint("folding"))
		for _, f := range m.FoldingRanges {
			fmt.Fprintf(out, "  %d-%d %s\n", f.StartLine+1, f.EndLine+1, f.Kind)
		}
	}
	return nil
}

// symbolTable lists defined keys first, then keys that are only used.
func symbolTable(t *symbols.VariableTable) *table {
	tab := &table{header: []string{"KEY", "DEFINED", "REFS"}}
	for _, key := range t.Keys() {
		pos, _ := t.Definition(key)
		tab.add(key, formatPos(pos), strconv.Itoa(len(t.References(key))))
	}
	for _, key := range t.UserKeys() {
		if _, ok := t.Definition(key); ok {
			continue
		}
		tab.add(key, "-", strconv.Itoa(len(t.References(key))))
	}
	return tab
}
