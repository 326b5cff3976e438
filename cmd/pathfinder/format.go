package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/persistorai/pathfinder/client"
)

var stdout io.Writer = os.Stdout

func formatJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func formatTable(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Fprintln(stdout, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)
	seps := make([]string, len(headers))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	printRow(seps)
	for _, row := range rows {
		printRow(row)
	}
}

// keyString renders a document key for table and quiet output.
func keyString(doc client.Document, keyField string) string {
	switch v := doc[keyField].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// pathRows lists one row per hop: depth, key and the weight of the edge into it.
func pathRows(p *client.Path, keyField string) [][]string {
	rows := make([][]string, 0, len(p.Nodes))
	for i, n := range p.Nodes {
		weight := ""
		if i > 0 && i-1 < len(p.EdgeWeights) {
			weight = strconv.FormatFloat(p.EdgeWeights[i-1], 'f', -1, 64)
		}
		rows = append(rows, []string{strconv.Itoa(i), keyString(n, keyField), weight})
	}
	return rows
}

// outputPath prints p in the selected format. quiet prints the keys joined by " -> ".
func outputPath(p *client.Path, keyField string) error {
	switch flagFmt {
	case "quiet":
		keys := make([]string, 0, len(p.Nodes))
		for _, n := range p.Nodes {
			keys = append(keys, keyString(n, keyField))
		}
		fmt.Fprintln(stdout, strings.Join(keys, " -> "))
		return nil
	case "table":
		if !p.Found {
			fmt.Fprintln(stdout, "no path found")
			return nil
		}
		formatTable([]string{"DEPTH", "KEY", "WEIGHT"}, pathRows(p, keyField))
		if p.TotalWeight != nil {
			fmt.Fprintf(stdout, "total weight: %s\n", strconv.FormatFloat(*p.TotalWeight, 'f', -1, 64))
		}
		return nil
	default:
		return formatJSON(p)
	}
}

func output(v any, quietVal string) error {
	if flagFmt == "quiet" {
		fmt.Fprintln(stdout, quietVal)
		return nil
	}
	return formatJSON(v)
}
