package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/zulandar/evodex/internal/dex"
	"github.com/zulandar/evodex/internal/lineage"
)

// formatCount formats an integer with comma separators (e.g. 1032 -> "1,032").
func formatCount(n int64) string {
	if n < 0 {
		return "-" + formatCount(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		b.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func printDetail(out io.Writer, d *dex.Detail) {
	r := d.Record
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", r.ID)
	fmt.Fprintf(w, "Name:\t%s\n", r.Name)
	fmt.Fprintf(w, "Generation:\t%d\n", r.Generation)
	fmt.Fprintf(w, "Classification:\t%s\n", r.Classification)
	fmt.Fprintf(w, "Types:\t%s\n", r.Attribute)
	fmt.Fprintf(w, "Traits:\t%s\n", r.Characteristic)
	fmt.Fprintf(w, "Stats:\t%s\n", r.Status)
	if r.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", r.Description)
	}
	w.Flush()

	fmt.Fprintln(out)
	if d.Tree == nil {
		fmt.Fprintln(out, "Evolution: none")
		return
	}
	fmt.Fprintln(out, "Evolution:")
	writeTree(out, d.Tree, 1)
}

// writeTree prints one node per line, children indented under their parent,
// with the inbound condition in brackets.
func writeTree(out io.Writer, n *lineage.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if depth == 1 {
		fmt.Fprintf(out, "%s%d %s\n", indent, n.Record.ID, n.Record.Name)
	} else {
		fmt.Fprintf(out, "%s-> %d %s [%s]\n", indent, n.Record.ID, n.Record.Name, n.Conditions)
	}
	for _, c := range n.EvolvesTo {
		writeTree(out, c, depth+1)
	}
}
