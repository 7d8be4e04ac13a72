// Package render formats routing table snapshots for humans.
package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/encodeous/dvroute/state"
)

// Unreachable is printed in place of an unknown or infinite cost.
const Unreachable = "~"

// Table renders a routing table as a bordered grid. Columns are destinations in
// ascending order, rows are reporting routers with the owner first.
func Table(owner state.NodeId, v state.Vector) string {
	dsts := slices.Sorted(maps.Keys(v))
	reporters := v.Reporters(owner)

	header := make([]string, 0, len(dsts)+1)
	header = append(header, string(owner))
	for _, dst := range dsts {
		header = append(header, string(dst))
	}
	rows := make([][]string, 0, len(reporters))
	for _, rep := range reporters {
		row := make([]string, 0, len(dsts)+1)
		row = append(row, string(rep))
		for _, dst := range dsts {
			row = append(row, cell(v, dst, rep))
		}
		rows = append(rows, row)
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], len(c))
		}
	}

	var sb strings.Builder
	border(&sb, widths, '=')
	line(&sb, widths, header)
	border(&sb, widths, '=')
	for i, row := range rows {
		if i > 0 {
			border(&sb, widths, '-')
		}
		line(&sb, widths, row)
	}
	border(&sb, widths, '=')
	return sb.String()
}

func cell(v state.Vector, dst, rep state.NodeId) string {
	c, ok := v[dst][rep]
	if !ok || c == state.INF {
		return Unreachable
	}
	return c.String()
}

func border(sb *strings.Builder, widths []int, fill byte) {
	sb.WriteByte('+')
	for _, w := range widths {
		sb.WriteString(strings.Repeat(string(fill), w+2))
		sb.WriteByte('+')
	}
	sb.WriteByte('\n')
}

func line(sb *strings.Builder, widths []int, cells []string) {
	sb.WriteByte('|')
	for i, c := range cells {
		fmt.Fprintf(sb, " %*s |", widths[i], c)
	}
	sb.WriteByte('\n')
}
