package logger

import (
	"fmt"
	"strings"
)

type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

func NewTable(headers []string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{headers: headers, widths: widths}
}

func (t *Table) AddRow(cells ...string) {
	if len(cells) > len(t.headers) {
		cells = cells[:len(t.headers)]
	} else if len(cells) < len(t.headers) {
		padded := make([]string, len(t.headers))
		copy(padded, cells)
		cells = padded
	}

	for i, cell := range cells {
		if len(cell) > t.widths[i] {
			t.widths[i] = len(cell)
		}
	}
	t.rows = append(t.rows, cells)
}

func (t *Table) Print() {
	fmt.Println(t.String())
}

func (t *Table) String() string {
	var sb strings.Builder

	rowFormat := "│"
	for _, w := range t.widths {
		rowFormat += " %-" + fmt.Sprintf("%d", w) + "s │"
	}

	t.writeBorder(&sb, "┌", "┬", "┐")
	sb.WriteString(fmt.Sprintf(rowFormat, toAny(t.headers)...))
	sb.WriteString("\n")
	t.writeBorder(&sb, "├", "┼", "┤")
	for _, row := range t.rows {
		sb.WriteString(fmt.Sprintf(rowFormat, toAny(row)...))
		sb.WriteString("\n")
	}
	t.writeBorder(&sb, "└", "┴", "┘")

	return strings.TrimSuffix(sb.String(), "\n")
}

func (t *Table) writeBorder(sb *strings.Builder, left, mid, right string) {
	sb.WriteString(left)
	for i, w := range t.widths {
		sb.WriteString(strings.Repeat("─", w+2))
		if i < len(t.widths)-1 {
			sb.WriteString(mid)
		}
	}
	sb.WriteString(right)
	sb.WriteString("\n")
}

func toAny(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
