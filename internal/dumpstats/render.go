package dumpstats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// HumanSize formats a byte count the way the dump summary table does: KB
// below one megabyte, MB above.
func HumanSize(n int64) string {
	kb := float64(n) / 1024
	if kb < 1024 {
		return fmt.Sprintf("%.2f (KB)", kb)
	}
	return fmt.Sprintf("%.2f (MB)", kb/1024)
}

// RenderTable writes one summary row per dump.
func RenderTable(w io.Writer, stats []*Stats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Filename", "File Size", "File Lines", "Key Count", "Blank", "Max Depth"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, s := range stats {
		table.Append([]string{
			s.File,
			HumanSize(s.Size),
			strconv.Itoa(s.Lines),
			strconv.Itoa(s.Keys),
			fmt.Sprintf("%d (%.2f%%)", s.Blank, s.BlankRatio()*100),
			strconv.Itoa(Depth(s.Deepest)),
		})
	}
	table.Render()
}

// RenderDetail writes the per-file findings below the table.
func RenderDetail(w io.Writer, s *Stats) {
	fmt.Fprintf(w, "\n%s\n", s.File)
	fmt.Fprintf(w, "  Roots: %s\n", strings.Join(s.Roots, ", "))
	fmt.Fprintf(w, "  Longest key-path is %d characters, %d keys: %s\n", len(s.Longest), Depth(s.Longest), s.Longest)
	fmt.Fprintf(w, "  Deepest key-path is %d characters, %d keys: %s\n", len(s.Deepest), Depth(s.Deepest), s.Deepest)
	fmt.Fprintf(w, "  Duplicates: %d\n", len(s.Duplicates))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Type", "Count"})
	for _, name := range s.TypeNames() {
		table.Append([]string{name, strconv.Itoa(s.Types[name])})
	}
	table.Render()

	for _, loc := range s.Unknown {
		fmt.Fprintf(w, "  REG_UNKNOWN at line %d: Computer\\%s\n", loc.Line, loc.Key)
	}
}
