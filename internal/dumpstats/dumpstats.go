// Package dumpstats summarizes registry editor text dumps (File > Export as
// "Text files"). Those dumps are UTF-16 and list each key as a "Key Name:"
// block followed by "Value N" entries with Name, Type and Data lines.
package dumpstats

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joshuapare/regwalk/pkg/types"
)

const (
	keyNamePrefix   = "Key Name:"
	classNamePrefix = "Class Name:"
	typePrefix      = "  Type:"
)

// Location points at a REG_UNKNOWN value inside a dump.
type Location struct {
	Line int    // 1-based line of the Type entry
	Key  string // enclosing key path
}

// Stats describes one dump file.
type Stats struct {
	File       string
	Size       int64
	Lines      int
	Blank      int
	Keys       int
	Longest    string // key path with the most characters
	Deepest    string // key path with the most segments
	Roots      []string
	Types      map[string]int
	Unknown    []Location
	Duplicates []string
	ClassNames map[string]int
}

// Depth returns the number of segments in a key path.
func Depth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, `\`) + 1
}

// BlankRatio returns the share of blank lines.
func (s *Stats) BlankRatio() float64 {
	if s.Lines == 0 {
		return 0
	}
	return float64(s.Blank) / float64(s.Lines)
}

// TypeNames returns the value types seen, sorted.
func (s *Stats) TypeNames() []string {
	names := make([]string, 0, len(s.Types))
	for n := range s.Types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Analyze reads one dump. Input with a BOM is decoded accordingly; input
// without one is taken as UTF-16LE.
func Analyze(r io.Reader) (*Stats, error) {
	dec := unicode.BOMOverride(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, dec))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	st := &Stats{Types: map[string]int{}, ClassNames: map[string]int{}}
	seen := map[string]bool{}
	dups := map[string]bool{}
	roots := map[string]bool{}
	var currentKey string

	for scanner.Scan() {
		st.Lines++
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case line == "":
			st.Blank++
		case strings.HasPrefix(line, keyNamePrefix):
			key := strings.TrimSpace(strings.TrimPrefix(line, keyNamePrefix))
			currentKey = key
			st.Keys++
			if seen[key] {
				dups[key] = true
			}
			seen[key] = true
			root, _, _ := strings.Cut(key, `\`)
			roots[root] = true
			if len(key) > len(st.Longest) {
				st.Longest = key
			}
			if Depth(key) > Depth(st.Deepest) {
				st.Deepest = key
			}
		case strings.HasPrefix(line, classNamePrefix):
			st.ClassNames[strings.TrimSpace(strings.TrimPrefix(line, classNamePrefix))]++
		case strings.HasPrefix(line, typePrefix):
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			st.Types[fields[1]]++
			if fields[1] == types.UnknownLabel {
				st.Unknown = append(st.Unknown, Location{Line: st.Lines, Key: currentKey})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for r := range roots {
		st.Roots = append(st.Roots, r)
	}
	sort.Strings(st.Roots)
	for d := range dups {
		st.Duplicates = append(st.Duplicates, d)
	}
	sort.Strings(st.Duplicates)
	return st, nil
}

// AnalyzeFile reads the dump at path.
func AnalyzeFile(path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	st, err := Analyze(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	st.File = path
	st.Size = info.Size()
	return st, nil
}

// AnalyzeFiles analyzes the dumps concurrently, at most limit at a time
// (unbounded when limit < 1). Results keep the order of paths. The first
// failure cancels the files not yet started.
func AnalyzeFiles(ctx context.Context, paths []string, limit int) ([]*Stats, error) {
	results := make([]*Stats, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}
	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			st, err := AnalyzeFile(path)
			if err != nil {
				return err
			}
			results[i] = st
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SortByLines orders stats by ascending line count.
func SortByLines(stats []*Stats) {
	slices.SortStableFunc(stats, func(a, b *Stats) int { return a.Lines - b.Lines })
}
