// Package bedgraph converts between Float32 stretch vectors and the bedGraph
// text format (https://genome.ucsc.edu/goldenPath/help/bedgraph.html): one
// "chrom<TAB>start<TAB>end<TAB>value" line per constant-valued block, with
// half-open zero-based coordinates.
//
// A vector covers a single unnamed axis, so the chromosome column is just a
// label on write and a filter on read.
package bedgraph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/stretch"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// Write emits v as bedGraph lines labeled with the given chromosome name.
// Within each run, maximal blocks of equal consecutive values become one
// line each.  v must have kind Float32.
func Write(w io.Writer, v *stretch.Vector, chrom string) error {
	if v.Kind() != stretch.Float32 {
		return errors.Errorf("bedgraph.Write: vector kind %v; only float32 vectors have a bedGraph form", v.Kind())
	}
	bw := bufio.NewWriter(w)
	for i := 0; i < v.NumRuns(); i++ {
		iv, buf := v.Run(i)
		vals := buf.Float32s()
		blockStart := 0
		for j := 1; j <= len(vals); j++ {
			// NaN != NaN, so compare bitwise-equal semantics via !=
			// on both orders: a block ends when the value changes.
			if j < len(vals) && vals[j] == vals[blockStart] {
				continue
			}
			if j < len(vals) && vals[j] != vals[j] && vals[blockStart] != vals[blockStart] {
				continue // both NaN
			}
			start := iv.Start + stretch.PosType(blockStart)
			end := iv.Start + stretch.PosType(j)
			val := strconv.FormatFloat(float64(vals[blockStart]), 'g', -1, 32)
			if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\t%s\n", chrom, start, end, val); err != nil {
				return err
			}
			blockStart = j
		}
	}
	return bw.Flush()
}

// Read parses bedGraph lines for the named chromosome into a new Float32
// vector; lines for other chromosomes, track/browser declarations, and
// #-comments are skipped.  Intervals for the selected chromosome must be
// sorted and non-overlapping.  Touching intervals become separate runs, per
// the container's no-coalescing policy.
func Read(r io.Reader, chrom string) (*stretch.Vector, error) {
	v := stretch.NewVector(stretch.Float32)
	scanner := bufio.NewScanner(r)
	var tokens [4][]byte
	lineIdx := 0
	prevEnd := stretch.PosType(-1)
	nIntervals := 0
	var nValues stretch.PosType
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		nToken := getTokens(tokens[:], curLine)
		if nToken == 0 {
			continue
		}
		switch gunsafe.BytesToString(tokens[0]) {
		case "track", "browser":
			continue
		}
		if tokens[0][0] == '#' {
			continue
		}
		if nToken != 4 {
			return nil, errors.Errorf("bedgraph.Read: line %d has %d tokens, expected 4", lineIdx, nToken)
		}
		if gunsafe.BytesToString(tokens[0]) != chrom {
			continue
		}
		start, err := strconv.ParseInt(gunsafe.BytesToString(tokens[1]), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bedgraph.Read: line %d: start", lineIdx)
		}
		end, err := strconv.ParseInt(gunsafe.BytesToString(tokens[2]), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bedgraph.Read: line %d: end", lineIdx)
		}
		if start < 0 || end <= start {
			return nil, errors.Errorf("bedgraph.Read: line %d: invalid interval [%d, %d)", lineIdx, start, end)
		}
		if stretch.PosType(start) < prevEnd {
			return nil, errors.Errorf("bedgraph.Read: line %d: unsorted or overlapping input at %d", lineIdx, start)
		}
		val, err := strconv.ParseFloat(gunsafe.BytesToString(tokens[3]), 32)
		if err != nil {
			return nil, errors.Wrapf(err, "bedgraph.Read: line %d: value", lineIdx)
		}
		vals := make([]float32, end-start)
		for i := range vals {
			vals[i] = float32(val)
		}
		if err := v.SetRange(stretch.PosType(start), stretch.PosType(end), stretch.BufferOfFloat32s(vals)); err != nil {
			return nil, errors.Wrapf(err, "bedgraph.Read: line %d", lineIdx)
		}
		prevEnd = stretch.PosType(end)
		nIntervals++
		nValues += stretch.PosType(end - start)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	log.Printf("bedGraph loaded, %d position(s) covered across %d interval(s).\n", nValues, nIntervals)
	return v, nil
}

// ReadFile is a wrapper for Read that takes a path instead of an io.Reader,
// decompressing .gz input transparently.
func ReadFile(path, chrom string) (v *stretch.Vector, err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return Read(reader, chrom)
}

// WriteFile is a wrapper for Write that takes a path, gzip-compressing
// output when the path ends in .gz.
func WriteFile(path string, v *stretch.Vector, chrom string) (err error) {
	ctx := vcontext.Background()
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	writer := io.Writer(out.Writer(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		gz := gzip.NewWriter(writer)
		defer func() {
			if cerr := gz.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		writer = gz
	}
	return Write(writer, v, chrom)
}
