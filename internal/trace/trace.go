// Package trace reads, writes, generates and replays allocation workloads.
//
// A trace is line oriented text:
//
//	# comment
//	alloc <id> <size> [align]
//	free <id>
//
// Sizes and alignments accept decimal or 0x-prefixed hex. IDs name an
// allocation so a later free can refer to it. Input may be UTF-8 or UTF-16 with
// a byte order mark, the way traces exported from other tools often arrive.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// Kind is the operation type of a trace line.
type Kind int

const (
	KindAlloc Kind = iota
	KindFree
)

func (k Kind) String() string {
	switch k {
	case KindAlloc:
		return KeywordAlloc
	case KindFree:
		return KeywordFree
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Op is one trace operation. Layout is zero for frees.
type Op struct {
	Kind   Kind
	ID     string
	Layout alloc.Layout
}

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("trace: syntax error")

// Parse reads a whole trace.
func Parse(r io.Reader) ([]Op, error) {
	// BOMOverride switches to UTF-16 when a BOM says so and strips a UTF-8 BOM.
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, dec))
	scanner.Buffer(make([]byte, 0, 4096), ScannerMaxLineSize)

	var ops []Op
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}
		op, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning trace: %w", err)
	}
	return ops, nil
}

func parseLine(line string) (Op, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case KeywordAlloc:
		if len(fields) < 3 || len(fields) > 4 {
			return Op{}, fmt.Errorf("%w: want %q", ErrSyntax, "alloc <id> <size> [align]")
		}
		size, err := parseUint(fields[2])
		if err != nil {
			return Op{}, fmt.Errorf("%w: size %q: %w", ErrSyntax, fields[2], err)
		}
		align := uint64(DefaultAlign)
		if len(fields) == 4 {
			if align, err = parseUint(fields[3]); err != nil {
				return Op{}, fmt.Errorf("%w: align %q: %w", ErrSyntax, fields[3], err)
			}
		}
		return Op{Kind: KindAlloc, ID: fields[1], Layout: alloc.Layout{Size: uintptr(size), Align: uintptr(align)}}, nil

	case KeywordFree:
		if len(fields) != 2 {
			return Op{}, fmt.Errorf("%w: want %q", ErrSyntax, "free <id>")
		}
		return Op{Kind: KindFree, ID: fields[1]}, nil

	default:
		return Op{}, fmt.Errorf("%w: unknown operation %q", ErrSyntax, fields[0])
	}
}

func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 0, 64)
}

// Write emits ops in the format Parse reads.
func Write(w io.Writer, ops []Op) error {
	bw := bufio.NewWriter(w)
	for _, op := range ops {
		var err error
		switch op.Kind {
		case KindAlloc:
			_, err = fmt.Fprintf(bw, "%s %s %d %d\n", KeywordAlloc, op.ID, op.Layout.Size, op.Layout.Align)
		case KindFree:
			_, err = fmt.Fprintf(bw, "%s %s\n", KeywordFree, op.ID)
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
