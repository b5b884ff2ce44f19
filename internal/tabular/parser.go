// Package tabular parses the variable-format delimited tables exported by
// the instrument software. The files carry no delimiter metadata and the
// export delimiter follows the workstation's regional settings, so the
// parser tries a configured list of candidate separators and locks in the
// first one that yields a recognized header.
package tabular

import (
	"errors"
	"fmt"
	"strings"
)

// LineSource streams a text file line by line. *archive.Archive satisfies it.
type LineSource interface {
	Scan(fn func(line string) error) error
}

// ErrHeaderNotFound is returned when no candidate separator produces a
// header line satisfying the predicate with all required columns present.
var ErrHeaderNotFound = errors.New("no recognized header found")

// Params configures one parse.
type Params struct {
	// HeaderPredicate identifies the header line, e.g. a leading marker token.
	HeaderPredicate func(line string) bool
	// Separators are tried in order until one resolves all required columns.
	Separators []string
	// Required are the column names that must be present in the header.
	Required []string
	// Row receives every data line after the header, already split and
	// indexed. Returning an error aborts the parse.
	Row func(row Row) error
}

// Row is one data line with the locked column mapping applied.
type Row struct {
	cells []string
	index map[string]int
}

// Field returns the value of the named column. The column is guaranteed
// present in the mapping; the row is guaranteed long enough (short rows are
// counted as malformed and never reach the caller).
func (r Row) Field(col string) string {
	return r.cells[r.index[col]]
}

// Result describes a completed parse.
type Result struct {
	Separator string
	Header    []string
	// Malformed counts data lines too short to cover every required column.
	// They are skipped, not fatal: decoding tolerates missing values but an
	// out-of-range index would not be a value at all.
	Malformed int
	Rows      int
}

// Parse scans src once per candidate separator until a header line
// satisfying p.HeaderPredicate splits into all required columns. Once locked,
// every subsequent line is split by the same separator and handed to p.Row.
func Parse(src LineSource, p Params) (*Result, error) {
	if p.HeaderPredicate == nil {
		return nil, errors.New("tabular: header predicate is required")
	}
	for _, sep := range p.Separators {
		res, ok, err := parseWith(src, sep, p)
		if err != nil {
			return nil, err
		}
		if ok {
			return res, nil
		}
	}
	return nil, ErrHeaderNotFound
}

func parseWith(src LineSource, sep string, p Params) (*Result, bool, error) {
	res := &Result{Separator: sep}
	index := map[string]int{}
	locked := false
	maxIdx := 0

	err := src.Scan(func(line string) error {
		if !locked {
			if !p.HeaderPredicate(line) {
				return nil
			}
			header := strings.Split(strings.TrimSpace(line), sep)
			for i, name := range header {
				if _, dup := index[name]; !dup {
					index[name] = i
				}
			}
			for _, col := range p.Required {
				i, ok := index[col]
				if !ok {
					// Wrong separator (or genuinely missing column): the
					// header did not split into the expected names. Give the
					// next candidate a chance.
					return errWrongSeparator
				}
				if i > maxIdx {
					maxIdx = i
				}
			}
			res.Header = header
			locked = true
			return nil
		}

		if strings.TrimSpace(line) == "" {
			return nil
		}
		cells := strings.Split(strings.TrimSpace(line), sep)
		if len(cells) <= maxIdx {
			res.Malformed++
			return nil
		}
		res.Rows++
		if p.Row != nil {
			return p.Row(Row{cells: cells, index: index})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errWrongSeparator) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("tabular: %w", err)
	}
	if !locked {
		return nil, false, nil
	}
	return res, true, nil
}

var errWrongSeparator = errors.New("wrong separator")

// FindPrefixed scans src for the first line starting with prefix and returns
// it, or "" when absent. Used to pick marker lines (e.g. the chip Content
// descriptor) out of a header block without locking a separator.
func FindPrefixed(src LineSource, prefix string) (string, error) {
	var found string
	stop := errors.New("found")
	err := src.Scan(func(line string) error {
		if strings.HasPrefix(line, prefix) {
			found = line
			return stop
		}
		return nil
	})
	if err != nil && !errors.Is(err, stop) {
		return "", err
	}
	return found, nil
}
