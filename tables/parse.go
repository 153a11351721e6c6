package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rob-gra/bufr/bufr"
)

// tableFileName builds the path to the element or sequence table file for
// a version triple, e.g. "<root>/b/0/0/0.csv" for master table 0, centre
// 0, local version 0's Table B.
func tableFileName(root, kind string, t versionTriple) string {
	return filepath.Join(root, kind,
		strconv.Itoa(t.masterVersion),
		strconv.Itoa(t.centre),
		strconv.Itoa(t.localVersion)+".csv")
}

// openTableFile opens a table file, translating a missing file into
// bufr.ErrMissingTable rather than the raw os error.
func openTableFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("tables: %s: %w", path, bufr.ErrMissingTable)
		}
		return nil, err
	}
	return f, nil
}

// loadElementTable reads Table B rows: key;name;unit;scale;reference;width
func loadElementTable(root string, t versionTriple) (map[bufr.Key]bufr.ElementDescriptor, error) {
	path := tableFileName(root, "b", t)
	f, err := openTableFile(path)
	if err != nil {
		if errors.Is(err, bufr.ErrMissingTable) {
			return map[bufr.Key]bufr.ElementDescriptor{}, nil
		}
		return nil, err
	}
	defer f.Close()

	records, err := readCSV(f)
	if err != nil {
		return nil, err
	}

	table := make(map[bufr.Key]bufr.ElementDescriptor, len(records))
	for _, rec := range records {
		el, err := parseElementRow(rec)
		if err != nil {
			continue
		}
		table[el.Key] = el
	}
	return table, nil
}

// loadSequenceTable reads Table D rows: key;name;member1,member2,...
func loadSequenceTable(root string, t versionTriple) (map[bufr.Key]bufr.SequenceDescriptor, error) {
	path := tableFileName(root, "d", t)
	f, err := openTableFile(path)
	if err != nil {
		if errors.Is(err, bufr.ErrMissingTable) {
			return map[bufr.Key]bufr.SequenceDescriptor{}, nil
		}
		return nil, err
	}
	defer f.Close()

	records, err := readCSV(f)
	if err != nil {
		return nil, err
	}

	table := make(map[bufr.Key]bufr.SequenceDescriptor, len(records))
	for _, rec := range records {
		seq, err := parseSequenceRow(rec)
		if err != nil {
			continue
		}
		table[seq.Key] = seq
	}
	return table, nil
}

func readCSV(f *os.File) ([][]string, error) {
	r := csv.NewReader(f)
	r.Comma = ';'
	r.Comment = '#'
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func parseElementRow(rec []string) (bufr.ElementDescriptor, error) {
	if len(rec) < 6 {
		return bufr.ElementDescriptor{}, fmt.Errorf("tables: short row: %w", bufr.ErrMalformedTableRow)
	}
	key, err := parseKey(rec[0])
	if err != nil {
		return bufr.ElementDescriptor{}, err
	}
	scale, err := strconv.Atoi(strings.TrimSpace(rec[3]))
	if err != nil {
		return bufr.ElementDescriptor{}, fmt.Errorf("tables: bad scale %q: %w", rec[3], bufr.ErrMalformedTableRow)
	}
	reference, err := strconv.Atoi(strings.TrimSpace(rec[4]))
	if err != nil {
		return bufr.ElementDescriptor{}, fmt.Errorf("tables: bad reference %q: %w", rec[4], bufr.ErrMalformedTableRow)
	}
	width, err := strconv.Atoi(strings.TrimSpace(rec[5]))
	if err != nil || width < 0 {
		return bufr.ElementDescriptor{}, fmt.Errorf("tables: bad width %q: %w", rec[5], bufr.ErrMalformedTableRow)
	}
	return bufr.ElementDescriptor{
		Key:       key,
		Name:      strings.TrimSpace(rec[1]),
		Unit:      strings.TrimSpace(rec[2]),
		Scale:     int32(scale),
		Reference: int32(reference),
		Width:     uint(width),
	}, nil
}

func parseSequenceRow(rec []string) (bufr.SequenceDescriptor, error) {
	if len(rec) < 3 {
		return bufr.SequenceDescriptor{}, fmt.Errorf("tables: short row: %w", bufr.ErrMalformedTableRow)
	}
	key, err := parseKey(rec[0])
	if err != nil {
		return bufr.SequenceDescriptor{}, err
	}
	var members []bufr.Key
	for _, m := range strings.Split(rec[2], ",") {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		mk, err := parseKey(m)
		if err != nil {
			return bufr.SequenceDescriptor{}, err
		}
		members = append(members, mk)
	}
	return bufr.SequenceDescriptor{
		Key:     key,
		Name:    strings.TrimSpace(rec[1]),
		Members: members,
	}, nil
}

// parseKey parses the canonical "F-X-Y" form written by bufr.Key.String.
func parseKey(s string) (bufr.Key, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return bufr.Key{}, fmt.Errorf("tables: bad key %q: %w", s, bufr.ErrMalformedTableRow)
	}
	f, err1 := strconv.Atoi(parts[0])
	x, err2 := strconv.Atoi(parts[1])
	y, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return bufr.Key{}, fmt.Errorf("tables: bad key %q: %w", s, bufr.ErrMalformedTableRow)
	}
	return bufr.Key{F: bufr.Class(f), X: uint8(x), Y: uint8(y)}, nil
}
