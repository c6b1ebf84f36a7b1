package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// utf8BOM is prepended by spreadsheet applications when exporting CSV.
const utf8BOM = "\xef\xbb\xbf"

// ParseCSV reads "number,owner" rows from r into entries. Malformed rows are
// skipped and reported as warnings rather than failing the whole file: a
// roster upload minutes before a live event should salvage every usable row.
// A leading UTF-8 BOM is tolerated, and a first row whose number cell does
// not parse is treated as a header and skipped silently.
//
// Postcondition: Returns the parsed entries in file order, the per-row
// warnings, and a non-nil error only when the reader itself fails.
func ParseCSV(r io.Reader) ([]Entry, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		entries  []Entry
		warnings []string
	)

	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading csv row %d: %w", row, err)
		}

		if row == 1 && len(record) > 0 {
			record[0] = strings.TrimPrefix(record[0], utf8BOM)
		}

		if len(record) != 2 {
			warnings = append(warnings, fmt.Sprintf("row %d: expected 2 columns, got %d", row, len(record)))
			continue
		}

		numberCell := strings.TrimSpace(record[0])
		owner := strings.TrimSpace(record[1])

		number, err := strconv.Atoi(numberCell)
		if err != nil {
			if row == 1 {
				continue // header row
			}
			warnings = append(warnings, fmt.Sprintf("row %d: invalid number %q", row, numberCell))
			continue
		}
		if number < 0 {
			warnings = append(warnings, fmt.Sprintf("row %d: negative number %d", row, number))
			continue
		}
		if owner == "" {
			warnings = append(warnings, fmt.Sprintf("row %d: missing owner name", row))
			continue
		}

		entries = append(entries, Entry{Number: number, Owner: owner})
	}

	return entries, warnings, nil
}

// LoadFile parses the roster CSV at path.
//
// Postcondition: Returns entries and warnings as ParseCSV, or an error if
// the file cannot be opened or read.
func LoadFile(path string) ([]Entry, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening roster file: %w", err)
	}
	defer f.Close()

	entries, warnings, err := ParseCSV(f)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing roster file %s: %w", path, err)
	}
	return entries, warnings, nil
}
