// SPDX-License-Identifier: Apache-2.0

package reference

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/xuri/excelize/v2"
)

// LoadFile reads a record from a YAML, JSON or xlsx file. Spreadsheets are
// read from their first sheet without a row filter.
func LoadFile(path string) (Record, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadWorkbook(path, "", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reference %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("reference %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes a YAML or JSON mapping of field to value or values.
func Parse(data []byte) (Record, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding reference: %w", err)
	}
	return FromMap(m)
}

// Filter restricts workbook rows to those whose field equals the given
// value, compared case-insensitively.
type Filter map[string]string

func (f Filter) matches(row []string, columns map[string]int) bool {
	for field, want := range f {
		idx, ok := columns[Canonical(field)]
		if !ok {
			return false
		}
		if !strings.EqualFold(cell(row, idx), strings.TrimSpace(want)) {
			return false
		}
	}
	return true
}

// LoadWorkbook reads a record from an xlsx file. See ReadWorkbook.
func LoadWorkbook(path, sheet string, filter Filter) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening reference workbook %s: %w", path, err)
	}
	defer f.Close()
	r, err := ReadWorkbook(f, sheet, filter)
	if err != nil {
		return nil, fmt.Errorf("reference workbook %s: %w", path, err)
	}
	return r, nil
}

// ReadWorkbook maps the header row of sheet (the first sheet when empty) to
// canonical fields and collects the unique values of every row passing
// filter, in row order.
func ReadWorkbook(r io.Reader, sheet string, filter Filter) (Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s has no header row", sheet)
	}

	columns := MapColumns(rows[0])
	rec := Record{}
	for _, row := range rows[1:] {
		if !filter.matches(row, columns) {
			continue
		}
		for field, idx := range columns {
			rec.Add(field, normalize(field, cell(row, idx)))
		}
	}
	return rec, nil
}

// MapColumns assigns header columns to canonical fields. Exact alias
// matches are taken first; remaining fields then claim the first free
// column whose header contains one of their aliases.
func MapColumns(header []string) map[string]int {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = headerKey(h)
	}

	columns := map[string]int{}
	claimed := map[int]bool{}
	claim := func(field string, match func(key, alias string) bool) {
		if _, done := columns[field]; done {
			return
		}
		for _, a := range aliases {
			if a.field != field {
				continue
			}
			for _, h := range a.headers {
				want := headerKey(h)
				for i, key := range keys {
					if !claimed[i] && key != "" && match(key, want) {
						columns[field] = i
						claimed[i] = true
						return
					}
				}
			}
		}
	}

	for _, a := range aliases {
		claim(a.field, func(key, alias string) bool { return key == alias })
	}
	for _, a := range aliases {
		claim(a.field, strings.Contains)
	}
	return columns
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
