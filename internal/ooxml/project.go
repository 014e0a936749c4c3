// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Table is the cell text of one table, rows by cells.
type Table [][]string

// Projection is the flattened text of one XML part.
type Projection struct {
	// Text is every non-empty text run in document order, single-space joined.
	// Table cells appear row-major, cell by cell, where the table sits.
	Text string
	// Tables holds each table in the order it opens in the part. A nested
	// table is listed on its own and its text also lands in the outer cell.
	Tables []Table
}

// openTable tracks a table being read; nested tables stack.
type openTable struct {
	slot int
	rows Table
	cell []string
	// inCell is false between </tc> and the next <tc>.
	inCell bool
}

// Project flattens part XML to text. Elements are matched on their local
// name only (t, tbl, tr, tc), so WordprocessingML and DrawingML runs are
// handled alike without resolving namespace prefixes.
func Project(data []byte) (Projection, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		runs   []string
		tables []Table
		stack  []*openTable
		inRun  bool
		run    strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Projection{}, fmt.Errorf("%w: %w", ErrTextExtractionFailed, err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inRun = true
				run.Reset()
			case "tbl":
				tables = append(tables, nil)
				stack = append(stack, &openTable{slot: len(tables) - 1})
			case "tr":
				if top := peek(stack); top != nil {
					top.rows = append(top.rows, []string{})
				}
			case "tc":
				if top := peek(stack); top != nil {
					top.cell = top.cell[:0]
					top.inCell = true
				}
			}
		case xml.CharData:
			if inRun {
				run.Write(el)
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inRun = false
				text := strings.TrimSpace(run.String())
				if text == "" {
					continue
				}
				runs = append(runs, text)
				for _, t := range stack {
					if t.inCell {
						t.cell = append(t.cell, text)
					}
				}
			case "tc":
				if top := peek(stack); top != nil && top.inCell {
					if len(top.rows) == 0 {
						top.rows = append(top.rows, []string{})
					}
					last := len(top.rows) - 1
					top.rows[last] = append(top.rows[last], strings.Join(top.cell, " "))
					top.inCell = false
				}
			case "tbl":
				if top := peek(stack); top != nil {
					tables[top.slot] = top.rows
					stack = stack[:len(stack)-1]
				}
			}
		}
	}

	return Projection{Text: strings.Join(runs, " "), Tables: tables}, nil
}

func peek(stack []*openTable) *openTable {
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}
