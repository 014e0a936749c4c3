// SPDX-License-Identifier: Apache-2.0

// Package ooxmltest builds small in-memory .docx and .pptx archives for tests.
package ooxmltest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const (
	wordNS    = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`
	drawingNS = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`
	slideNS   = `xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
)

// Entry is one file in an archive, written in the order given.
type Entry struct {
	Name string
	Data []byte
}

// Package accumulates archive entries.
type Package struct {
	entries []Entry
}

// NewDocx starts a word-processing package whose document body is body.
func NewDocx(body string) *Package {
	p := &Package{}
	p.AddString("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types/>`)
	p.AddString("word/document.xml", body)
	return p
}

// NewPptx starts a slide-deck package with slides numbered from 1.
func NewPptx(slides ...string) *Package {
	p := &Package{}
	p.AddString("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types/>`)
	p.AddString("ppt/presentation.xml", `<?xml version="1.0" encoding="UTF-8"?><p:presentation `+slideNS+`/>`)
	for i, s := range slides {
		p.AddString(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), s)
	}
	return p
}

// Add appends a raw entry.
func (p *Package) Add(name string, data []byte) *Package {
	p.entries = append(p.entries, Entry{Name: name, Data: data})
	return p
}

// AddString appends a text entry.
func (p *Package) AddString(name, data string) *Package {
	return p.Add(name, []byte(data))
}

// Bytes zips the entries.
func (p *Package) Bytes(t testing.TB) []byte {
	t.Helper()
	return Zip(t, p.entries...)
}

// Zip writes entries to a zip archive in order.
func Zip(t testing.TB, entries ...Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		require.NoError(t, err)
		_, err = w.Write(e.Data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// Paragraph renders one WordprocessingML paragraph.
func Paragraph(text string) string {
	return "<w:p><w:r><w:t>" + escape(text) + "</w:t></w:r></w:p>"
}

// WordTable renders a WordprocessingML table.
func WordTable(rows ...[]string) string {
	var b strings.Builder
	b.WriteString("<w:tbl>")
	for _, row := range rows {
		b.WriteString("<w:tr>")
		for _, cell := range row {
			b.WriteString("<w:tc>" + Paragraph(cell) + "</w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}

// WordDocument wraps paragraphs and tables into document.xml.
func WordDocument(blocks ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document ` + wordNS + `><w:body>` +
		strings.Join(blocks, "") + `</w:body></w:document>`
}

// WordFooter renders footerN.xml content.
func WordFooter(paragraphs ...string) string {
	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString(Paragraph(p))
	}
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:ftr ` + wordNS + `>` + b.String() + `</w:ftr>`
}

// Slide renders a slide with one shape per text.
func Slide(texts ...string) string {
	var b strings.Builder
	for _, t := range texts {
		b.WriteString(`<p:sp><p:txBody><a:p><a:r><a:t>` + escape(t) + `</a:t></a:r></a:p></p:txBody></p:sp>`)
	}
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><p:sld ` + slideNS + ` ` + drawingNS +
		`><p:cSld><p:spTree>` + b.String() + `</p:spTree></p:cSld></p:sld>`
}

// Workbook builds an xlsx payload whose sheets carry the given names.
func Workbook(t testing.TB, sheets ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			continue
		}
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// Rows builds an xlsx payload with a single sheet filled from rows.
func Rows(t testing.TB, sheet string, rows ...[]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
