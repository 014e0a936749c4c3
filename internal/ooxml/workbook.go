// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const workbookPart = "xl/workbook.xml"

// SheetNames returns the worksheet names of an xlsx payload in workbook order.
// excelize is tried first; a workbook it refuses is read directly from
// xl/workbook.xml so damaged embeddings still report their sheets.
func SheetNames(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err == nil {
		defer f.Close()
		return f.GetSheetList(), nil
	}

	names, ferr := sheetNamesFromWorkbookXML(data)
	if ferr != nil {
		return nil, fmt.Errorf("%w: reading sheet names: %w", ErrTextExtractionFailed, err)
	}
	return names, nil
}

type workbookXML struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
	} `xml:"sheets>sheet"`
}

func sheetNamesFromWorkbookXML(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if f.Name != workbookPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		var wb workbookXML
		if err := xml.Unmarshal(raw, &wb); err != nil {
			return nil, err
		}
		names := make([]string, 0, len(wb.Sheets))
		for _, s := range wb.Sheets {
			names = append(names, s.Name)
		}
		return names, nil
	}
	return nil, fmt.Errorf("%s not found", workbookPart)
}
