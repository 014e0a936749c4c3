// SPDX-License-Identifier: Apache-2.0

package evidence

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/gemaraproj/ooxml-compliance/internal/catalog"
	"github.com/gemaraproj/ooxml-compliance/internal/ooxml"
)

var nonWord = regexp.MustCompile(`[^\w\s]`)

// InspectWorkbooks reads the sheet names of every embedded spreadsheet and
// matches them against the required sheets. Unreadable workbooks are
// recorded as warnings and skipped.
func InspectWorkbooks(c *ooxml.Container, rule *catalog.WorkbookRule, doc *ExtractedDocument, logger *zap.Logger) {
	for _, path := range c.Embedded {
		data, err := c.Read(path)
		if err != nil {
			doc.Warn(logger, path, err)
			continue
		}
		names, err := ooxml.SheetNames(data)
		if err != nil {
			doc.Warn(logger, path, err)
			continue
		}
		info := EmbeddedContainerInfo{Path: path, SheetNames: names}
		if rule != nil {
			info.RequiredSheets = make(map[string]bool, len(rule.RequiredSheets))
			for _, req := range rule.RequiredSheets {
				info.RequiredSheets[req] = SheetMatches(names, req)
			}
			info.Architecture = hasKeyword(names, rule.Architecture)
		}
		doc.Embedded = append(doc.Embedded, info)
	}
}

// SheetMatches reports whether a required sheet is present. An exact
// case-insensitive name wins; otherwise punctuation is dropped and either
// name may contain the other.
func SheetMatches(sheets []string, required string) bool {
	for _, s := range sheets {
		if strings.EqualFold(s, required) {
			return true
		}
	}
	want := nonWord.ReplaceAllString(strings.ToLower(required), "")
	for _, s := range sheets {
		have := nonWord.ReplaceAllString(strings.ToLower(s), "")
		if have == "" || want == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return true
		}
	}
	return false
}

func hasKeyword(sheets []string, keyword string) bool {
	if keyword == "" {
		return false
	}
	for _, s := range sheets {
		if strings.Contains(strings.ToLower(s), strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
