// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	wordMainPart   = "word/document.xml"
	slidesMainPart = "ppt/presentation.xml"
	footerPrefix   = "word/footer"
	slidesDir      = "ppt/slides/"
)

var (
	slidePartName  = regexp.MustCompile(`^slide(\d+)\.xml$`)
	footerPartName = regexp.MustCompile(`^footer(\d*)\.xml$`)
	embeddingDirs  = []string{"word/embeddings/", "ppt/embeddings/"}
)

// Part is one raw XML part of a container.
type Part struct {
	Path string
	// Index is the numeric index taken from the part name (slide3.xml -> 3).
	Index int
	Data  []byte
}

// Container is an opened OOXML archive with its parts grouped by role.
type Container struct {
	Kind    Kind
	Main    Part
	Footers []Part
	// Slides are ordered by their numeric index, not archive order.
	Slides []Part
	// Embedded lists embedded spreadsheet paths; their bytes are read on demand.
	Embedded []string
	// Skipped holds candidate parts rejected as unrecognized.
	Skipped []string

	files map[string]*zip.File
}

// OpenContainer opens data as an OOXML archive of the given kind.
// Only ErrMalformedContainer is returned; unrecognized parts are logged
// and recorded in Skipped.
func OpenContainer(data []byte, kind Kind, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedContainer, err)
	}

	c := &Container{Kind: kind, files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		c.files[f.Name] = f
	}

	mainPath := wordMainPart
	if kind == Slides {
		mainPath = slidesMainPart
	}
	main, err := c.Read(mainPath)
	if err != nil {
		return nil, fmt.Errorf("%w: missing main part %s", ErrMalformedContainer, mainPath)
	}
	c.Main = Part{Path: mainPath, Data: main}

	for _, f := range zr.File {
		name := f.Name
		switch {
		case kind == Word && strings.HasPrefix(name, footerPrefix) && strings.HasSuffix(name, ".xml"):
			m := footerPartName.FindStringSubmatch(path.Base(name))
			if m == nil || path.Dir(name) != "word" {
				continue
			}
			idx, _ := strconv.Atoi(m[1])
			if err := c.appendPart(&c.Footers, name, idx); err != nil {
				return nil, err
			}
		case kind == Slides && strings.HasPrefix(name, slidesDir) && strings.HasSuffix(name, ".xml"):
			if path.Dir(name)+"/" != slidesDir {
				// _rels and other sub-directories
				continue
			}
			m := slidePartName.FindStringSubmatch(path.Base(name))
			if m == nil {
				logger.Warn("skipping slide part",
					zap.String("part", name),
					zap.Error(ErrUnrecognizedPart))
				c.Skipped = append(c.Skipped, name)
				continue
			}
			idx, err := strconv.Atoi(m[1])
			if err != nil {
				logger.Warn("skipping slide part", zap.String("part", name), zap.Error(err))
				c.Skipped = append(c.Skipped, name)
				continue
			}
			if err := c.appendPart(&c.Slides, name, idx); err != nil {
				return nil, err
			}
		case isEmbeddedSpreadsheet(name):
			c.Embedded = append(c.Embedded, name)
		}
	}

	sortParts(c.Footers)
	sortParts(c.Slides)
	sort.Strings(c.Embedded)
	return c, nil
}

// Read returns the bytes of any part in the archive.
func (c *Container) Read(name string) ([]byte, error) {
	f, ok := c.files[name]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening part %s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading part %s: %w", name, err)
	}
	return data, nil
}

// SlideNumbers returns the logical index of every recognized slide, in order.
func (c *Container) SlideNumbers() []int {
	out := make([]int, len(c.Slides))
	for i, s := range c.Slides {
		out[i] = s.Index
	}
	return out
}

func (c *Container) appendPart(dst *[]Part, name string, idx int) error {
	data, err := c.Read(name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedContainer, err)
	}
	*dst = append(*dst, Part{Path: name, Index: idx, Data: data})
	return nil
}

func sortParts(parts []Part) {
	sort.SliceStable(parts, func(i, j int) bool {
		if parts[i].Index != parts[j].Index {
			return parts[i].Index < parts[j].Index
		}
		return parts[i].Path < parts[j].Path
	})
}

func isEmbeddedSpreadsheet(name string) bool {
	if !strings.EqualFold(path.Ext(name), ".xlsx") {
		return false
	}
	for _, dir := range embeddingDirs {
		if strings.HasPrefix(name, dir) {
			return true
		}
	}
	return false
}

// Detect sniffs the kind of an archive from its main part.
func Detect(data []byte) (Kind, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedContainer, err)
	}
	for _, f := range zr.File {
		switch f.Name {
		case wordMainPart:
			return Word, nil
		case slidesMainPart:
			return Slides, nil
		}
	}
	return "", fmt.Errorf("%w: no word or slide main part", ErrMalformedContainer)
}
