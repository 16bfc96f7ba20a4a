// Package ooxml reads the zip packaging shared by DOCX, XLSX and PPTX.
package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Package is an opened OOXML archive.
type Package struct {
	zr *zip.Reader
}

func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	return &Package{zr: zr}, nil
}

// File returns the part stored under name, or nil.
func (p *Package) File(name string) *zip.File {
	for _, f := range p.zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Files returns the parts whose names start with prefix.
func (p *Package) Files(prefix string) []*zip.File {
	var out []*zip.File
	for _, f := range p.zr.File {
		if strings.HasPrefix(f.Name, prefix) {
			out = append(out, f)
		}
	}
	return out
}

// Open returns a reader over the part name.
func (p *Package) Open(name string) (io.ReadCloser, error) {
	f := p.File(name)
	if f == nil {
		return nil, fmt.Errorf("%s not found in archive", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return rc, nil
}

// Title reads dc:title from docProps/core.xml. Missing or broken core
// properties yield "".
func (p *Package) Title() string {
	rc, err := p.Open("docProps/core.xml")
	if err != nil {
		return ""
	}
	defer rc.Close()
	dec := xml.NewDecoder(rc)
	inTitle := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inTitle = t.Name.Local == "title"
		case xml.CharData:
			if inTitle {
				return strings.TrimSpace(string(t))
			}
		case xml.EndElement:
			inTitle = false
		}
	}
}
