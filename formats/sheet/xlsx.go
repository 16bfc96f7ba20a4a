package sheet

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wudi/docview/content"
)

// XLSX reads every worksheet of a workbook into its own unit, in workbook
// order. The first row of each sheet is its header.
type XLSX struct{}

func NewXLSX() *XLSX { return &XLSX{} }

func (XLSX) Parse(ctx context.Context, data []byte) (*content.Document, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sheets []*Sheet
	for _, name := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		if len(rows) == 0 {
			sheets = append(sheets, NewSheet(name, nil, nil))
			continue
		}
		sheets = append(sheets, NewSheet(name, rows[0], rows[1:]))
	}
	if len(sheets) == 0 {
		return nil, content.ErrEmptyDocument
	}

	doc := &content.Document{}
	if props, err := f.GetDocProps(); err == nil && props != nil {
		doc.Title = strings.TrimSpace(props.Title)
	}
	if doc.Title == "" {
		doc.Title = title(sheets)
	}
	for _, s := range sheets {
		doc.Units = append(doc.Units, s)
	}
	return doc, nil
}
