package sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/wudi/docview/content"
)

// DefaultSheetName names the single unit a CSV file produces.
const DefaultSheetName = "Sheet1"

// CSV reads comma, semicolon or tab separated text. The first record is the
// header.
type CSV struct {
	// Comma forces the separator; zero sniffs it from the first line.
	Comma rune
}

func NewCSV() *CSV { return &CSV{} }

func (c *CSV) Parse(ctx context.Context, data []byte) (*content.Document, error) {
	if !utf8.Valid(data) {
		if dec, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
			data = dec
		}
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = c.Comma
	if r.Comma == 0 {
		r.Comma = Sniff(data)
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		records = append(records, rec)
	}

	var sh *Sheet
	if len(records) == 0 {
		sh = NewSheet(DefaultSheetName, nil, nil)
	} else {
		sh = NewSheet(DefaultSheetName, records[0], records[1:])
	}
	return &content.Document{Units: []content.Unit{sh}}, nil
}

// Sniff picks the separator occurring most often outside quotes on the
// first line. Ties and lines without any separator fall back to a comma.
func Sniff(data []byte) rune {
	line := string(data)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	counts := map[rune]int{}
	quoted := false
	for _, r := range line {
		switch r {
		case '"':
			quoted = !quoted
		case ',', ';', '\t':
			if !quoted {
				counts[r]++
			}
		}
	}
	best := ','
	for _, r := range []rune{';', '\t'} {
		if counts[r] > counts[best] {
			best = r
		}
	}
	return best
}
