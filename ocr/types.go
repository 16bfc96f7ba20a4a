package ocr

import (
	"context"
	"math"
	"strings"
)

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
	ImageFormatTIFF ImageFormat = "image/tiff"
)

// Region describes a rectangular area in pixel coordinates with the origin in
// the upper-left corner of the image.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the region has non-positive dimensions.
func (r Region) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Input is a single image submitted for recognition.
type Input struct {
	// ID is echoed back in the corresponding Result.
	ID string
	// Image is the encoded image payload in Format.
	Image  []byte
	Format ImageFormat
	// UnitIndex links the input to the 1-indexed document unit it came from.
	UnitIndex int
	// DPI is the effective resolution; zero means unknown.
	DPI int
	// Languages are trained-data hints such as "eng" or "deu".
	Languages []string
	// Region restricts recognition to part of the image. Nil means all of it.
	Region *Region
	// Metadata passes engine-specific variables through unchanged.
	Metadata map[string]string
}

// TextWord is a single recognized token.
type TextWord struct {
	Text       string
	Bounds     Region
	Confidence float64
}

// TextLine groups words that share a baseline.
type TextLine struct {
	Text       string
	Bounds     Region
	Words      []TextWord
	Confidence float64
}

// TextBlock aggregates lines that form a logical block.
type TextBlock struct {
	Text       string
	Bounds     Region
	Lines      []TextLine
	Confidence float64
}

// Result is the recognition output for one Input.
type Result struct {
	InputID   string
	PlainText string
	Blocks    []TextBlock
	Language  string
}

// Words flattens every recognized word in reading order.
func (r Result) Words() []TextWord {
	var out []TextWord
	for _, b := range r.Blocks {
		for _, l := range b.Lines {
			out = append(out, l.Words...)
		}
	}
	return out
}

// Engine is the simplest OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// BatchEngine handles multiple images in a single call.
type BatchEngine interface {
	Engine
	RecognizeBatch(ctx context.Context, inputs []Input) ([]Result, error)
}

// SplitLines breaks words given in reading order into lines. A word starts
// a new line when its vertical centre lies below the previous word.
func SplitLines(words []TextWord) []TextLine {
	var lines []TextLine
	var cur []TextWord
	flush := func() {
		if len(cur) == 0 {
			return
		}
		texts := make([]string, len(cur))
		var conf float64
		for i, w := range cur {
			texts[i] = w.Text
			conf += w.Confidence
		}
		lines = append(lines, TextLine{
			Text:       strings.Join(texts, " "),
			Bounds:     Union(cur),
			Words:      cur,
			Confidence: conf / float64(len(cur)),
		})
		cur = nil
	}
	for _, w := range words {
		if n := len(cur); n > 0 {
			prev := cur[n-1].Bounds
			if w.Bounds.Y+w.Bounds.Height/2 > prev.Y+prev.Height {
				flush()
			}
		}
		cur = append(cur, w)
	}
	flush()
	return lines
}

// Union returns the smallest region covering every word.
func Union(words []TextWord) Region {
	if len(words) == 0 {
		return Region{}
	}
	minX, minY := math.MaxFloat64, math.MaxFloat64
	var maxX, maxY float64
	for _, w := range words {
		minX = math.Min(minX, w.Bounds.X)
		minY = math.Min(minY, w.Bounds.Y)
		maxX = math.Max(maxX, w.Bounds.X+w.Bounds.Width)
		maxY = math.Max(maxY, w.Bounds.Y+w.Bounds.Height)
	}
	return Region{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
