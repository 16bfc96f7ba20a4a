package fonts

import (
	"bytes"
	"fmt"
	"sync"
	"unicode"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// shapeSize is the pixel size text is shaped at; advances are divided by it
// to get em units.
const shapeSize = 1000

// Shaper runs HarfBuzz shaping over a single face. The underlying shaper
// keeps scratch buffers, so calls are serialised.
type Shaper struct {
	mu     sync.Mutex
	face   *gofont.Face
	shaper shaping.HarfbuzzShaper
}

// NewShaper parses a TrueType or OpenType font program.
func NewShaper(ttf []byte) (*Shaper, error) {
	if len(ttf) == 0 {
		return nil, fmt.Errorf("font data is empty")
	}
	face, err := gofont.ParseTTF(bytes.NewReader(ttf))
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Shaper{face: face}, nil
}

// Advances shapes text and returns one advance per rune in em units. Runes
// folded into a ligature by the shaper report zero.
func (s *Shaper) Advances(text string) []float64 {
	runes := []rune(text)
	adv := make([]float64, len(runes))
	if len(runes) == 0 {
		return adv
	}
	script := DetectScript(runes)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: scriptDirection(script),
		Face:      s.face,
		Size:      fixed.Int26_6(shapeSize * 64),
		Script:    script,
		Language:  language.DefaultLanguage(),
	}

	s.mu.Lock()
	out := s.shaper.Shape(input)
	s.mu.Unlock()

	for _, g := range out.Glyphs {
		if g.ClusterIndex < 0 || g.ClusterIndex >= len(adv) {
			continue
		}
		adv[g.ClusterIndex] += float64(g.XAdvance) / 64 / shapeSize
	}
	return adv
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew, language.Syriac, language.Thaana, language.Nko:
		return di.DirectionRTL
	default:
		return di.DirectionLTR
	}
}

// DetectScript returns the dominant script of runes, Latin when none is
// recognised. Ties keep the script seen first.
func DetectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	maxCount := 0
	best := language.Latin
	for _, r := range runes {
		script := scriptFromRune(r)
		if script == language.Unknown {
			continue
		}
		counts[script]++
		if counts[script] > maxCount {
			maxCount = counts[script]
			best = script
		}
	}
	return best
}

var scriptTables = []struct {
	table  *unicode.RangeTable
	script language.Script
}{
	{unicode.Arabic, language.Arabic},
	{unicode.Hebrew, language.Hebrew},
	{unicode.Latin, language.Latin},
	{unicode.Cyrillic, language.Cyrillic},
	{unicode.Greek, language.Greek},
	{unicode.Thai, language.Thai},
	{unicode.Devanagari, language.Devanagari},
	{unicode.Han, language.Han},
	{unicode.Hiragana, language.Hiragana},
	{unicode.Katakana, language.Katakana},
	{unicode.Hangul, language.Hangul},
}

func scriptFromRune(r rune) language.Script {
	for _, st := range scriptTables {
		if unicode.Is(st.table, r) {
			return st.script
		}
	}
	return language.Unknown
}
