package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"

	"github.com/wudi/docview/content"
	"github.com/wudi/docview/geometry"
)

// AdvanceFunc returns per-rune advances in em units.
type AdvanceFunc func(text string) []float64

type textState struct {
	font      string
	size      float64
	charSpace float64
	wordSpace float64
	scale     float64 // horizontal scaling, percent
	leading   float64
	rise      float64
}

type graphicsState struct {
	ctm  geometry.Matrix
	text textState
}

type operand struct {
	tok token
	arr []token
}

// textLayer interprets the text operators of a content stream and records
// every shown string as a GlyphRun in page space.
type textLayer struct {
	gs    graphicsState
	stack []graphicsState
	tm    geometry.Matrix
	tlm   geometry.Matrix

	advances AdvanceFunc

	runs    []content.GlyphRun
	text    strings.Builder
	runes   int
	prevEnd geometry.Point
	hasPrev bool
}

// ExtractGlyphs runs the text operators of a decoded content stream and
// returns the positioned runs together with the page text they index into.
// Both are in NFC so run offsets line up with search offsets.
func ExtractGlyphs(stream []byte, advances AdvanceFunc) ([]content.GlyphRun, string, error) {
	tl := &textLayer{
		gs:       graphicsState{ctm: geometry.Identity(), text: textState{scale: 100}},
		tm:       geometry.Identity(),
		tlm:      geometry.Identity(),
		advances: advances,
	}
	err := tl.run(stream)
	runs, text := composeRuns(tl.runs, tl.text.String())
	return runs, text, err
}

// segment is one NFC composition unit: raw runes [raw, rawEnd) of the page
// text became text, starting at rune at of the composed page text.
type segment struct {
	raw, rawEnd int
	at          int
	text        string
}

// composeRuns rewrites the page text and its runs to NFC. A composed
// sequence belongs to the run it starts in and carries the summed advance of
// its parts on its first rune. Runes that compose into the previous run are
// dropped from their own run, whose origin moves past them.
func composeRuns(runs []content.GlyphRun, text string) ([]content.GlyphRun, string) {
	if norm.NFC.IsNormalString(text) {
		return runs, text
	}
	var (
		segs    []segment
		out     strings.Builder
		it      norm.Iter
		pending []byte
		raw, at int
		prev    int
	)
	it.InitString(norm.NFC, text)
	for !it.Done() {
		b := it.Next()
		out.Write(b)
		pending = append(pending, b...)
		// A multi-segment decomposition yields pieces before the input moves.
		n := utf8.RuneCountInString(text[prev:it.Pos()])
		if n == 0 && !it.Done() {
			continue
		}
		prev = it.Pos()
		segs = append(segs, segment{raw: raw, rawEnd: raw + n, at: at, text: string(pending)})
		raw += n
		at += utf8.RuneCount(pending)
		pending = pending[:0]
	}

	composed := make([]content.GlyphRun, 0, len(runs))
	si := 0
	for _, run := range runs {
		start := run.Offset
		end := start + utf8.RuneCountInString(run.Text)
		adv := func(i int) float64 {
			if i-start < len(run.Advances) {
				return run.Advances[i-start]
			}
			return 0
		}
		for si < len(segs) && segs[si].rawEnd <= start {
			si++
		}
		var (
			txt      strings.Builder
			advances []float64
			lead     float64
			offset   = -1
		)
		for j := si; j < len(segs) && segs[j].raw < end; j++ {
			sg := segs[j]
			var w float64
			for i := max(sg.raw, start); i < min(sg.rawEnd, end); i++ {
				w += adv(i)
			}
			if sg.raw < start {
				lead += w
				continue
			}
			if offset < 0 {
				offset = sg.at
			}
			txt.WriteString(sg.text)
			advances = append(advances, w)
			for k := utf8.RuneCountInString(sg.text); k > 1; k-- {
				advances = append(advances, 0)
			}
		}
		if offset < 0 {
			continue
		}
		m := run.Matrix
		if lead != 0 {
			m = geometry.Translate(lead, 0).Mul(m)
		}
		composed = append(composed, content.GlyphRun{Text: txt.String(), Offset: offset, Matrix: m, Advances: advances})
	}
	return composed, out.String()
}

func (tl *textLayer) run(stream []byte) error {
	lx := newLexer(stream)
	var ops []operand
	for {
		tok, err := lx.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("content stream at byte %d: %w", lx.pos, err)
		}
		switch tok.kind {
		case tokArrayStart:
			arr, err := collectArray(lx)
			if err != nil {
				return fmt.Errorf("content stream array: %w", err)
			}
			ops = append(ops, operand{arr: arr})
		case tokDictStart:
			if err := skipDict(lx); err != nil {
				return fmt.Errorf("content stream dictionary: %w", err)
			}
			ops = append(ops, operand{})
		case tokKeyword:
			tl.apply(tok.text, ops)
			ops = ops[:0]
		case tokInlineImage:
			ops = ops[:0]
		default:
			ops = append(ops, operand{tok: tok})
		}
	}
}

func collectArray(lx *lexer) ([]token, error) {
	var out []token
	for {
		tok, err := lx.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errUnterminated
			}
			return nil, err
		}
		switch tok.kind {
		case tokArrayEnd:
			return out, nil
		case tokArrayStart:
			if _, err := collectArray(lx); err != nil {
				return nil, err
			}
		default:
			out = append(out, tok)
		}
	}
}

func skipDict(lx *lexer) error {
	depth := 1
	for depth > 0 {
		tok, err := lx.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errUnterminated
			}
			return err
		}
		switch tok.kind {
		case tokDictStart:
			depth++
		case tokDictEnd:
			depth--
		}
	}
	return nil
}

func nums(ops []operand, n int) ([]float64, bool) {
	if len(ops) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i, op := range ops[len(ops)-n:] {
		if op.arr != nil || op.tok.kind != tokNumber {
			return nil, false
		}
		out[i] = op.tok.num
	}
	return out, true
}

func lastString(ops []operand) ([]byte, bool) {
	if len(ops) == 0 || ops[len(ops)-1].tok.kind != tokString || ops[len(ops)-1].arr != nil {
		return nil, false
	}
	return ops[len(ops)-1].tok.str, true
}

func (tl *textLayer) apply(op string, ops []operand) {
	ts := &tl.gs.text
	switch op {
	case "q":
		tl.stack = append(tl.stack, tl.gs)
	case "Q":
		if n := len(tl.stack); n > 0 {
			tl.gs = tl.stack[n-1]
			tl.stack = tl.stack[:n-1]
		}
	case "cm":
		if v, ok := nums(ops, 6); ok {
			tl.gs.ctm = geometry.Matrix{v[0], v[1], v[2], v[3], v[4], v[5]}.Mul(tl.gs.ctm)
		}
	case "BT":
		tl.tm, tl.tlm = geometry.Identity(), geometry.Identity()
	case "Tf":
		if len(ops) >= 2 && ops[len(ops)-2].tok.kind == tokName {
			ts.font = ops[len(ops)-2].tok.text
		}
		if v, ok := nums(ops, 1); ok {
			ts.size = v[0]
		}
	case "Tc":
		if v, ok := nums(ops, 1); ok {
			ts.charSpace = v[0]
		}
	case "Tw":
		if v, ok := nums(ops, 1); ok {
			ts.wordSpace = v[0]
		}
	case "Tz":
		if v, ok := nums(ops, 1); ok {
			ts.scale = v[0]
		}
	case "TL":
		if v, ok := nums(ops, 1); ok {
			ts.leading = v[0]
		}
	case "Ts":
		if v, ok := nums(ops, 1); ok {
			ts.rise = v[0]
		}
	case "Td":
		if v, ok := nums(ops, 2); ok {
			tl.moveLine(v[0], v[1])
		}
	case "TD":
		if v, ok := nums(ops, 2); ok {
			ts.leading = -v[1]
			tl.moveLine(v[0], v[1])
		}
	case "Tm":
		if v, ok := nums(ops, 6); ok {
			tl.tlm = geometry.Matrix{v[0], v[1], v[2], v[3], v[4], v[5]}
			tl.tm = tl.tlm
		}
	case "T*":
		tl.moveLine(0, -ts.leading)
	case "Tj":
		if s, ok := lastString(ops); ok {
			tl.show(s)
		}
	case "'":
		if s, ok := lastString(ops); ok {
			tl.moveLine(0, -ts.leading)
			tl.show(s)
		}
	case "\"":
		if len(ops) >= 3 {
			if v, ok := nums(ops[:len(ops)-1], 2); ok {
				ts.wordSpace, ts.charSpace = v[0], v[1]
			}
		}
		if s, ok := lastString(ops); ok {
			tl.moveLine(0, -ts.leading)
			tl.show(s)
		}
	case "TJ":
		if len(ops) == 0 || ops[len(ops)-1].arr == nil {
			return
		}
		for _, el := range ops[len(ops)-1].arr {
			switch el.kind {
			case tokString:
				tl.show(el.str)
			case tokNumber:
				tl.tm = geometry.Translate(-el.num/1000*ts.size*ts.scale/100, 0).Mul(tl.tm)
			}
		}
	}
}

func (tl *textLayer) moveLine(tx, ty float64) {
	tl.tlm = geometry.Translate(tx, ty).Mul(tl.tlm)
	tl.tm = tl.tlm
}

// show places one string. Character and word spacing are folded into the
// per-rune advances so highlight boxes and the text position agree.
func (tl *textLayer) show(raw []byte) {
	text := decodeString(raw)
	if text == "" {
		return
	}
	ts := tl.gs.text
	th := ts.scale / 100
	trm := geometry.Matrix{ts.size * th, 0, 0, ts.size, 0, ts.rise}.Mul(tl.tm).Mul(tl.gs.ctm)

	adv := append([]float64(nil), tl.advances(text)...)
	if ts.size != 0 {
		i := 0
		for _, r := range text {
			if i >= len(adv) {
				break
			}
			extra := ts.charSpace
			if r == ' ' {
				extra += ts.wordSpace
			}
			adv[i] += extra / ts.size
			i++
		}
	}
	var width float64
	for _, a := range adv {
		width += a
	}

	origin := trm.Apply(geometry.Point{})
	if tl.hasPrev {
		em := trm.ScaleY()
		switch {
		case math.Abs(origin.Y-tl.prevEnd.Y) > em/2:
			tl.writeSeparator("\n")
		case origin.X-tl.prevEnd.X > em*0.15:
			tl.writeSeparator(" ")
		}
	}

	tl.runs = append(tl.runs, content.GlyphRun{
		Text:     text,
		Offset:   tl.runes,
		Matrix:   trm,
		Advances: adv,
	})
	tl.text.WriteString(text)
	tl.runes += utf8.RuneCountInString(text)

	tl.tm = geometry.Translate(width*ts.size*th, 0).Mul(tl.tm)
	tl.prevEnd = trm.Apply(geometry.Point{X: width})
	tl.hasPrev = true
}

func (tl *textLayer) writeSeparator(s string) {
	tl.text.WriteString(s)
	tl.runes += utf8.RuneCountInString(s)
}

var utf16BOM = []byte{0xFE, 0xFF}

// decodeString maps a shown string to text. UTF-16BE strings carry a byte
// order mark; everything else is read as WinAnsi, which covers the simple
// fonts this text layer supports. Control bytes are dropped.
func decodeString(raw []byte) string {
	var s string
	if bytes.HasPrefix(raw, utf16BOM) {
		out, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return ""
		}
		s = string(out)
	} else {
		out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return ""
		}
		s = string(out)
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' {
			return -1
		}
		return r
	}, s)
}
