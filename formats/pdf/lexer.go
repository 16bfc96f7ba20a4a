package pdf

import (
	"bytes"
	"errors"
	"io"
	"strconv"
)

type tokenKind int

const (
	tokNumber      tokenKind = iota
	tokString                // literal or hex string
	tokName                  // '/Name' without the slash
	tokKeyword               // operators and true/false/null
	tokArrayStart            // '['
	tokArrayEnd              // ']'
	tokDictStart             // '<<'
	tokDictEnd               // '>>'
	tokInlineImage           // payload between ID and EI
)

type token struct {
	kind tokenKind
	num  float64
	str  []byte
	text string // name or keyword
}

var errUnterminated = errors.New("unterminated token")

// lexer tokenizes a decoded page content stream held in memory.
type lexer struct {
	data []byte
	pos  int
}

func newLexer(data []byte) *lexer { return &lexer{data: data} }

// next returns io.EOF once the stream is exhausted.
func (l *lexer) next() (token, error) {
	l.skipWSAndComments()
	if l.pos >= len(l.data) {
		return token{}, io.EOF
	}
	c := l.data[l.pos]
	switch c {
	case '<':
		if l.peek(1) == '<' {
			l.pos += 2
			return token{kind: tokDictStart}, nil
		}
		return l.scanHexString()
	case '>':
		if l.peek(1) == '>' {
			l.pos += 2
			return token{kind: tokDictEnd}, nil
		}
		l.pos++
		return token{kind: tokKeyword, text: ">"}, nil
	case '[':
		l.pos++
		return token{kind: tokArrayStart}, nil
	case ']':
		l.pos++
		return token{kind: tokArrayEnd}, nil
	case '(':
		return l.scanLiteralString()
	case '/':
		return l.scanName(), nil
	}
	if isDigitStart(c) {
		if tok, ok := l.scanNumber(); ok {
			return tok, nil
		}
	}
	return l.scanKeyword()
}

func (l *lexer) peek(n int) byte {
	if l.pos+n >= len(l.data) {
		return 0
	}
	return l.data[l.pos+n]
}

func (l *lexer) skipWSAndComments() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isWhitespace(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && !isEOL(l.data[l.pos]) {
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *lexer) scanName() token {
	l.pos++ // '/'
	var out bytes.Buffer
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isDelimiter(c) {
			break
		}
		if c == '#' && l.pos+2 < len(l.data) {
			out.WriteByte(fromHex(l.data[l.pos+1])<<4 | fromHex(l.data[l.pos+2]))
			l.pos += 3
			continue
		}
		out.WriteByte(c)
		l.pos++
	}
	return token{kind: tokName, text: out.String()}
}

func (l *lexer) scanLiteralString() (token, error) {
	l.pos++ // '('
	var buf bytes.Buffer
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch c {
		case '\\':
			l.pos++
			if l.pos >= len(l.data) {
				return token{}, errUnterminated
			}
			esc := l.data[l.pos]
			switch {
			case esc == '\r':
				l.pos++
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case esc == '\n':
				l.pos++
			case esc >= '0' && esc <= '7':
				val := int(esc - '0')
				l.pos++
				for k := 0; k < 2 && l.pos < len(l.data); k++ {
					d := l.data[l.pos]
					if d < '0' || d > '7' {
						break
					}
					val = val<<3 + int(d-'0')
					l.pos++
				}
				buf.WriteByte(byte(val))
			default:
				buf.WriteByte(translateEscape(esc))
				l.pos++
			}
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				l.pos++
				return token{kind: tokString, str: buf.Bytes()}, nil
			}
		}
		buf.WriteByte(c)
		l.pos++
	}
	return token{}, errUnterminated
}

func (l *lexer) scanHexString() (token, error) {
	l.pos++ // '<'
	var nibbles []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			if len(nibbles)%2 == 1 {
				nibbles = append(nibbles, '0')
			}
			out := make([]byte, 0, len(nibbles)/2)
			for i := 0; i < len(nibbles); i += 2 {
				out = append(out, fromHex(nibbles[i])<<4|fromHex(nibbles[i+1]))
			}
			return token{kind: tokString, str: out}, nil
		}
		if !isWhitespace(c) {
			nibbles = append(nibbles, c)
		}
	}
	return token{}, errUnterminated
}

func (l *lexer) scanNumber() (token, bool) {
	start := l.pos
	seenDigit := false
	for l.pos < len(l.data) && isDigitStart(l.data[l.pos]) {
		if c := l.data[l.pos]; c >= '0' && c <= '9' {
			seenDigit = true
		}
		l.pos++
	}
	if !seenDigit {
		l.pos = start
		return token{}, false
	}
	f, err := strconv.ParseFloat(string(l.data[start:l.pos]), 64)
	if err != nil {
		// Malformed numbers such as "1.2.3" read as zero.
		f = 0
	}
	return token{kind: tokNumber, num: f}, true
}

func (l *lexer) scanKeyword() (token, error) {
	start := l.pos
	for l.pos < len(l.data) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		// Stray delimiter such as ')' or '{'.
		l.pos++
	}
	kw := string(l.data[start:l.pos])
	if kw == "ID" {
		return l.scanInlineImage()
	}
	return token{kind: tokKeyword, text: kw}, nil
}

// scanInlineImage skips the binary payload of BI ... ID ... EI. EI must sit
// on its own line boundary to avoid matching inside the data.
func (l *lexer) scanInlineImage() (token, error) {
	if l.pos < len(l.data) && isWhitespace(l.data[l.pos]) {
		l.pos++
	}
	dataStart := l.pos
	for l.pos+1 < len(l.data) {
		if l.data[l.pos] == 'E' && l.data[l.pos+1] == 'I' &&
			l.pos > dataStart && isWhitespace(l.data[l.pos-1]) &&
			(l.pos+2 >= len(l.data) || isDelimiter(l.data[l.pos+2])) {
			payload := l.data[dataStart : l.pos-1]
			l.pos += 2
			return token{kind: tokInlineImage, str: payload}, nil
		}
		l.pos++
	}
	return token{}, errUnterminated
}

func isDigitStart(c byte) bool { return c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') }

func isWhitespace(c byte) bool {
	return c == 0x00 || c == 0x09 || c == 0x0A || c == 0x0C || c == 0x0D || c == 0x20
}

func isEOL(c byte) bool { return c == '\r' || c == '\n' }

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	default:
		return isWhitespace(c)
	}
}

func translateEscape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	default:
		return c
	}
}

func fromHex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return 0
	}
}
