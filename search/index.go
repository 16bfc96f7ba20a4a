// Package search finds literal, case-insensitive matches across the units
// of a document and keeps the cursor used to cycle through them.
package search

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

// DefaultContext is the number of characters kept on each side of a match.
const DefaultContext = 40

type Result struct {
	UnitIndex     int    `json:"unitIndex"`
	MatchText     string `json:"matchText"`
	ContextBefore string `json:"contextBefore"`
	ContextAfter  string `json:"contextAfter"`
	// CharOffset and Length count characters (runes) in the unit's text.
	CharOffset int `json:"charOffset"`
	Length     int `json:"length"`
}

var ErrBadQuery = errors.New("malformed search query")

// TextFunc returns the searchable text of a 1-indexed unit.
type TextFunc func(unit int) string

// Index holds the searchable text of every unit. Text is pulled through the
// TextFunc the first time a unit is searched and cached afterwards. An
// Index is safe for concurrent use.
type Index struct {
	mu      sync.Mutex
	count   int
	text    TextFunc
	cache   map[int]string
	context int
}

type Option func(*Index)

// WithContext sets the context window in characters.
func WithContext(n int) Option {
	return func(ix *Index) {
		if n >= 0 {
			ix.context = n
		}
	}
}

func NewIndex(count int, text TextFunc, opts ...Option) *Index {
	ix := &Index{count: count, text: text, cache: make(map[int]string), context: DefaultContext}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Text returns the cached text of a unit.
func (ix *Index) Text(unit int) string {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if s, ok := ix.cache[unit]; ok {
		return s
	}
	s := ix.text(unit)
	ix.cache[unit] = s
	return s
}

// Compile turns a query into the literal matcher used by Find.
func Compile(query string) (*regexp.Regexp, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	if !utf8.ValidString(q) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrBadQuery)
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(q))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadQuery, err)
	}
	return re, nil
}

// Find scans every unit in order. A blank query yields no results. Units
// are scanned one at a time and ctx is checked between them.
func (ix *Index) Find(ctx context.Context, query string) ([]Result, error) {
	re, err := Compile(query)
	if err != nil || re == nil {
		return nil, err
	}
	var out []Result
	for unit := 1; unit <= ix.count; unit++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, ix.findInUnit(re, unit)...)
	}
	return out, nil
}

func (ix *Index) findInUnit(re *regexp.Regexp, unit int) []Result {
	text := ix.Text(unit)
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]Result, 0, len(locs))
	runePos, bytePos := 0, 0
	for _, loc := range locs {
		runePos += utf8.RuneCountInString(text[bytePos:loc[0]])
		bytePos = loc[0]
		match := text[loc[0]:loc[1]]
		out = append(out, Result{
			UnitIndex:     unit,
			MatchText:     match,
			ContextBefore: lastRunes(text[:loc[0]], ix.context),
			ContextAfter:  firstRunes(text[loc[1]:], ix.context),
			CharOffset:    runePos,
			Length:        utf8.RuneCountInString(match),
		})
	}
	return out
}

func lastRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := len(s)
	for k := 0; k < n && i > 0; k++ {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return s[i:]
}

func firstRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for k := 0; k < n && i < len(s); k++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}

// Results is the outcome of one search together with its cursor.
type Results struct {
	Query   string
	Items   []Result
	current int
}

// NewResults wraps items with the cursor on the first entry.
func NewResults(query string, items []Result) *Results {
	return &Results{Query: query, Items: items}
}

func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Items)
}

// Index returns the cursor position, 0 when empty.
func (r *Results) Index() int {
	if r == nil {
		return 0
	}
	return r.current
}

func (r *Results) Current() (Result, bool) {
	if r.Len() == 0 {
		return Result{}, false
	}
	return r.Items[r.current], true
}

// Next advances the cursor, wrapping past the last entry.
func (r *Results) Next() (Result, bool) { return r.move(1) }

// Prev moves the cursor back, wrapping before the first entry.
func (r *Results) Prev() (Result, bool) { return r.move(-1) }

func (r *Results) move(step int) (Result, bool) {
	n := r.Len()
	if n == 0 {
		return Result{}, false
	}
	r.current = ((r.current+step)%n + n) % n
	return r.Items[r.current], true
}

// InUnit returns the positions in Items of the results on unit.
func (r *Results) InUnit(unit int) []int {
	if r == nil {
		return nil
	}
	var idx []int
	for i, it := range r.Items {
		if it.UnitIndex == unit {
			idx = append(idx, i)
		}
	}
	return idx
}
