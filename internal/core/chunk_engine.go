// ABOUTME: ChunkEngine splits guideline text into overlap-linked, section-aware chunks
// ABOUTME: Chunk bodies partition the source text exactly and IDs are deterministic
package core

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/harper/carrierfit/internal/models"
)

const (
	// DefaultTargetTokens is the soft upper bound on estimated tokens per chunk
	DefaultTargetTokens = 1000
	// DefaultOverlapWords is how many trailing words seed the next chunk
	DefaultOverlapWords = 150

	maxHeaderRunes         = 80
	maxNumberedHeaderWords = 6
)

var (
	markdownHeader = regexp.MustCompile(`^#{1,6}\s+\S`)
	keywordHeader  = regexp.MustCompile(`(?i)^(section|part|chapter|article)\s+[0-9ivxlc]+[.:)]?(\s|$)`)
	numberedHeader = regexp.MustCompile(`^\d+(\.\d+)*\.?\s+\p{Lu}`)
)

// ChunkEngine handles section-aware text chunking
type ChunkEngine struct {
	targetTokens int
	overlapWords int
}

// ChunkOption configures a ChunkEngine
type ChunkOption func(*ChunkEngine)

// WithTargetTokens sets the per-chunk token budget
func WithTargetTokens(n int) ChunkOption {
	return func(ce *ChunkEngine) {
		if n > 0 {
			ce.targetTokens = n
		}
	}
}

// WithOverlapWords sets the number of words carried into the next chunk
func WithOverlapWords(n int) ChunkOption {
	return func(ce *ChunkEngine) {
		if n >= 0 {
			ce.overlapWords = n
		}
	}
}

// NewChunkEngine creates a new ChunkEngine instance
func NewChunkEngine(opts ...ChunkOption) *ChunkEngine {
	ce := &ChunkEngine{
		targetTokens: DefaultTargetTokens,
		overlapWords: DefaultOverlapWords,
	}
	for _, opt := range opts {
		opt(ce)
	}
	return ce
}

// EstimateTokens approximates token count as ceil(runes/4)
func EstimateTokens(s string) int {
	return (utf8.RuneCountInString(s) + 3) / 4
}

// unit is a sentence-like span [start,end) of the source text
type unit struct {
	start, end int
	header     bool
}

// Chunk splits text into chunks for documentID. It never fails: empty text
// yields no chunks and any non-empty text yields at least one.
func (ce *ChunkEngine) Chunk(documentID, text string) []models.Chunk {
	var chunks []models.Chunk
	section := ""

	// The open buffer is text[ovStart:bufEnd]; its body starts at bodyStart.
	ovStart, bodyStart, bufEnd := 0, 0, 0

	flush := func() {
		chunkText := text[ovStart:bufEnd]
		seq := len(chunks)
		chunks = append(chunks, models.Chunk{
			ID:            models.ChunkID(documentID, seq),
			DocumentID:    documentID,
			Sequence:      seq,
			Section:       section,
			Text:          chunkText,
			OverlapLen:    bodyStart - ovStart,
			TokenEstimate: EstimateTokens(chunkText),
		})
	}

	for _, u := range splitUnits(text) {
		if u.header {
			if bufEnd > bodyStart {
				flush()
			}
			// No overlap crosses a section boundary
			section = headerLabel(text[u.start:u.end])
			ovStart, bodyStart, bufEnd = u.start, u.start, u.end
			continue
		}

		if bufEnd > bodyStart && EstimateTokens(text[ovStart:u.end]) > ce.targetTokens {
			flush()
			ovStart = overlapStart(text, ovStart, bufEnd, ce.overlapWords)
			bodyStart = bufEnd
		}
		bufEnd = u.end
	}

	if bufEnd > bodyStart {
		flush()
	}
	return chunks
}

// splitUnits breaks text after newlines and after sentence punctuation followed
// by whitespace. Header lines are returned whole. The units partition text.
func splitUnits(text string) []unit {
	var units []unit
	s := 0
	for s < len(text) {
		if s == 0 || text[s-1] == '\n' {
			lineEnd := strings.IndexByte(text[s:], '\n')
			e := len(text)
			if lineEnd >= 0 {
				e = s + lineEnd + 1
			}
			if isHeader(text[s:e]) {
				units = append(units, unit{start: s, end: e, header: true})
				s = e
				continue
			}
		}

		e := sentenceEnd(text, s)
		units = append(units, unit{start: s, end: e})
		s = e
	}
	return units
}

// sentenceEnd returns the end of the unit beginning at s
func sentenceEnd(text string, s int) int {
	for i := s; i < len(text); i++ {
		switch text[i] {
		case '\n':
			return i + 1
		case '.', '!', '?':
			if i+1 < len(text) && isBreakSpace(text[i+1]) {
				j := i + 1
				for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == '\r') {
					j++
				}
				if j < len(text) && text[j] == '\n' {
					j++
				}
				return j
			}
		}
	}
	return len(text)
}

func isBreakSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// isHeader reports whether a whole line looks like a section heading
func isHeader(line string) bool {
	line = strings.TrimSpace(line)
	n := utf8.RuneCountInString(line)
	if n < 3 || n > maxHeaderRunes {
		return false
	}
	if markdownHeader.MatchString(line) {
		return true
	}
	if strings.HasSuffix(line, ".") {
		return false
	}
	if keywordHeader.MatchString(line) {
		return true
	}
	if numberedHeader.MatchString(line) {
		// Long numbered lines are list items, not headings
		return len(strings.Fields(line)) <= maxNumberedHeaderWords
	}
	return isAllCaps(line)
}

// isAllCaps requires at least four letters and no lowercase letters
func isAllCaps(line string) bool {
	letters := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			if unicode.IsLower(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 4
}

// headerLabel strips markdown markers and surrounding whitespace
func headerLabel(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "#")
	return strings.TrimSpace(line)
}

// overlapStart returns the start of the trailing n words of text[lo:hi],
// or lo when the span holds fewer than n words
func overlapStart(text string, lo, hi, n int) int {
	if n <= 0 {
		return hi
	}
	i := hi
	for count := 0; count < n; count++ {
		for i > lo && isASCIISpace(text[i-1]) {
			i--
		}
		if i == lo {
			return lo
		}
		for i > lo && !isASCIISpace(text[i-1]) {
			i--
		}
	}
	return i
}

func isASCIISpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}
