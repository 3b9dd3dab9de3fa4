package chunking

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultMaxTokens is the default token bound per fragment.
const DefaultMaxTokens = 512

// DefaultMinTokens is the size below which adjacent fragments are merged.
const DefaultMinTokens = 64

// TokenCodec encodes text to tokens and back. Decode must be the exact
// inverse of Encode so that fragment offsets stay byte-accurate.
type TokenCodec interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// tiktokenCodec wraps the cl100k_base BPE encoding.
type tiktokenCodec struct {
	enc *tiktoken.Tiktoken
}

func (c *tiktokenCodec) Encode(text string) []int {
	return c.enc.Encode(text, nil, nil)
}

func (c *tiktokenCodec) Decode(tokens []int) string {
	return c.enc.Decode(tokens)
}

// Fragment is a contiguous piece of document content with its byte
// offset in the original text.
type Fragment struct {
	Text   string
	Offset int
}

// Splitter produces token-bounded fragments from document content.
// Paragraphs are accumulated greedily up to the token bound; small
// adjacent paragraphs merge into one fragment, and paragraphs over
// the bound are split on token windows.
type Splitter struct {
	codec     TokenCodec
	maxTokens int
	minTokens int
}

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter)

// WithMaxTokens sets the token bound per fragment.
func WithMaxTokens(n int) SplitterOption {
	return func(s *Splitter) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithMinTokens sets the merge threshold for small fragments.
func WithMinTokens(n int) SplitterOption {
	return func(s *Splitter) {
		if n >= 0 {
			s.minTokens = n
		}
	}
}

// WithCodec replaces the default token codec.
func WithCodec(c TokenCodec) SplitterOption {
	return func(s *Splitter) {
		s.codec = c
	}
}

// NewSplitter creates a splitter with the given options. Without
// WithCodec it loads the cl100k_base encoding.
func NewSplitter(opts ...SplitterOption) (*Splitter, error) {
	s := &Splitter{
		maxTokens: DefaultMaxTokens,
		minTokens: DefaultMinTokens,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.minTokens >= s.maxTokens {
		s.minTokens = s.maxTokens / 4
	}

	if s.codec == nil {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("load token encoding: %w", err)
		}
		s.codec = &tiktokenCodec{enc: enc}
	}

	return s, nil
}

// Split breaks content into ordered fragments. Every fragment's Text
// is an exact slice of content starting at its Offset.
func (s *Splitter) Split(content string) []Fragment {
	paras := splitParagraphs(content)
	if len(paras) == 0 {
		return nil
	}

	var frags []Fragment

	// current accumulation window
	curStart, curEnd := -1, -1
	curTokens := 0

	flush := func() {
		if curStart >= 0 {
			frags = append(frags, Fragment{Text: content[curStart:curEnd], Offset: curStart})
			curStart, curEnd, curTokens = -1, -1, 0
		}
	}

	for _, p := range paras {
		text := content[p.start:p.end]
		n := len(s.codec.Encode(text))

		if n > s.maxTokens {
			flush()
			frags = append(frags, s.splitOversized(text, p.start)...)
			continue
		}

		if curStart < 0 {
			curStart, curEnd, curTokens = p.start, p.end, n
			continue
		}

		// +1 covers the paragraph separator tokens.
		if curTokens+n+1 <= s.maxTokens {
			curEnd = p.end
			curTokens += n + 1
		} else {
			flush()
			curStart, curEnd, curTokens = p.start, p.end, n
		}
	}
	flush()

	return frags
}

// splitOversized breaks a single paragraph that exceeds the token
// bound into windows. A trailing window smaller than the merge
// threshold is avoided by halving the final stretch.
func (s *Splitter) splitOversized(text string, base int) []Fragment {
	tokens := s.codec.Encode(text)

	var frags []Fragment
	consumed := 0
	for start := 0; start < len(tokens); {
		remaining := len(tokens) - start
		size := s.maxTokens
		if remaining > s.maxTokens && remaining < s.maxTokens+s.minTokens {
			size = remaining / 2
		}
		if size > remaining {
			size = remaining
		}

		piece := s.codec.Decode(tokens[start : start+size])
		frags = append(frags, Fragment{Text: piece, Offset: base + consumed})
		consumed += len(piece)
		start += size
	}

	return frags
}

// span marks a paragraph's byte range within the content.
type span struct {
	start, end int
}

// splitParagraphs finds maximal runs of non-blank lines.
func splitParagraphs(content string) []span {
	var paras []span

	offset := 0
	cur := span{start: -1}
	for offset < len(content) {
		next := len(content)
		line := content[offset:]
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
			next = offset + nl + 1
		}

		if strings.TrimSpace(line) == "" {
			if cur.start >= 0 {
				paras = append(paras, cur)
				cur = span{start: -1}
			}
		} else {
			if cur.start < 0 {
				cur.start = offset
			}
			cur.end = offset + len(line)
		}

		offset = next
	}
	if cur.start >= 0 {
		paras = append(paras, cur)
	}

	return paras
}
