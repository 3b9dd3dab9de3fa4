package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// byteCodec treats every byte as one token. It roundtrips exactly,
// which keeps fragment offsets verifiable in tests.
type byteCodec struct{}

func (byteCodec) Encode(text string) []int {
	tokens := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		tokens[i] = int(text[i])
	}
	return tokens
}

func (byteCodec) Decode(tokens []int) string {
	b := make([]byte, len(tokens))
	for i, tok := range tokens {
		b[i] = byte(tok)
	}
	return string(b)
}

func newTestSplitter(t *testing.T, maxTokens, minTokens int) *Splitter {
	t.Helper()
	s, err := NewSplitter(
		WithCodec(byteCodec{}),
		WithMaxTokens(maxTokens),
		WithMinTokens(minTokens),
	)
	require.NoError(t, err)
	return s
}

func TestSplitter_MergesSmallParagraphs(t *testing.T) {
	s := newTestSplitter(t, 100, 10)

	content := "first para\n\nsecond para\n\nthird para"
	frags := s.Split(content)

	require.Len(t, frags, 1)
	assert.Equal(t, content, frags[0].Text)
	assert.Equal(t, 0, frags[0].Offset)
}

func TestSplitter_RespectsTokenBound(t *testing.T) {
	s := newTestSplitter(t, 25, 5)

	content := "aaaaaaaaaaaaaaaaaaaa\n\nbbbbbbbbbbbbbbbbbbbb\n\ncccccccccccccccccccc"
	frags := s.Split(content)

	require.Len(t, frags, 3)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaa", frags[0].Text)
	assert.Equal(t, "bbbbbbbbbbbbbbbbbbbb", frags[1].Text)
	assert.Equal(t, "cccccccccccccccccccc", frags[2].Text)

	// Offsets point at the original content.
	for _, f := range frags {
		assert.Equal(t, f.Text, content[f.Offset:f.Offset+len(f.Text)])
	}
}

func TestSplitter_SplitsOversizedParagraph(t *testing.T) {
	s := newTestSplitter(t, 10, 3)

	content := strings.Repeat("x", 25)
	frags := s.Split(content)

	require.GreaterOrEqual(t, len(frags), 3)

	// The pieces reassemble the paragraph exactly.
	var rebuilt strings.Builder
	for _, f := range frags {
		assert.Equal(t, f.Text, content[f.Offset:f.Offset+len(f.Text)])
		rebuilt.WriteString(f.Text)
	}
	assert.Equal(t, content, rebuilt.String())

	// No tiny trailing fragment.
	last := frags[len(frags)-1]
	assert.GreaterOrEqual(t, len(last.Text), 3)
}

func TestSplitter_EmptyContent(t *testing.T) {
	s := newTestSplitter(t, 100, 10)

	assert.Nil(t, s.Split(""))
	assert.Nil(t, s.Split("\n\n\n"))
}

func TestSplitter_BlankLinesWithSpacesSeparateParagraphs(t *testing.T) {
	s := newTestSplitter(t, 5, 1)

	content := "aaaa\n   \nbbbb"
	frags := s.Split(content)

	require.Len(t, frags, 2)
	assert.Equal(t, "aaaa", frags[0].Text)
	assert.Equal(t, "bbbb", frags[1].Text)
	assert.Equal(t, 0, frags[0].Offset)
	assert.Equal(t, strings.Index(content, "bbbb"), frags[1].Offset)
}
