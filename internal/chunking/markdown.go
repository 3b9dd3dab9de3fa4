// Package chunking splits document content into token-bounded fragments
// and maps markdown fragments to the navigation anchor of their nearest
// preceding section header.
package chunking

import "strings"

// Header is a markdown section header located in document content.
type Header struct {
	// Text is the header title without the leading hash marks.
	Text string

	// Level is the header depth (1 for #, 2 for ##, ...).
	Level int

	// Offset is the byte offset of the header line within the content.
	Offset int

	// Anchor is the navigation anchor derived from Text.
	Anchor string
}

// HeaderToAnchor converts a header title to its navigation anchor:
// lowercase, spaces become hyphens, everything outside [a-z0-9-] is
// removed, and leading/trailing hyphens are trimmed. An empty result
// means the header yields no anchor.
func HeaderToAnchor(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}

// ExtractHeaders scans markdown content for ATX headers, skipping
// fenced code blocks. Headers are returned in document order.
func ExtractHeaders(content string) []Header {
	var headers []Header

	offset := 0
	inFence := false
	for offset < len(content) {
		next := len(content)
		line := content[offset:]
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
			next = offset + nl + 1
		}

		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		} else if !inFence {
			if h, ok := parseHeaderLine(line, offset); ok {
				headers = append(headers, h)
			}
		}

		offset = next
	}

	return headers
}

// parseHeaderLine recognises an ATX header at column 0: one to three
// hash marks followed by a space and the title. Deeper headers are not
// section anchors.
func parseHeaderLine(line string, offset int) (Header, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 3 {
		return Header{}, false
	}
	if level < len(line) && line[level] != ' ' {
		return Header{}, false
	}

	title := strings.TrimSpace(line[level:])
	// Strip an optional closing hash sequence ("## Title ##").
	if stripped := strings.TrimRight(title, "#"); stripped != title && strings.HasSuffix(stripped, " ") {
		title = strings.TrimRight(stripped, " ")
	}

	return Header{
		Text:   title,
		Level:  level,
		Offset: offset,
		Anchor: HeaderToAnchor(title),
	}, true
}

// NearestAnchor returns the anchor of the closest header strictly
// before the given offset. Among headers at the same offset the lowest
// level wins. Content before the first header has no anchor.
func NearestAnchor(headers []Header, offset int) string {
	best := -1
	for i, h := range headers {
		if h.Offset >= offset {
			continue
		}
		if best < 0 ||
			h.Offset > headers[best].Offset ||
			(h.Offset == headers[best].Offset && h.Level < headers[best].Level) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return headers[best].Anchor
}
