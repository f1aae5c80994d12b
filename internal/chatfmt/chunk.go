// Package chatfmt renders plugin results as plain chat text that fits the
// transport's per-message byte limit.
package chatfmt

import (
	"strings"

	"github.com/rivo/uniseg"
)

// DefaultMaxBytes is the default per-message byte limit.
const DefaultMaxBytes = 400

// Chunk splits text into pieces of at most maxBytes bytes, cutting only on
// grapheme cluster boundaries. Joining the pieces yields text again. A text
// shorter than maxBytes is returned as is. A single grapheme cluster longer
// than maxBytes is emitted as its own piece.
func Chunk(text string, maxBytes int) []string {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(text) < maxBytes {
		return []string{text}
	}

	var (
		chunks []string
		cur    strings.Builder
		state  = -1
	)
	rest := text
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if cur.Len() > 0 && cur.Len()+len(cluster) > maxBytes {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		cur.WriteString(cluster)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// Compose turns an optional notice and a body into the ordered list of
// messages to send. The notice always travels alone and comes first.
func Compose(notice, body string, maxBytes int) []string {
	var out []string
	if notice != "" {
		out = append(out, Chunk(notice, maxBytes)...)
	}
	if body != "" {
		out = append(out, Chunk(body, maxBytes)...)
	}
	return out
}
