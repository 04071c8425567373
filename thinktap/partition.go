package thinktap

import (
	"strings"

	"google.golang.org/genai"
)

// thoughtSeparator joins extracted thought segments. Blank-line joining
// keeps separately emitted reasoning passages readable downstream.
const thoughtSeparator = "\n\n"

// partKind discriminates response-part shapes at the SDK boundary so the
// partition logic never probes field combinations inline.
type partKind int

const (
	partFinal partKind = iota
	partThought
)

// classifyPart maps one SDK part to its partition. A part flagged as a
// thought but carrying no text is treated as final content: an empty
// "thought" holds nothing worth extracting, and dropping it could lose a
// non-text payload (inline data, function call) that happened to carry a
// stray flag.
func classifyPart(p *genai.Part) partKind {
	if p != nil && p.Thought && p.Text != "" {
		return partThought
	}
	return partFinal
}

// PartitionThoughts splits a raw provider response into thought and final
// segments. Thought parts are removed from the first candidate's parts
// slice in place, so every holder of the response observes the filtered
// content, and their text is returned joined with blank lines.
//
// The second return value is false when no non-empty thought part was
// found, letting callers distinguish "no reasoning" from empty reasoning.
// A nil or content-less response is left untouched and reported the same
// way; downstream handling of malformed responses stays the caller's
// responsibility. Calling PartitionThoughts again on an already-filtered
// response is a no-op.
func PartitionThoughts(res *genai.GenerateContentResponse) (string, bool) {
	if res == nil || len(res.Candidates) == 0 {
		return "", false
	}
	content := res.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", false
	}

	var thoughts []string
	final := content.Parts[:0]
	for _, part := range content.Parts {
		if classifyPart(part) == partThought {
			thoughts = append(thoughts, part.Text)
			continue
		}
		final = append(final, part)
	}
	content.Parts = final

	if len(thoughts) == 0 {
		return "", false
	}
	return strings.Join(thoughts, thoughtSeparator), true
}

// candidateText renders the remaining final parts of the first candidate
// as plain text. Multiple text parts concatenate with a newline, matching
// the non-streaming result shape callers already consume.
func candidateText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if part == nil || part.Text == "" || part.Thought {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

// streamText renders a streamed chunk's final parts without separators:
// stream fragments are pre-segmented pieces meant to concatenate directly.
func streamText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}
