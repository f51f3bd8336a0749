// Package vision suggests tags for a photo using an image-capable model.
package vision

import (
	"context"
	"io"
)

// MaxTags caps how many suggestions are returned.
const MaxTags = 5

// TagPrompt is the shared prompt used by all vision adapters.
const TagPrompt = `Suggest up to 5 short tags for this personal journal photo.
Each tag is one or two lowercase words describing the place, activity, mood or
main subject. Respond with one tag per line and nothing else.`

type TagSuggester interface {
	SuggestTags(ctx context.Context, r io.Reader, mimeType string) (*Suggestion, error)
}

type Suggestion struct {
	Tags        []string
	RawResponse string
}
