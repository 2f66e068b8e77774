// Package llm talks to the hosted generative model used for answering
// questions, describing images and translating replies.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyReply is returned when the model answers with no text, which is
// also what a safety block looks like from the caller's side.
var ErrEmptyReply = errors.New("model returned an empty reply")

// Media is an inline attachment such as an uploaded image.
type Media struct {
	MIMEType string
	Data     []byte
}

// Prompt is one request: an instruction followed by either text or media.
type Prompt struct {
	Instruction string
	Text        string
	Media       *Media
}

// ContentGenerator produces text for a prompt.
type ContentGenerator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}
