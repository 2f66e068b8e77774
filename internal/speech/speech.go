// Package speech turns reply text into MP3 audio.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// DefaultBaseURL is the public endpoint that gTTS uses.
const DefaultBaseURL = "https://translate.google.com/translate_tts"

// maxChunkRunes is the longest text the endpoint accepts per request.
const maxChunkRunes = 100

const maxChunkBytes = 1 << 20

var ErrEmptyText = errors.New("nothing to synthesize")

// Synthesizer returns compressed audio for text in the given language code.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, langCode string) ([]byte, error)
}

// GoogleTTS fetches MP3 audio chunk by chunk and concatenates it.
type GoogleTTS struct {
	baseURL string
	client  *http.Client
}

var _ Synthesizer = (*GoogleTTS)(nil)

func NewGoogleTTS(baseURL string, client *http.Client) *GoogleTTS {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GoogleTTS{baseURL: baseURL, client: client}
}

// Synthesize returns audio/mpeg bytes.
func (g *GoogleTTS) Synthesize(ctx context.Context, text, langCode string) ([]byte, error) {
	chunks := splitText(text, maxChunkRunes)
	if len(chunks) == 0 {
		return nil, ErrEmptyText
	}
	if langCode == "" {
		langCode = "en"
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := g.fetch(ctx, &audio, chunk, langCode, i, len(chunks)); err != nil {
			return nil, err
		}
	}
	return audio.Bytes(), nil
}

func (g *GoogleTTS) fetch(ctx context.Context, dst *bytes.Buffer, chunk, lang string, idx, total int) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", chunk)
	q.Set("idx", strconv.Itoa(idx))
	q.Set("total", strconv.Itoa(total))
	q.Set("textlen", strconv.Itoa(len([]rune(chunk))))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("tts request %d/%d: %w", idx+1, total, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts request %d/%d: unexpected status %d", idx+1, total, resp.StatusCode)
	}
	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxChunkBytes+1))
	if err != nil {
		return fmt.Errorf("read tts audio: %w", err)
	}
	if len(audio) > maxChunkBytes {
		return fmt.Errorf("tts response %d/%d exceeds %d bytes", idx+1, total, maxChunkBytes)
	}
	_, _ = dst.Write(audio)
	return nil
}

// splitText cuts text into pieces of at most limit runes, preferring
// sentence ends, then whitespace, and hard-splitting only long words.
func splitText(text string, limit int) []string {
	text = strings.Join(strings.Fields(text), " ")
	var out []string
	for text != "" {
		runes := []rune(text)
		if len(runes) <= limit {
			out = append(out, text)
			break
		}
		cut := cutPoint(runes[:limit+1])
		piece := strings.TrimSpace(string(runes[:cut]))
		if piece != "" {
			out = append(out, piece)
		}
		text = strings.TrimSpace(string(runes[cut:]))
	}
	return out
}

func cutPoint(window []rune) int {
	limit := len(window) - 1
	for i := limit; i > 0; i-- {
		switch window[i-1] {
		case '.', '!', '?', ';', ':', '।', ',':
			if unicode.IsSpace(window[i]) {
				return i
			}
		}
	}
	for i := limit; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i
		}
	}
	return limit
}
