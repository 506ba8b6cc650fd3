// Package translatetts builds Google Translate text-to-speech URLs. The
// endpoint caps each request at a fixed character budget, so longer text is
// split on punctuation boundaries into chunks and mapped to one URL per
// chunk, in reading order. Building URLs involves no network I/O; the audio
// bytes are fetched later, segment by segment.
package translatetts

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

const (
	defaultHost       = "https://translate.google.com"
	defaultLanguage   = "en"
	defaultSplitPunct = ",.?!"

	// Character budget accepted by the translate_tts endpoint per request.
	maxChunkLen = 200

	speedNormal = "1"
	speedSlow   = "0.24"
)

// Config tunes URL construction.
type Config struct {
	Host       string // endpoint host, defaults to the public translate host
	Language   string // language tag, e.g. "en"
	Slow       bool   // slow speaking rate
	SplitPunct string // characters treated as preferred chunk boundaries
}

// Client builds segment URLs for a fixed language and speaking rate.
type Client struct {
	host       string
	language   string
	slow       bool
	splitPunct string
}

// New builds a client, filling unset fields with defaults.
func New(cfg Config) *Client {
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.SplitPunct == "" {
		cfg.SplitPunct = defaultSplitPunct
	}
	return &Client{
		host:       strings.TrimRight(cfg.Host, "/"),
		language:   cfg.Language,
		slow:       cfg.Slow,
		splitPunct: cfg.SplitPunct,
	}
}

// Host returns the endpoint host the built URLs point at.
func (c *Client) Host() string {
	return c.host
}

// Segments splits text into speakable chunks and returns one TTS URL per
// chunk, in reading order.
func (c *Client) Segments(_ context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	chunks := c.split(text)
	urls := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		urls = append(urls, c.buildURL(chunk, i, len(chunks)))
	}
	return urls, nil
}

// split cuts text into chunks of at most maxChunkLen runes, preferring to
// cut just after a split-punctuation character, then at whitespace, and only
// as a last resort mid-word.
func (c *Client) split(text string) []string {
	runes := []rune(text)
	var chunks []string

	for len(runes) > 0 {
		if len(runes) <= maxChunkLen {
			if chunk := strings.TrimSpace(string(runes)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := -1
		for i := maxChunkLen - 1; i > 0; i-- {
			if strings.ContainsRune(c.splitPunct, runes[i]) {
				cut = i + 1
				break
			}
		}
		if cut == -1 {
			for i := maxChunkLen - 1; i > 0; i-- {
				if unicode.IsSpace(runes[i]) {
					cut = i
					break
				}
			}
		}
		if cut <= 0 {
			cut = maxChunkLen
		}

		if chunk := strings.TrimSpace(string(runes[:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[cut:]
		for len(runes) > 0 && unicode.IsSpace(runes[0]) {
			runes = runes[1:]
		}
	}

	return chunks
}

func (c *Client) buildURL(chunk string, idx, total int) string {
	speed := speedNormal
	if c.slow {
		speed = speedSlow
	}

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", chunk)
	q.Set("tl", c.language)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(len([]rune(chunk))))
	q.Set("client", "tw-ob")
	q.Set("ttsspeed", speed)

	return c.host + "/translate_tts?" + q.Encode()
}
