package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/debunkbot/debunkbot/internal/config"
)

// Fixed generation parameters. These are deliberately not user-configurable:
// the answer pipeline sends the same tuning on every request.
const (
	genTemperature     = 0.7
	genTopK            = 1
	genTopP            = 1.0
	genMaxOutputTokens = 2048
)

// Responses larger than this are cut off before decoding.
const maxResponseBytes = 4 << 20

// Wire types for the generateContent endpoint.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content candidateContent `json:"content"`
}

// candidateContent covers both payload shapes the upstream has shipped:
// text nested under parts, and text directly on the content object.
type candidateContent struct {
	Parts []part `json:"parts"`
	Text  string `json:"text"`
}

// Client calls the generative-text upstream over its REST endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	httpc   *http.Client
	logger  *zap.Logger
}

// NewClient builds an upstream client from configuration. The HTTP client
// carries a bounded timeout so a stalled upstream cannot pin requests
// forever.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// Generate sends one ordered conversation window and returns the generated
// text, extracted from the first response shape that matches.
func (c *Client) Generate(ctx context.Context, win Window) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingCredential
	}

	contents := make([]content, 0, len(win.PriorTurns)+1)
	for _, turn := range win.PriorTurns {
		contents = append(contents, content{Role: turn.Role, Parts: []part{{Text: turn.Text}}})
	}
	contents = append(contents, content{Role: RoleUser, Parts: []part{{Text: win.Query}}})

	body, err := sonic.Marshal(generateRequest{
		Contents: contents,
		GenerationConfig: generationConfig{
			Temperature:     genTemperature,
			TopK:            genTopK,
			TopP:            genTopP,
			MaxOutputTokens: genMaxOutputTokens,
		},
	})
	if err != nil {
		return "", &UpstreamError{Op: "encode", Err: err}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &UpstreamError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", &UpstreamError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &UpstreamError{Op: "read", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("generative upstream returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(data, 512)))
		return "", &UpstreamError{Op: "status", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var decoded generateResponse
	if err := sonic.Unmarshal(data, &decoded); err != nil {
		return "", &UpstreamError{Op: "decode", Err: err}
	}

	text, ok := extractText(decoded)
	if !ok {
		return "", &UpstreamError{Op: "extract", Err: errNoKnownShape}
	}
	return text, nil
}

func truncate(data []byte, n int) []byte {
	if len(data) <= n {
		return data
	}
	return data[:n]
}
