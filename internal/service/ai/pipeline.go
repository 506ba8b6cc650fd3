package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/debunkbot/debunkbot/internal/model/chat"
	speechmodel "github.com/debunkbot/debunkbot/internal/model/speech"
	speechsvc "github.com/debunkbot/debunkbot/internal/service/speech"
)

// Generator abstracts the generative-text upstream.
type Generator interface {
	Generate(ctx context.Context, win Window) (string, error)
}

// SpeechSynthesizer turns normalized text into ordered segment references.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) speechmodel.SynthesisResult
}

// HistoryReader is the slice of the ledger the pipeline consults for
// context. The pipeline only ever reads; appending after a successful run is
// the caller's job, which keeps ledger writes exactly-once.
type HistoryReader interface {
	ReadRecent(ctx context.Context, userID string, limit int) ([]chat.Message, error)
}

// Pipeline turns one user query plus recent context into a normalized,
// speakable answer via a single rate-limited upstream request.
type Pipeline struct {
	generator  Generator
	synth      SpeechSynthesizer
	history    HistoryReader
	gate       *RateGate
	windowSize int
	logger     *zap.Logger
}

// NewPipeline wires the pipeline. The gate must be shared across every
// pipeline that talks to the same upstream.
func NewPipeline(generator Generator, synth SpeechSynthesizer, history HistoryReader, gate *RateGate, windowSize int, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		generator:  generator,
		synth:      synth,
		history:    history,
		gate:       gate,
		windowSize: windowSize,
		logger:     logger,
	}
}

// Answer runs the full query-to-answer pipeline for one user query. It does
// not write to the history ledger.
func (p *Pipeline) Answer(ctx context.Context, userID, query string) (*chat.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	recent, err := p.history.ReadRecent(ctx, userID, p.windowSize)
	if err != nil {
		return nil, fmt.Errorf("read recent history: %w", err)
	}

	win := BuildWindow(recent, query, p.windowSize)

	if err := p.gate.Acquire(ctx); err != nil {
		return nil, err
	}

	raw, err := p.generator.Generate(ctx, win)
	if err != nil {
		return nil, err
	}

	cleaned := speechsvc.Normalize(raw)

	result := p.synth.Synthesize(ctx, cleaned)
	if result.Degraded {
		p.logger.Warn("speech synthesis degraded, returning text-only answer",
			zap.String("userId", userID))
	}

	return &chat.Answer{
		CleanedText:    cleaned,
		Segments:       result.Segments,
		SpeechDegraded: result.Degraded,
	}, nil
}
