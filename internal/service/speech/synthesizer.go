package speech

import (
	"context"
	"strings"

	"go.uber.org/zap"

	speechmodel "github.com/debunkbot/debunkbot/internal/model/speech"
)

// SegmentProvider produces one fetchable audio URL per spoken chunk of the
// given text, in reading order. Implementations decide how the text is
// chunked; the synthesizer only trusts the returned order.
type SegmentProvider interface {
	Segments(ctx context.Context, text string) ([]string, error)
}

// Synthesizer maps provider URLs onto ordered speech segments. Speech is an
// enhancement, not a requirement for delivering an answer, so every failure
// path degrades to an empty segment list instead of surfacing an error.
type Synthesizer struct {
	provider SegmentProvider
	logger   *zap.Logger
}

// NewSynthesizer builds a synthesizer. A nil provider disables synthesis
// entirely: every call returns an empty, non-degraded result.
func NewSynthesizer(provider SegmentProvider, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{provider: provider, logger: logger}
}

// Synthesize turns normalized text into ordered segment references with
// gapless ordinals 0..n-1.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) speechmodel.SynthesisResult {
	if s.provider == nil {
		return speechmodel.SynthesisResult{}
	}

	if strings.TrimSpace(text) == "" {
		s.logger.Debug("skipping synthesis for empty text")
		return speechmodel.SynthesisResult{}
	}

	urls, err := s.provider.Segments(ctx, text)
	if err != nil {
		s.logger.Warn("segment provider failed", zap.Error(err))
		return speechmodel.SynthesisResult{Degraded: true}
	}

	segments := make([]speechmodel.SpeechSegment, 0, len(urls))
	for i, url := range urls {
		segments = append(segments, speechmodel.SpeechSegment{SourceURL: url, Ordinal: i})
	}
	return speechmodel.SynthesisResult{Segments: segments}
}
