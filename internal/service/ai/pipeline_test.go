package ai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/debunkbot/debunkbot/internal/model/chat"
	speechmodel "github.com/debunkbot/debunkbot/internal/model/speech"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	windows []Window
	text    string
	err     error
}

func (g *fakeGenerator) Generate(_ context.Context, win Window) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.windows = append(g.windows, win)
	return g.text, g.err
}

type fakeSynth struct {
	result speechmodel.SynthesisResult
	texts  []string
}

func (s *fakeSynth) Synthesize(_ context.Context, text string) speechmodel.SynthesisResult {
	s.texts = append(s.texts, text)
	return s.result
}

type fakeReader struct {
	messages []chat.Message
	err      error
}

func (r *fakeReader) ReadRecent(_ context.Context, _ string, limit int) ([]chat.Message, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(r.messages) > limit {
		return r.messages[len(r.messages)-limit:], nil
	}
	return r.messages, nil
}

func newTestPipeline(gen *fakeGenerator, synth *fakeSynth, reader *fakeReader, interval time.Duration) *Pipeline {
	return NewPipeline(gen, synth, reader, NewRateGate(interval), 5, zap.NewNop())
}

func TestPipelineAnswer(t *testing.T) {
	gen := &fakeGenerator{text: "**Myth:**\n\nThe Great Wall is *visible* from space."}
	synth := &fakeSynth{result: speechmodel.SynthesisResult{
		Segments: []speechmodel.SpeechSegment{{SourceURL: "http://tts/0", Ordinal: 0}},
	}}
	reader := &fakeReader{messages: []chat.Message{
		{Text: "hello", IsFromUser: true},
		{Text: "hi there", IsFromUser: false},
	}}
	p := newTestPipeline(gen, synth, reader, 0)

	ans, err := p.Answer(context.Background(), "u1", "is the wall visible from space?")
	if err != nil {
		t.Fatalf("Answer err: %v", err)
	}

	want := "Myth: The Great Wall is visible from space."
	if ans.CleanedText != want {
		t.Fatalf("CleanedText = %q, want %q", ans.CleanedText, want)
	}
	if ans.SpeechDegraded {
		t.Fatal("unexpected SpeechDegraded")
	}
	if len(ans.Segments) != 1 || ans.Segments[0].SourceURL != "http://tts/0" {
		t.Fatalf("unexpected segments %+v", ans.Segments)
	}

	// Synthesis must see the normalized text, not the raw upstream output.
	if len(synth.texts) != 1 || synth.texts[0] != want {
		t.Fatalf("synthesizer saw %q, want %q", synth.texts, want)
	}

	if gen.calls != 1 {
		t.Fatalf("generator called %d times, want 1", gen.calls)
	}
	win := gen.windows[0]
	if len(win.PriorTurns) != 2 {
		t.Fatalf("window has %d prior turns, want 2", len(win.PriorTurns))
	}
	if win.PriorTurns[0].Role != RoleUser || win.PriorTurns[1].Role != RoleModel {
		t.Fatalf("unexpected roles %+v", win.PriorTurns)
	}
	if win.Query != "is the wall visible from space?" {
		t.Fatalf("unexpected query %q", win.Query)
	}
}

func TestPipelineAnswerEmptyQuery(t *testing.T) {
	gen := &fakeGenerator{text: "unused"}
	p := newTestPipeline(gen, &fakeSynth{}, &fakeReader{}, 0)

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := p.Answer(context.Background(), "u1", query)
		if !errors.Is(err, ErrEmptyQuery) {
			t.Fatalf("query %q: expected ErrEmptyQuery, got %v", query, err)
		}
	}
	if gen.calls != 0 {
		t.Fatalf("generator called %d times for empty queries", gen.calls)
	}
}

func TestPipelineAnswerGeneratorError(t *testing.T) {
	upstreamErr := &UpstreamError{Op: "status", Err: errors.New("unexpected status 500")}
	gen := &fakeGenerator{err: upstreamErr}
	synth := &fakeSynth{}
	p := newTestPipeline(gen, synth, &fakeReader{}, 0)

	_, err := p.Answer(context.Background(), "u1", "q")
	var got *UpstreamError
	if !errors.As(err, &got) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if len(synth.texts) != 0 {
		t.Fatal("synthesizer should not run after generation failure")
	}
}

func TestPipelineAnswerHistoryError(t *testing.T) {
	reader := &fakeReader{err: errors.New("ledger unavailable")}
	gen := &fakeGenerator{text: "unused"}
	p := newTestPipeline(gen, &fakeSynth{}, reader, 0)

	_, err := p.Answer(context.Background(), "u1", "q")
	if err == nil {
		t.Fatal("expected error from history read")
	}
	if gen.calls != 0 {
		t.Fatal("generator should not run after history failure")
	}
}

func TestPipelineAnswerDegradedSynthesis(t *testing.T) {
	gen := &fakeGenerator{text: "plain answer"}
	synth := &fakeSynth{result: speechmodel.SynthesisResult{Degraded: true}}
	p := newTestPipeline(gen, synth, &fakeReader{}, 0)

	ans, err := p.Answer(context.Background(), "u1", "q")
	if err != nil {
		t.Fatalf("Answer err: %v", err)
	}
	if !ans.SpeechDegraded {
		t.Fatal("expected SpeechDegraded")
	}
	if ans.CleanedText != "plain answer" {
		t.Fatalf("unexpected CleanedText %q", ans.CleanedText)
	}
	if len(ans.Segments) != 0 {
		t.Fatalf("unexpected segments %+v", ans.Segments)
	}
}

func TestPipelineSharedGateSpacesUsers(t *testing.T) {
	const interval = 25 * time.Millisecond

	gen := &fakeGenerator{text: "answer"}
	p := newTestPipeline(gen, &fakeSynth{}, &fakeReader{}, interval)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var done []time.Time
	for _, user := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			if _, err := p.Answer(context.Background(), user, "q"); err != nil {
				t.Errorf("Answer(%s) err: %v", user, err)
				return
			}
			mu.Lock()
			done = append(done, time.Now())
			mu.Unlock()
		}(user)
	}
	wg.Wait()

	if len(done) != 2 {
		t.Fatalf("expected 2 completions, got %d", len(done))
	}
	gap := done[1].Sub(done[0])
	if gap < 0 {
		gap = -gap
	}
	if gap < interval-2*time.Millisecond {
		t.Fatalf("requests for distinct users spaced %v apart, want >= %v", gap, interval)
	}
}
