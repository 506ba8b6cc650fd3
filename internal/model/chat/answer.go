package chat

import "github.com/debunkbot/debunkbot/internal/model/speech"

// Answer is the structured result of one pipeline run: display/speech safe
// text plus the ordered audio segments that spell it out. Segments may be
// empty when synthesis is disabled or degraded; CleanedText never is when
// the upstream produced text.
type Answer struct {
	CleanedText    string                 `json:"cleanedText"`
	Segments       []speech.SpeechSegment `json:"segments"`
	SpeechDegraded bool                   `json:"speechDegraded,omitempty"`
}

// FirstSegmentRef returns the URL of the first speech segment, or nil when
// there is no speech output. Stored on bot messages as AudioSegmentRef.
func (a *Answer) FirstSegmentRef() *string {
	if len(a.Segments) == 0 {
		return nil
	}
	url := a.Segments[0].SourceURL
	return &url
}
