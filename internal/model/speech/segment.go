package speech

// SpeechSegment references one fetchable audio chunk of a spoken answer.
// Reading the sequence in ordinal order reproduces the full spoken text.
type SpeechSegment struct {
	SourceURL string `json:"sourceUrl"`
	Ordinal   int    `json:"ordinal"`
}

// SynthesisResult carries the ordered segments plus an explicit degradation
// marker, so callers can tell "synthesis skipped" apart from "synthesis
// failed" without relying on swallowed errors.
type SynthesisResult struct {
	Segments []SpeechSegment `json:"segments"`
	Degraded bool            `json:"degraded"`
}
