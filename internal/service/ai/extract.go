package ai

import "errors"

var errNoKnownShape = errors.New("no text-bearing field in response")

// extractor pulls generated text out of one known response shape, reporting
// whether it matched.
type extractor func(generateResponse) (string, bool)

// The upstream has shipped more than one response layout over time. The
// extractors are tried in priority order and the first match wins; keeping
// them here isolates the compatibility probing from the transport.
var extractors = []extractor{
	// candidates[0].content.parts[0].text
	func(r generateResponse) (string, bool) {
		if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
			return "", false
		}
		text := r.Candidates[0].Content.Parts[0].Text
		return text, text != ""
	},
	// candidates[0].content.text
	func(r generateResponse) (string, bool) {
		if len(r.Candidates) == 0 {
			return "", false
		}
		text := r.Candidates[0].Content.Text
		return text, text != ""
	},
}

func extractText(r generateResponse) (string, bool) {
	for _, extract := range extractors {
		if text, ok := extract(r); ok {
			return text, true
		}
	}
	return "", false
}
