// Package alexa holds the voice-platform request and response envelopes the
// skill exchanges with its fronting verifier. Certificate and signature
// checks on inbound requests happen upstream; this package only models the
// parsed JSON.
package alexa

import "strings"

// Request types.
const (
	TypeLaunch       = "LaunchRequest"
	TypeIntent       = "IntentRequest"
	TypeSessionEnded = "SessionEndedRequest"
)

// Entity-resolution statuses. Anything other than a successful match is
// treated as no-match.
const (
	ResolutionMatch   = "ER_SUCCESS_MATCH"
	ResolutionNoMatch = "ER_SUCCESS_NO_MATCH"
)

// Envelope is the inbound request envelope.
type Envelope struct {
	Version string  `json:"version"`
	Request Request `json:"request"`
}

// Request is the request body: either a launch, an intent, or a session end.
type Request struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	Intent    Intent `json:"intent,omitempty"`
}

// Intent is a matched intent plus its slot values.
type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

// Slot is one spoken slot with the platform's entity-resolution attempts.
type Slot struct {
	Name        string       `json:"name"`
	Value       string       `json:"value"`
	Resolutions []Resolution `json:"resolutions,omitempty"`
}

// Resolution is a single entity-resolution attempt.
type Resolution struct {
	Status string          `json:"status"`
	Values []ResolvedValue `json:"values,omitempty"`
}

// ResolvedValue is one canonical value a resolution matched.
type ResolvedValue struct {
	Name string `json:"name"`
}

// ResponseEnvelope is the outbound response envelope.
type ResponseEnvelope struct {
	Version  string   `json:"version"`
	Response Response `json:"response"`
}

// Response carries the speech and session directive.
type Response struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

// OutputSpeech is either plain text or SSML.
type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	SSML string `json:"ssml,omitempty"`
}

// NewResponse builds a response envelope for the given speech text. Text
// containing an embedded audio cue is wrapped as SSML so the platform plays
// the cue; everything else goes out as plain text.
func NewResponse(speech string, endSession bool) ResponseEnvelope {
	out := &OutputSpeech{}
	if strings.Contains(speech, "<audio") {
		out.Type = "SSML"
		out.SSML = "<speak>" + speech + "</speak>"
	} else {
		out.Type = "PlainText"
		out.Text = speech
	}
	return ResponseEnvelope{
		Version: "1.0",
		Response: Response{
			OutputSpeech:     out,
			ShouldEndSession: endSession,
		},
	}
}

// EmptyResponse is the reply to a session-ended notification.
func EmptyResponse() ResponseEnvelope {
	return ResponseEnvelope{Version: "1.0", Response: Response{ShouldEndSession: true}}
}
