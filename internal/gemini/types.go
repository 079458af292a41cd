package gemini

// Part is one piece of content in a generateContent request.
type Part struct {
	Text string `json:"text"`
}

// Content groups the parts of one turn.
type Content struct {
	Parts []Part `json:"parts"`
}

// Request is the generateContent request body.
type Request struct {
	Contents []Content `json:"contents"`
}

// NewTextRequest wraps a single prompt as a one-part, one-turn request.
func NewTextRequest(prompt string) Request {
	return Request{Contents: []Content{{Parts: []Part{{Text: prompt}}}}}
}

// Reply is the raw upstream answer. The body is untrusted and may have any
// shape; use ExtractText to read it.
type Reply struct {
	StatusCode int
	Body       []byte
}
