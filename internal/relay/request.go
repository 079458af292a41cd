package relay

import (
	"encoding/json"
	"fmt"
)

const promptTemplate = "Summarize the following text in %s format and generate a %s reviewer:\n\n%s"

// GenerationRequest is the inbound body of POST /generate.
type GenerationRequest struct {
	SummaryType   string `json:"summary_type"`
	ReviewerType  string `json:"reviewer_type"`
	ExtractedText string `json:"extracted_text"`
}

// DecodeRequest parses body as a JSON object. Absent and null fields decode
// as empty strings; anything that is not an object, or a required field that
// is not a string, is reported as ErrMalformedBody.
func DecodeRequest(body []byte) (GenerationRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return GenerationRequest{}, malformed(err)
	}
	if fields == nil {
		return GenerationRequest{}, malformed(fmt.Errorf("body must be a JSON object"))
	}
	var req GenerationRequest
	for name, dst := range map[string]*string{
		"summary_type":   &req.SummaryType,
		"reviewer_type":  &req.ReviewerType,
		"extracted_text": &req.ExtractedText,
	} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return GenerationRequest{}, malformed(fmt.Errorf("%s must be a string", name))
		}
	}
	return req, nil
}

// Validate requires all three fields to be non-empty.
func (r GenerationRequest) Validate() error {
	if r.SummaryType == "" || r.ReviewerType == "" || r.ExtractedText == "" {
		return &Error{Kind: KindValidation, Message: MsgMissingParameters, Err: ErrMissingParameters}
	}
	return nil
}

// Prompt renders the upstream prompt. Fields are embedded verbatim.
func (r GenerationRequest) Prompt() string {
	return fmt.Sprintf(promptTemplate, r.SummaryType, r.ReviewerType, r.ExtractedText)
}

func malformed(cause error) error {
	return &Error{
		Kind:    KindValidation,
		Message: "Malformed request body: " + cause.Error(),
		Err:     fmt.Errorf("%w: %v", ErrMalformedBody, cause),
	}
}
