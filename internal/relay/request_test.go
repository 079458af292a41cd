package relay

import (
	"errors"
	"testing"
)

func TestPrompt(t *testing.T) {
	req := GenerationRequest{SummaryType: "bullet points", ReviewerType: "academic", ExtractedText: "Cats are mammals."}
	want := "Summarize the following text in bullet points format and generate a academic reviewer:\n\nCats are mammals."
	if got := req.Prompt(); got != want {
		t.Fatalf("Prompt() = %q; want %q", got, want)
	}
}

func TestPromptIsVerbatim(t *testing.T) {
	req := GenerationRequest{SummaryType: "%s {x}", ReviewerType: "a\nb", ExtractedText: "<b>\"quoted\"</b> %d"}
	want := "Summarize the following text in %s {x} format and generate a a\nb reviewer:\n\n<b>\"quoted\"</b> %d"
	if got := req.Prompt(); got != want {
		t.Fatalf("Prompt() = %q; want %q", got, want)
	}
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"summary_type":"s","reviewer_type":"r","extracted_text":"t","extra":1}`))
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if req != (GenerationRequest{SummaryType: "s", ReviewerType: "r", ExtractedText: "t"}) {
		t.Fatalf("decoded %+v", req)
	}

	req, err = DecodeRequest([]byte(`{"summary_type":null,"reviewer_type":"r"}`))
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if !errors.Is(req.Validate(), ErrMissingParameters) {
		t.Fatalf("expected missing parameters for %+v", req)
	}
}

func TestDecodeRequestMalformed(t *testing.T) {
	for _, body := range []string{``, `not json`, `[]`, `["summary_type"]`, `"text"`, `null`, `42`, `{"summary_type":5,"reviewer_type":"r","extracted_text":"t"}`, `{"summary_type":"s"} trailing`} {
		_, err := DecodeRequest([]byte(body))
		if !errors.Is(err, ErrMalformedBody) {
			t.Fatalf("%q: err = %v; want ErrMalformedBody", body, err)
		}
		if !IsValidation(err) {
			t.Fatalf("%q: expected validation kind", body)
		}
		if Classify(err).Status() != 400 {
			t.Fatalf("%q: expected status 400", body)
		}
	}
}

func TestValidateAcceptsWhitespace(t *testing.T) {
	req := GenerationRequest{SummaryType: " ", ReviewerType: "r", ExtractedText: "t"}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
