package gemini

import "github.com/tidwall/gjson"

// TextPath is the only location in a generateContent response that is read.
const TextPath = "candidates.0.content.parts.0.text"

// ExtractText returns the text at TextPath. It reports false when the body is
// not valid JSON, when any step of the path is missing or has the wrong type,
// or when the text is empty. candidates and parts must be arrays; gjson alone
// would also resolve "0" as an object key.
func ExtractText(body []byte) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return "", false
	}
	candidate, ok := firstObject(root.Get("candidates"))
	if !ok {
		return "", false
	}
	content := candidate.Get("content")
	if !content.IsObject() {
		return "", false
	}
	part, ok := firstObject(content.Get("parts"))
	if !ok {
		return "", false
	}
	text := part.Get("text")
	if text.Type != gjson.String || text.Str == "" {
		return "", false
	}
	return text.Str, true
}

func firstObject(arr gjson.Result) (gjson.Result, bool) {
	if !arr.IsArray() {
		return gjson.Result{}, false
	}
	first := arr.Get("0")
	return first, first.IsObject()
}
