package codec

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Extractor pulls generated text from one known response shape. It reports
// false when the shape does not match or the text is blank.
type Extractor struct {
	Name    string
	Extract func(doc gjson.Result) (string, bool)
}

// Extractors lists the known response shapes in the order they are tried.
var Extractors = []Extractor{
	{Name: "chat_message", Extract: stringAt("choices.0.message.content")},
	{Name: "completion_text", Extract: stringAt("choices.0.text")},
	{Name: "output_text", Extract: stringAt("output_text")},
	{Name: "output_content_text", Extract: stringAt("output.0.content.0.text")},
	{Name: "output_content_content", Extract: stringAt("output.0.content.0.content")},
	{Name: "generated_text", Extract: stringAt("generated_text")},
	{Name: "generic", Extract: firstStringAt("result", "response", "data")},
}

// ExtractText returns the first non-blank text found in a JSON response body,
// or "" when the body is not JSON or matches no known shape. A top-level
// array (Hugging Face text-generation style) is inspected via its first
// element.
func ExtractText(body []byte) string {
	text, _ := ExtractTextWith(body)
	return text
}

// ExtractTextWith is ExtractText that also names the extractor that matched.
func ExtractTextWith(body []byte) (text, extractor string) {
	if !gjson.ValidBytes(body) {
		return "", ""
	}
	doc := gjson.ParseBytes(body)
	if doc.IsArray() {
		doc = doc.Get("0")
	}
	if !doc.IsObject() {
		return "", ""
	}
	return extractFrom(doc)
}

func extractFrom(doc gjson.Result) (string, string) {
	for _, e := range Extractors {
		if text, ok := e.Extract(doc); ok {
			return text, e.Name
		}
	}
	return "", ""
}

func stringAt(path string) func(gjson.Result) (string, bool) {
	return func(doc gjson.Result) (string, bool) {
		r := doc.Get(path)
		if r.Type != gjson.String || strings.TrimSpace(r.Str) == "" {
			return "", false
		}
		return r.Str, true
	}
}

func firstStringAt(paths ...string) func(gjson.Result) (string, bool) {
	fns := make([]func(gjson.Result) (string, bool), len(paths))
	for i, p := range paths {
		fns[i] = stringAt(p)
	}
	return func(doc gjson.Result) (string, bool) {
		for _, fn := range fns {
			if text, ok := fn(doc); ok {
				return text, true
			}
		}
		return "", false
	}
}
