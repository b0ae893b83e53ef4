package endpoint

import (
	"reflect"
	"testing"

	"github.com/n0madic/go-genpipe/internal/types"
)

func candidateURLs(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.URL
	}
	return out
}

func TestCandidatesEmptyOrMalformed(t *testing.T) {
	for _, base := range []string{"", "   ", "not a url", "ftp://host/v1", "http://[::1", "/v1/chat"} {
		if got := Candidates(base); len(got) != 0 {
			t.Errorf("Candidates(%q): got %v, want empty", base, got)
		}
	}
}

func TestCandidatesV1Base(t *testing.T) {
	got := Candidates("https://api.example.com/v1")
	want := []Candidate{
		{URL: "https://api.example.com/v1/chat/completions", Shape: types.ShapeChatCompletions},
		{URL: "https://api.example.com/v1/completions", Shape: types.ShapeCompletions},
		{URL: "https://api.example.com/v1/responses", Shape: types.ShapeResponses},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCandidatesBareHostFixedOrder(t *testing.T) {
	got := candidateURLs(Candidates("http://localhost:1234"))
	want := []string{
		"http://localhost:1234/v1/chat/completions",
		"http://localhost:1234/v1/completions",
		"http://localhost:1234/v1/responses",
		"http://localhost:1234/chat/completions",
		"http://localhost:1234/completions",
		"http://localhost:1234/responses",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCandidatesKnownSuffixes(t *testing.T) {
	tests := []struct {
		name string
		base string
		want []string
	}{
		{
			name: "v1 chat completions keeps itself first",
			base: "https://h/v1/chat/completions",
			want: []string{"https://h/v1/chat/completions", "https://h/v1/completions", "https://h/v1/responses"},
		},
		{
			name: "v1 completions prefers chat",
			base: "https://h/v1/completions",
			want: []string{"https://h/v1/chat/completions", "https://h/v1/completions", "https://h/v1/responses"},
		},
		{
			name: "v1 responses last",
			base: "https://h/v1/responses",
			want: []string{"https://h/v1/chat/completions", "https://h/v1/completions", "https://h/v1/responses"},
		},
		{
			name: "chat appends completions",
			base: "https://h/api/chat",
			want: []string{"https://h/api/chat/completions"},
		},
		{
			name: "chat completions without v1",
			base: "https://h/openai/chat/completions",
			want: []string{"https://h/openai/chat/completions"},
		},
		{
			name: "arbitrary path gets cross product",
			base: "https://h/proxy",
			want: []string{
				"https://h/proxy/v1/chat/completions",
				"https://h/proxy/v1/completions",
				"https://h/proxy/v1/responses",
				"https://h/proxy/chat/completions",
				"https://h/proxy/completions",
				"https://h/proxy/responses",
			},
		},
		{
			name: "nested v1 prefix",
			base: "https://h/api/openai/v1",
			want: []string{"https://h/api/openai/v1/chat/completions", "https://h/api/openai/v1/completions", "https://h/api/openai/v1/responses"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := candidateURLs(Candidates(tt.base))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCandidatesPreserveQueryAndFragment(t *testing.T) {
	got := candidateURLs(Candidates("https://h/v1?api-version=2024-06-01#frag"))
	want := []string{
		"https://h/v1/chat/completions?api-version=2024-06-01#frag",
		"https://h/v1/completions?api-version=2024-06-01#frag",
		"https://h/v1/responses?api-version=2024-06-01#frag",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCandidatesDeterministicAndUnique(t *testing.T) {
	bases := []string{"http://localhost:1234", "https://h/v1", "https://h/v1/completions", "https://h/chat"}
	for _, base := range bases {
		first := Candidates(base)
		second := Candidates(base)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Candidates(%q) not deterministic: %v vs %v", base, first, second)
		}
		seen := map[string]bool{}
		for _, c := range first {
			if seen[c.URL] {
				t.Errorf("Candidates(%q) duplicated %q", base, c.URL)
			}
			seen[c.URL] = true
		}
		if len(first) < 1 || len(first) > 6 {
			t.Errorf("Candidates(%q): %d candidates, want 1..6", base, len(first))
		}
	}
}

func TestShapeOf(t *testing.T) {
	tests := map[string]types.Shape{
		"https://h/v1/chat/completions":  types.ShapeChatCompletions,
		"https://h/v1/completions":       types.ShapeCompletions,
		"https://h/v1/responses?x=1":     types.ShapeResponses,
		"https://h/v1/generate":          types.ShapeUnknown,
		"https://h/v1/CHAT/COMPLETIONS/": types.ShapeChatCompletions,
	}
	for u, want := range tests {
		if got := ShapeOf(u); got != want {
			t.Errorf("ShapeOf(%q): got %q, want %q", u, got, want)
		}
	}
}
