package confirm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestApproved(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"\n", false},
		{"n\n", false},
		{"q\n", false},
		{"\x1b\n", false},
		{"yep\n", false},
	}
	for _, tt := range tests {
		if got := Approved(tt.in); got != tt.want {
			t.Errorf("Approved(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTerminalConfirm(t *testing.T) {
	var out bytes.Buffer
	term := &Terminal{In: strings.NewReader("y\n"), Out: &out}

	ok, err := term.Confirm(t.Context(), "summary", "m @ http://localhost", "the prompt")
	if err != nil || !ok {
		t.Fatalf("got (%v, %v), want (true, nil)", ok, err)
	}
	for _, want := range []string{"summary", "m @ http://localhost", "the prompt", "[y/N]"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestTerminalConfirmEOFDeclines(t *testing.T) {
	term := &Terminal{In: strings.NewReader(""), Out: io.Discard}
	ok, err := term.Confirm(t.Context(), "x", "y", "")
	if err != nil || ok {
		t.Fatalf("got (%v, %v), want (false, nil)", ok, err)
	}
}

func TestTerminalConfirmContextCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	term := &Terminal{In: pr, Out: io.Discard}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	ok, err := term.Confirm(ctx, "x", "y", "")
	if ok || !errors.Is(err, context.Canceled) {
		t.Fatalf("got (%v, %v), want (false, context.Canceled)", ok, err)
	}
}

func TestTerminalKeepsBufferedAnswers(t *testing.T) {
	term := &Terminal{In: strings.NewReader("y\nyes\nn\n"), Out: io.Discard}
	for i, want := range []bool{true, true, false, false} {
		ok, err := term.Confirm(t.Context(), "x", "y", "")
		if err != nil || ok != want {
			t.Fatalf("answer %d: got (%v, %v), want (%v, nil)", i+1, ok, err, want)
		}
	}
}

func TestTerminalAnswerAfterCancelReachesNextPrompt(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	term := &Terminal{In: pr, Out: io.Discard}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if ok, err := term.Confirm(ctx, "x", "y", ""); ok || err == nil {
		t.Fatalf("cancelled prompt: got (%v, %v)", ok, err)
	}

	go pw.Write([]byte("y\n"))
	ok, err := term.Confirm(t.Context(), "x", "y", "")
	if err != nil || !ok {
		t.Fatalf("got (%v, %v), want (true, nil)", ok, err)
	}
}
