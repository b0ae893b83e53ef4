// Package confirm renders the pre-flight approval prompt on a terminal.
package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F780FF")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD"))

	previewStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E9E9F4")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6272A4")).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4")).
			Italic(true)
)

// Terminal asks for approval on In/Out. Only an explicit yes approves; an
// empty line, "n", "q", escape, or end of input declines.
//
// One goroutine reads In for the Terminal's lifetime, so input typed past the
// current answer is kept for the next prompt. A line that arrives after a
// cancelled prompt answers the next one.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	once  sync.Once
	lines chan string
}

func (t *Terminal) readLines() {
	r := bufio.NewReader(t.In)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			t.lines <- line
		}
		if err != nil {
			close(t.lines)
			return
		}
	}
}

// Confirm prints the request summary and reads one answer line.
func (t *Terminal) Confirm(ctx context.Context, label, providerModel, preview string) (bool, error) {
	t.once.Do(func() {
		t.lines = make(chan string)
		go t.readLines()
	})

	fmt.Fprintln(t.Out, titleStyle.Render("Confirm "+label))
	fmt.Fprintln(t.Out, labelStyle.Render("Provider: ")+providerModel)
	if strings.TrimSpace(preview) != "" {
		fmt.Fprintln(t.Out, previewStyle.Render(preview))
	}
	fmt.Fprint(t.Out, hintStyle.Render("Send this request? [y/N] "))

	select {
	case <-ctx.Done():
		fmt.Fprintln(t.Out)
		return false, ctx.Err()
	case line, ok := <-t.lines:
		if !ok {
			return false, nil
		}
		return Approved(line), nil
	}
}

// Approved reports whether an answer line means yes.
func Approved(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
