package alert

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Console prints alerts colored by level: green for info, yellow for
// warnings and red for critical alerts.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *lipgloss.Renderer
}

// NewConsole creates a console sink writing to w. color is "auto",
// "always" or "never"; auto colors only when w is a terminal.
func NewConsole(w io.Writer, color string) *Console {
	r := lipgloss.NewRenderer(w)
	switch color {
	case "always":
		r.SetColorProfile(termenv.ANSI256)
	case "never":
		r.SetColorProfile(termenv.Ascii)
	default:
		if !isTerminal(w) {
			r.SetColorProfile(termenv.Ascii)
		}
	}
	return &Console{w: w, renderer: r}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // Fd fits in int
}

func (c *Console) style(level Level) lipgloss.Style {
	s := c.renderer.NewStyle()
	switch level {
	case Critical:
		return s.Foreground(lipgloss.Color("9"))
	case Warning:
		return s.Foreground(lipgloss.Color("11"))
	default:
		return s.Foreground(lipgloss.Color("10"))
	}
}

// Send implements Sink.
func (c *Console) Send(_ context.Context, a Alert) error {
	style := c.style(a.Level)
	lines := strings.Split(a.String(), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.w, strings.Join(lines, "\n"))
	return err
}
