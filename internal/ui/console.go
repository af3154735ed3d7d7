package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Console prints user-facing progress lines. While a status spinner is
// running, progress messages replace the spinner text and other lines are
// printed above it.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *lipgloss.Renderer
	palette  palette
	spinner  *Spinner
}

type ConsoleOption func(*Console)

// WithoutColor forces plain output regardless of the terminal.
func WithoutColor() ConsoleOption {
	return func(c *Console) {
		c.renderer.SetColorProfile(termenv.Ascii)
	}
}

func NewConsole(out io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		out:      out,
		renderer: lipgloss.NewRenderer(out),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.palette = newPalette(c.renderer)
	return c
}

func (c *Console) Writer() io.Writer {
	return c.out
}

func (c *Console) Progress(format string, args ...any) {
	msg := c.format(format, args...)

	c.mu.Lock()
	spinner := c.spinner
	c.mu.Unlock()

	if spinner != nil {
		spinner.SetMessage(msg)
		return
	}
	c.println(c.palette.progress.Render(SymbolProgress) + " " + msg)
}

func (c *Console) Success(format string, args ...any) {
	c.println(c.palette.ok.Render(SymbolOK) + " " + c.format(format, args...))
}

func (c *Console) Warn(format string, args ...any) {
	c.println(c.palette.warn.Render(SymbolWarn) + " " + c.format(format, args...))
}

func (c *Console) Error(format string, args ...any) {
	c.println(c.palette.err.Render(SymbolError) + " " + c.format(format, args...))
}

// Println prints a line without a symbol or highlighting.
func (c *Console) Println(line string) {
	c.println(line)
}

// Muted renders s in the secondary text colour.
func (c *Console) Muted(s string) string {
	return c.palette.muted.Render(s)
}

func (c *Console) Bold(s string) string {
	return c.palette.bold.Render(s)
}

// ListPrefix renders "[ i/n]" with i padded to the width of n.
func (c *Console) ListPrefix(index, total int) string {
	return c.palette.muted.Render(ListPrefix(index, total))
}

func ListPrefix(index, total int) string {
	width := len(fmt.Sprint(total))
	return fmt.Sprintf("[%*d/%d]", width, index, total)
}

// Status runs fn while a spinner shows message. Progress calls made by fn
// update the spinner text.
func (c *Console) Status(message string, fn func() error) error {
	c.mu.Lock()
	if c.spinner != nil {
		c.mu.Unlock()
		return fn()
	}
	spinner := NewSpinner(c.out, c.palette.progress)
	c.spinner = spinner
	c.mu.Unlock()

	spinner.Start(message)
	defer func() {
		spinner.Stop()
		c.mu.Lock()
		c.spinner = nil
		c.mu.Unlock()
	}()

	return fn()
}

// Suspend pauses a running spinner and returns a function that resumes it.
func (c *Console) Suspend() func() {
	c.mu.Lock()
	spinner := c.spinner
	c.mu.Unlock()

	if spinner == nil || !spinner.Active() {
		return func() {}
	}
	message := spinner.Message()
	spinner.Stop()
	return func() {
		spinner.Start(message)
	}
}

func (c *Console) println(line string) {
	c.mu.Lock()
	spinner := c.spinner
	c.mu.Unlock()

	if spinner != nil {
		spinner.Print(line)
		return
	}
	fmt.Fprintln(c.out, line)
}

func (c *Console) format(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	highlighted := make([]any, len(args))
	for i, arg := range args {
		highlighted[i] = c.palette.highlight.Render(fmt.Sprint(arg))
	}
	return strings.TrimRight(fmt.Sprintf(format, highlighted...), "\n")
}
