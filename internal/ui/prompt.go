package ui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/muesli/termenv"
	"github.com/samber/lo"
	"golang.org/x/term"

	"github.com/LoriKarikari/dockcli/internal/core/discovery"
)

var (
	ErrNonInteractive = errors.New("cannot prompt: stdin is not a terminal")
	ErrAborted        = errors.New("aborted by user")
)

const DefaultPageSize = 10

// Prompter asks questions through huh forms.
type Prompter struct {
	console     *Console
	pageSize    int
	interactive bool
	accessible  bool
}

func NewPrompter(console *Console, pageSize int) *Prompter {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Prompter{
		console:     console,
		pageSize:    pageSize,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
		accessible:  os.Getenv("ACCESSIBLE") != "",
	}
}

func (p *Prompter) Select(ctx context.Context, title string, options []discovery.Option) (discovery.Choice, error) {
	var selected discovery.Choice
	if !p.interactive {
		return selected, ErrNonInteractive
	}
	if len(options) == 0 {
		return selected, errors.New("nothing to select")
	}

	huhOptions := lo.Map(options, func(o discovery.Option, _ int) huh.Option[discovery.Choice] {
		return huh.NewOption(o.Label, o.Choice)
	})

	field := huh.NewSelect[discovery.Choice]().
		Title(title).
		Options(huhOptions...).
		Filtering(true).
		Height(min(len(options), p.pageSize) + 2).
		Value(&selected)

	if err := p.run(ctx, field); err != nil {
		return discovery.Choice{}, err
	}
	return selected, nil
}

// Confirm asks a yes/no question; the default answer is no.
func (p *Prompter) Confirm(ctx context.Context, format string, args ...any) (bool, error) {
	if !p.interactive {
		return false, ErrNonInteractive
	}

	var ok bool
	field := huh.NewConfirm().
		Title(fmt.Sprintf(format, args...)).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)

	if err := p.run(ctx, field); err != nil {
		return false, err
	}
	return ok, nil
}

func (p *Prompter) run(ctx context.Context, field huh.Field) error {
	resume := p.console.Suspend()
	defer resume()

	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(p.theme()).
		WithAccessible(p.accessible).
		WithShowHelp(true)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

func (p *Prompter) theme() *huh.Theme {
	if p.console.renderer.ColorProfile() == termenv.Ascii {
		return huh.ThemeBase()
	}
	return huh.ThemeCharm()
}
