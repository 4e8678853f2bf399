package cli

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
)

// Prompter вопросы пользователю в терминале.
type Prompter interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
	Password(ctx context.Context, title string) (string, error)
}

type huhPrompter struct{}

// Confirm прерывание формы (Ctrl+C, Esc) считается отказом.
func (huhPrompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	ok := false
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Да").
				Negative("Нет").
				Value(&ok),
		),
	).WithTheme(huh.ThemeBase()).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func (huhPrompter) Password(ctx context.Context, title string) (string, error) {
	var password string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("пароль обязателен")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeBase()).RunWithContext(ctx)
	return password, err
}
