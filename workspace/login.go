package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smart-library/library"
)

// login prompts until a user signs in or the input ends.
func (w *Workspace) login(ctx context.Context) (library.Session, error) {
	fmt.Fprintln(w.out, "\nSmart Library - please sign in")
	for {
		fmt.Fprint(w.out, "Username: ")
		username, ok := w.readLine()
		if !ok {
			return library.Session{}, errAborted
		}
		password, err := w.readPassword("Password: ")
		if err != nil {
			return library.Session{}, err
		}

		s, err := w.mgr.Login(ctx, username, password)
		switch {
		case err == nil:
			return s, nil
		case errors.Is(err, library.ErrValidation):
			fmt.Fprintf(w.out, "Validation: %v\n", err)
		default:
			w.opts.Logger.Info("login rejected", "username", username)
			fmt.Fprintln(w.out, "Login failed: Invalid username or password")
		}
	}
}

func (w *Workspace) readPassword(prompt string) (string, error) {
	if w.opts.ReadPassword != nil {
		return w.opts.ReadPassword(prompt)
	}
	fmt.Fprint(w.out, prompt)
	if !w.sc.Scan() {
		return "", errAborted
	}
	// Spaces are part of the password.
	return strings.TrimRight(w.sc.Text(), "\r"), nil
}
