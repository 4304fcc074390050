package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hengadev/confcrypt"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNoPassword = errors.New("password required: set " + confcrypt.EnvPassword + " or run in a terminal")

// readPassword returns the password from the environment, or prompts for it
// on the terminal without echo. The caller should wipe the result.
func readPassword(cmd *cobra.Command, prompt string) ([]byte, error) {
	if password, err := confcrypt.PasswordFromEnvironment(); err == nil {
		return password, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errNoPassword
	}

	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return nil, errNoPassword
	}
	return password, nil
}
