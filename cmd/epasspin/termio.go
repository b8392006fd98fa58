package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// readSecret prompts on stderr and reads a line with echo disabled, the way
// a terminal PIN/PUK entry must: the value never appears on screen or in
// shell history.
func readSecret(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read secret: %w", err)
	}
	return secret, nil
}
