package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword returns the --password flag, else $PACKLIST_PASSWORD, else
// prompts. Input is hidden when stdin is a terminal.
func readPassword(flag string, in io.Reader, out io.Writer) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("PACKLIST_PASSWORD"); env != "" {
		return env, nil
	}

	fmt.Fprint(out, "Password: ")
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprintln(out)
	return strings.TrimRight(line, "\r\n"), nil
}
