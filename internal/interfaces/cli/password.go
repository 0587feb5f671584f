package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/infrastructure/vault"
)

const EnvPassphrase = "DNSDESK_PASSPHRASE"

func passwordFromEnvOrPrompt(in func() io.Reader, out io.Writer) vault.PasswordFunc {
	return func() (string, error) {
		if p := os.Getenv(EnvPassphrase); p != "" {
			return p, nil
		}
		return readPassword(in(), out, "Master password: ")
	}
}

// readPassword reads without echo from a terminal, else a single line.
func readPassword(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", domain.Newf(domain.CodeIOError, "reading password: %v", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", domain.Newf(domain.CodeInvalidInput, "master password required: set %s", EnvPassphrase)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// newPassword asks twice unless the password comes from the environment.
func newPassword(in io.Reader, out io.Writer) (string, error) {
	if p := os.Getenv(EnvPassphrase); p != "" {
		return p, nil
	}
	first, err := readPassword(in, out, "New master password: ")
	if err != nil {
		return "", err
	}
	second, err := readPassword(in, out, "Repeat master password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", domain.New(domain.CodeInvalidInput, "passwords do not match")
	}
	return first, nil
}
