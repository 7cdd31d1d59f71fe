package main

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/celerix-dev/ministranci-console/internal/archive"
)

// terminal is the console.UI of the CLI: dialogs read lines from in,
// everything else is printed to out and downloads land in the archive.
type terminal struct {
	in      *bufio.Reader
	out     io.Writer
	archive *archive.Archive
}

func newTerminal(in io.Reader, out io.Writer, arch *archive.Archive) *terminal {
	return &terminal{in: bufio.NewReader(in), out: out, archive: arch}
}

// readLine returns ok=false at end of input.
func (t *terminal) readLine() (string, bool) {
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

func (t *terminal) Confirm(message string) bool {
	fmt.Fprintf(t.out, "%s [t/N]: ", message)
	answer, ok := t.readLine()
	if !ok {
		fmt.Fprintln(t.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "t", "tak", "y", "yes":
		return true
	}
	return false
}

func (t *terminal) Alert(message string) {
	fmt.Fprintln(t.out, message)
}

// Prompt takes the fallback on an empty line and cancels at end of input.
func (t *terminal) Prompt(message, fallback string) (string, bool) {
	if fallback != "" {
		fmt.Fprintf(t.out, "%s [%s]: ", message, fallback)
	} else {
		fmt.Fprintf(t.out, "%s: ", message)
	}
	answer, ok := t.readLine()
	if !ok {
		fmt.Fprintln(t.out)
		return "", false
	}
	if answer == "" {
		return fallback, true
	}
	return answer, true
}

func (t *terminal) Reload() {}

func (t *terminal) Open(url string) {
	fmt.Fprintf(t.out, "Otwórz: %s\n", url)
}

func (t *terminal) Download(name, contentType string, body []byte) error {
	if err := t.archive.Save(name, body); err != nil {
		return err
	}
	fmt.Fprintf(t.out, "Zapisano %s (%d B)\n", filepath.Join(t.archive.Dir, name), len(body))
	return nil
}

func (t *terminal) Copy(text string) error {
	fmt.Fprintln(t.out, text)
	return nil
}
