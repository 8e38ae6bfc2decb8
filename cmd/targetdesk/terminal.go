package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/term"
)

// Test seams for the real terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// terminal serializes output and doubles as the session's Navigator: a torn
// down session sends the user back to the login prompt.
type terminal struct {
	mu  sync.Mutex
	out io.Writer

	route atomic.Value
}

func newTerminal(out io.Writer) *terminal {
	return &terminal{out: out}
}

func (t *terminal) Println(a ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, a...)
}

func (t *terminal) Printf(format string, a ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, a...)
}

// Navigate implements session.Navigator.
func (t *terminal) Navigate(route string) {
	t.route.Store(route)
	t.Println("Session ended. Type 'login' to sign in again.")
}

// Route returns the last route the session navigated to.
func (t *terminal) Route() string {
	r, _ := t.route.Load().(string)
	return r
}

// readLine prints prompt and reads one trimmed line.
func (t *terminal) readLine(in *bufio.Reader, prompt string) (string, error) {
	t.Printf("%s: ", prompt)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads a password without echo when stdin is a terminal and
// falls back to a plain line otherwise.
func (t *terminal) readSecret(in *bufio.Reader, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return t.readLine(in, prompt)
	}

	t.Printf("%s: ", prompt)
	pw, err := readPassword(fd)
	t.Println()
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
