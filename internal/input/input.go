// Package input contains readers used to get RPAL source lines from the CLI
// in interactive and direct (non-TTY) modes.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// DefaultPrompt is the REPL prompt used when none is set explicitly.
const DefaultPrompt = "rpal> "

// LineReader is satisfied by both DirectLineReader and InteractiveLineReader,
// so cmd/rpal's REPL loop can pick whichever one fits the process's stdin
// without caring which it got.
type LineReader interface {
	// ReadLine reads the next non-blank line of input, blocking until one
	// arrives unless AllowBlank(true) was called. At end of input it
	// returns "", io.EOF.
	ReadLine() (string, error)
	AllowBlank(allow bool)
	Close() error
}

// DirectLineReader reads source lines from any generic input stream
// directly. It can be used with any io.Reader but does not sanitize the
// input of control and escape sequences, and offers no history or editing.
//
// DirectLineReader should not be constructed directly; use [NewDirectReader].
type DirectLineReader struct {
	r             *bufio.Reader
	blanksAllowed bool
}

// InteractiveLineReader reads source lines from stdin using a Go
// implementation of the GNU Readline library, giving history and
// in-line editing. It should generally only be used when directly
// connected to a TTY.
//
// InteractiveLineReader should not be constructed directly; use
// [NewInteractiveReader].
type InteractiveLineReader struct {
	rl            *readline.Instance
	blanksAllowed bool
	prompt        string
}

// NewDirectReader creates a new DirectLineReader reading from r. The
// returned reader must have Close called on it before disposal.
func NewDirectReader(r io.Reader) *DirectLineReader {
	return &DirectLineReader{
		r: bufio.NewReader(r),
	}
}

// NewInteractiveReader creates a new InteractiveLineReader and initializes
// readline with the REPL's default prompt. The returned reader must have
// Close called on it before disposal to properly tear down readline
// resources.
func NewInteractiveReader() (*InteractiveLineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: DefaultPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveLineReader{
		rl:     rl,
		prompt: DefaultPrompt,
	}, nil
}

// Close cleans up resources associated with the DirectLineReader. For now it
// does not do anything, since DirectLineReader does not create resources of
// its own, but callers should treat it as though it must be called.
func (dlr *DirectLineReader) Close() error {
	return nil
}

// Close cleans up readline resources associated with the
// InteractiveLineReader.
func (ilr *InteractiveLineReader) Close() error {
	return ilr.rl.Close()
}

// skipBlanks repeatedly calls readOne until it gets a non-blank line, an
// error, or blanksAllowed is set, factoring out the loop both LineReader
// implementations need around their otherwise-unrelated raw read calls.
func skipBlanks(readOne func() (string, error), blanksAllowed bool) (string, error) {
	for {
		line, err := readOne()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)
		if line != "" || blanksAllowed {
			return line, nil
		}
	}
}

// ReadLine reads the next line of input. The returned string is only empty
// if there is an error reading input (unless blanks are allowed); otherwise
// this function blocks until a line containing non-space characters is
// read.
//
// At end of input, the returned string is empty and error is io.EOF. Any
// other error is returned as-is with an empty string.
func (dlr *DirectLineReader) ReadLine() (string, error) {
	return skipBlanks(func() (string, error) { return dlr.r.ReadString('\n') }, dlr.blanksAllowed)
}

// ReadLine reads the next line of input from stdin via readline. The
// returned string is only empty if there is an error (unless blanks are
// allowed); otherwise this function blocks until a line containing
// non-space characters is read.
//
// At end of input, the returned string is empty and error is io.EOF. Any
// other error is returned as-is with an empty string.
func (ilr *InteractiveLineReader) ReadLine() (string, error) {
	return skipBlanks(ilr.rl.Readline, ilr.blanksAllowed)
}

// AllowBlank sets whether a blank line is returned as-is rather than being
// skipped. By default it is not allowed.
func (dlr *DirectLineReader) AllowBlank(allow bool) {
	dlr.blanksAllowed = allow
}

// AllowBlank sets whether a blank line is returned as-is rather than being
// skipped. By default it is not allowed.
func (ilr *InteractiveLineReader) AllowBlank(allow bool) {
	ilr.blanksAllowed = allow
}

// SetPrompt updates the prompt text shown before each read.
func (ilr *InteractiveLineReader) SetPrompt(p string) {
	ilr.prompt = p
	ilr.rl.SetPrompt(p)
}

// GetPrompt returns the current prompt text.
func (ilr *InteractiveLineReader) GetPrompt() string {
	return ilr.prompt
}
