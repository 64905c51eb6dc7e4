package ipa

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Transcriber produces the phonetic form of one text item.
type Transcriber interface {
	Transcribe(ctx context.Context, text string) (string, error)
}

// TranscribeError reports an espeak invocation failure. The captured tool
// output is part of the message because espeak writes its diagnostics there.
type TranscribeError struct {
	Voice  string
	Text   string
	Output string
	Err    error
}

func (e *TranscribeError) Error() string {
	output := strings.TrimSpace(e.Output)
	if output == "" {
		output = "<no output>"
	}
	return fmt.Sprintf("espeak failed for %q (voice %s): %v: %s", e.Text, e.Voice, e.Err, output)
}

func (e *TranscribeError) Unwrap() error { return e.Err }

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithDataDir sets ESPEAK_DATA_PATH for the spawned process.
func WithDataDir(dir string) Option {
	return func(c *CLI) {
		c.dataDir = strings.TrimSpace(dir)
	}
}

// CLI wraps the espeak command-line transcriber. Each Transcribe call spawns
// one process and blocks until it exits.
type CLI struct {
	binary         string
	voice          string
	stripZeroWidth bool
	dataDir        string
}

// NewCLI constructs a client for the given voice. The voice tag is
// canonicalized once here so cache keys stay stable across flag spellings.
func NewCLI(voice string, stripZeroWidth bool, opts ...Option) *CLI {
	cli := &CLI{
		binary:         "espeak",
		voice:          CanonicalVoice(voice),
		stripZeroWidth: stripZeroWidth,
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Voice returns the canonicalized voice tag.
func (c *CLI) Voice() string { return c.voice }

// StripZeroWidth reports whether zero-width characters are removed from output.
func (c *CLI) StripZeroWidth() bool { return c.stripZeroWidth }

// CacheKey returns the cache key for the given item under this client's settings.
func (c *CLI) CacheKey(text string) Key {
	return Key{Voice: c.voice, StripZeroWidth: c.stripZeroWidth, Text: text}
}

// Transcribe runs espeak for one item and returns the cleaned IPA string.
// Empty input returns "" without spawning a process.
func (c *CLI) Transcribe(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	args := []string{"-q", "-v" + c.voice, "--ipa=3", text}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	if c.dataDir != "" {
		cmd.Env = append(os.Environ(), "ESPEAK_DATA_PATH="+c.dataDir)
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", &TranscribeError{Voice: c.voice, Text: text, Output: string(out), Err: err}
	}
	return Clean(string(out), c.stripZeroWidth), nil
}

var _ Transcriber = (*CLI)(nil)
