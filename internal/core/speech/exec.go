package speech

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// ExecEngine speaks through a platform text-to-speech command. The spoken
// text is passed as the final argument.
type ExecEngine struct {
	command string
	args    []string
}

// NewExecEngine builds an engine from a configured command line, e.g.
// "espeak-ng -v en -s 170". Returns nil for an empty command.
func NewExecEngine(commandLine string) *ExecEngine {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	return &ExecEngine{command: fields[0], args: fields[1:]}
}

// DetectEngine finds an installed text-to-speech command. English voices
// are selected where the engine needs an explicit voice flag.
func DetectEngine() (*ExecEngine, error) {
	if _, err := exec.LookPath("say"); err == nil {
		return &ExecEngine{command: "say"}, nil
	}
	if _, err := exec.LookPath("espeak-ng"); err == nil {
		return &ExecEngine{command: "espeak-ng", args: []string{"-v", "en"}}, nil
	}
	if _, err := exec.LookPath("espeak"); err == nil {
		return &ExecEngine{command: "espeak", args: []string{"-v", "en"}}, nil
	}
	return nil, errors.New("no text-to-speech command found (tried say, espeak-ng, espeak)")
}

// Speak implements Engine
func (e *ExecEngine) Speak(ctx context.Context, text string) error {
	args := append(append([]string(nil), e.args...), text)
	return exec.CommandContext(ctx, e.command, args...).Run()
}

// ExecCapture captures one utterance through a configured command that
// records from the microphone and prints the transcript to stdout.
type ExecCapture struct {
	command string
	args    []string
}

// NewExecCapture builds a capture engine from a configured command line.
// Returns nil for an empty command; capture is optional.
func NewExecCapture(commandLine string) *ExecCapture {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	return &ExecCapture{command: fields[0], args: fields[1:]}
}

// Listen implements CaptureEngine
func (c *ExecCapture) Listen(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, c.command, c.args...).Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrAudioCapture
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && strings.Contains(strings.ToLower(string(exitErr.Stderr)), "permission") {
			return "", ErrNotAllowed
		}
		return "", ErrAudioCapture
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}
