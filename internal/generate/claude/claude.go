// Package claude runs prompts through the Claude Code CLI in
// non-interactive print mode.
package claude

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/christophervuu/flow/internal/generate"
)

func init() {
	generate.Register("claude", func(cfg *generate.Config) generate.Generator {
		g := New()
		if cfg != nil {
			g.Model = cfg.Model
		}
		return g
	})
}

// Generator executes prompts using the Claude Code CLI.
type Generator struct {
	Timeout time.Duration
	Model   string
}

// New creates a new Claude generator.
func New() *Generator {
	return &Generator{
		Timeout: generate.DefaultTimeout,
	}
}

// Name returns the generator identifier.
func (g *Generator) Name() string {
	return "claude"
}

// CLICommand returns the CLI executable name.
func (g *Generator) CLICommand() string {
	return "claude"
}

// BuildArgs returns the CLI arguments for one generation call. The
// agent instructions travel as the system prompt so the user prompt
// stays exactly what the stage composed.
func (g *Generator) BuildArgs(instructions, prompt string) []string {
	args := []string{
		"-p",
		"--append-system-prompt", instructions,
	}
	if g.Model != "" {
		args = append(args, "--model", g.Model)
	}
	return append(args, prompt)
}

// Generate runs the prompt and returns raw stdout text. CLI failures
// are transport failures, not shape failures, so they wrap
// generate.ErrUnavailable.
func (g *Generator) Generate(ctx context.Context, instructions, prompt string) (string, error) {
	timeout := g.Timeout
	if timeout == 0 {
		timeout = generate.DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.CLICommand(), g.BuildArgs(instructions, prompt)...)

	// No controlling terminal: the CLI skips TTY detection and emits
	// clean, parseable output.
	cmd.Stdin = nil

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", generate.Unavailable(fmt.Errorf("generation timed out after %s", timeout))
		}
		return "", generate.Unavailable(fmt.Errorf("%v (stderr: %s)", err, strings.TrimSpace(stderr.String())))
	}

	return stdout.String(), nil
}
