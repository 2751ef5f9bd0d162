// Package codex runs prompts through the OpenAI Codex CLI in exec mode.
package codex

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
	generate.Register("codex", func(cfg *generate.Config) generate.Generator {
		g := New()
		if cfg != nil {
			g.Model = cfg.Model
		}
		return g
	})
}

// Generator executes prompts using the OpenAI Codex CLI.
type Generator struct {
	Timeout time.Duration
	Model   string
}

// New creates a new Codex generator.
func New() *Generator {
	return &Generator{
		Timeout: generate.DefaultTimeout,
	}
}

// Name returns the generator identifier.
func (g *Generator) Name() string {
	return "codex"
}

// CLICommand returns the CLI executable name.
func (g *Generator) CLICommand() string {
	return "codex"
}

// BuildArgs returns the CLI arguments for one generation call. Codex
// has no separate system-prompt flag, so the agent instructions are
// prepended to the prompt.
func (g *Generator) BuildArgs(instructions, prompt string) []string {
	args := []string{"exec"}
	if g.Model != "" {
		args = append(args, "--model", g.Model)
	}
	return append(args, instructions+"\n\n"+prompt)
}

// Generate runs the prompt and returns raw stdout text. CLI failures
// wrap generate.ErrUnavailable.
func (g *Generator) Generate(ctx context.Context, instructions, prompt string) (string, error) {
	timeout := g.Timeout
	if timeout == 0 {
		timeout = generate.DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.CLICommand(), g.BuildArgs(instructions, prompt)...)
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
