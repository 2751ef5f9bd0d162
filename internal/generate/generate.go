// Package generate abstracts the text-generation capability the
// pipeline calls. Generators register themselves by name, the way
// engines do in a factory, so the CLI can select one with a flag.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout for a single generation call.
const DefaultTimeout = 10 * time.Minute

// ErrUnavailable marks a transport-level failure from the generation
// capability (network, auth, rate limit). It is distinct from a
// shape-validation failure and is never retried by the stage executor.
var ErrUnavailable = errors.New("generation capability unavailable")

// Unavailable wraps err as a transport failure.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Generator produces free text for a prompt under a named agent
// instruction set. The caller never logs the prompt or the response.
type Generator interface {
	// Name returns the generator identifier (e.g. "claude").
	Name() string

	// Generate runs one prompt for the given agent and returns the raw
	// response text. Transport failures wrap ErrUnavailable.
	Generate(ctx context.Context, agentInstructions, prompt string) (string, error)
}

// Config carries optional per-generator settings. A nil Config means
// the generator's own defaults.
type Config struct {
	Model string
}

// constructors maps generator names to their constructors.
var constructors = make(map[string]func(*Config) Generator)

// Register registers a generator constructor by name.
func Register(name string, constructor func(*Config) Generator) {
	constructors[strings.ToLower(name)] = constructor
}

// New creates a generator by name.
func New(name string, cfg *Config) (Generator, error) {
	constructor, ok := constructors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown generator: %s (supported: %s)", name, strings.Join(Available(), ", "))
	}
	return constructor(cfg), nil
}

// Available returns the registered generator names.
func Available() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	return names
}
