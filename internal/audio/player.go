package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrPlayerNotFound is returned when the player executable is not installed.
	ErrPlayerNotFound = errors.New("audio player not found in PATH")
	// ErrPlaybackFailed is returned when the player exits with an error.
	ErrPlaybackFailed = errors.New("audio playback failed")
	// ErrEmptyArtifact is returned when there is nothing to play.
	ErrEmptyArtifact = errors.New("empty audio artifact")
)

// Player plays an artifact.
type Player interface {
	Play(ctx context.Context, a *Artifact) error
}

// CommandPlayer plays artifacts by running an external program such as
// "ffplay -nodisp -autoexit" with the path of a temporary file appended.
type CommandPlayer struct {
	path string
	args []string
}

// NewCommandPlayer resolves command, a program name followed by its arguments.
func NewCommandPlayer(command string) (*CommandPlayer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, ErrPlayerNotFound
	}

	path, err := exec.LookPath(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, fields[0])
	}

	return &CommandPlayer{path: path, args: fields[1:]}, nil
}

// NewCommandPlayerWithPath creates a player with a specific executable path.
func NewCommandPlayerWithPath(path string, args ...string) *CommandPlayer {
	return &CommandPlayer{path: path, args: args}
}

// Play writes the artifact to a temporary file and runs the player on it.
// It blocks until the player exits or ctx is cancelled.
func (p *CommandPlayer) Play(ctx context.Context, a *Artifact) error {
	if a == nil || len(a.Data) == 0 {
		return ErrEmptyArtifact
	}

	f, err := os.CreateTemp("", DownloadBase+"_*."+a.Extension())
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(a.Data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	args := append(append([]string{}, p.args...), f.Name())

	cmd := exec.CommandContext(ctx, p.path, args...)
	cmd.WaitDelay = time.Second

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s", ErrPlaybackFailed, strings.TrimSpace(stderr.String()))
	}

	return nil
}
