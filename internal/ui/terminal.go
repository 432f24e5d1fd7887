package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgnsrekt/tts-portal/internal/audio"
	"github.com/dgnsrekt/tts-portal/internal/form"
)

// Terminal is a Port for the command line. Status lines, alerts and voice
// lists are printed to out; downloads are written under a directory.
type Terminal struct {
	form.Values

	out       io.Writer
	outputDir string
	player    audio.Player
	logger    *slog.Logger

	playing sync.WaitGroup

	mu      sync.Mutex
	voices  bool
	audio   *audio.Artifact
	saved   string
	saveErr error
}

// NewTerminal creates a terminal port. A nil player disables playback.
func NewTerminal(values form.Values, out io.Writer, outputDir string, player audio.Player, logger *slog.Logger) *Terminal {
	if values == nil {
		values = form.Values{}
	}
	return &Terminal{
		Values:    values,
		out:       out,
		outputDir: outputDir,
		player:    player,
		logger:    logger,
	}
}

// SetBusy implements Port.
func (t *Terminal) SetBusy(busy bool) {
	t.logger.Debug("submit control", "busy", busy)
}

// ShowResult implements Port.
func (t *Terminal) ShowResult() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.voices = false
}

// ShowVoices implements Port.
func (t *Terminal) ShowVoices() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.voices = true
}

// SetStatus implements Port.
func (t *Terminal) SetStatus(text string) {
	fmt.Fprintln(t.out, text)
}

// SetVoices implements Port. Nothing is printed while the voices panel is hidden.
func (t *Terminal) SetVoices(text string) {
	t.mu.Lock()
	visible := t.voices
	t.mu.Unlock()

	if visible && text != "" {
		fmt.Fprintln(t.out, text)
	}
}

// SetAudio implements Port.
func (t *Terminal) SetAudio(a *audio.Artifact) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.audio = a
}

// Play implements Port. The player runs in the background; Wait blocks
// until it exits. Player failures are logged.
func (t *Terminal) Play(ctx context.Context) error {
	t.mu.Lock()
	a := t.audio
	t.mu.Unlock()

	if a == nil {
		return ErrNoAudio
	}
	if t.player == nil {
		return nil
	}

	t.playing.Add(1)
	go func() {
		defer t.playing.Done()
		if err := t.player.Play(ctx, a); err != nil {
			t.logger.Warn("playback failed", "error", err)
		}
	}()
	return nil
}

// Wait blocks until every started playback has finished.
func (t *Terminal) Wait() {
	t.playing.Wait()
}

// SetDownload implements Port by writing a to name under the output directory.
func (t *Terminal) SetDownload(name string, a *audio.Artifact) {
	path := filepath.Join(t.outputDir, name)

	err := os.WriteFile(path, a.Data, 0o644)

	t.mu.Lock()
	t.saved, t.saveErr = path, err
	t.mu.Unlock()

	if err != nil {
		t.logger.Error("failed to write audio", "path", path, "error", err)
		fmt.Fprintf(t.out, "No se pudo guardar %s: %v\n", path, err)
		return
	}

	t.logger.Info("audio written", "path", path, "bytes", len(a.Data), "duration", a.Duration())
	fmt.Fprintln(t.out, path)
}

// Saved returns the path of the last download and the error writing it.
func (t *Terminal) Saved() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saved, t.saveErr
}

// Alert implements Port.
func (t *Terminal) Alert(msg string) {
	fmt.Fprintln(t.out, msg)
}

// SetOptionGroup implements Port.
func (t *Terminal) SetOptionGroup(group string, open bool) {
	t.logger.Debug("option group", "group", group, "open", open)
}
