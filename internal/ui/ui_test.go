package ui_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/tts-portal/internal/audio"
	"github.com/dgnsrekt/tts-portal/internal/form"
	"github.com/dgnsrekt/tts-portal/internal/logging"
	"github.com/dgnsrekt/tts-portal/internal/markup"
	"github.com/dgnsrekt/tts-portal/internal/ui"
)

var (
	_ ui.Port       = (*ui.Memory)(nil)
	_ ui.Port       = (*ui.Terminal)(nil)
	_ markup.Buffer = (*ui.Memory)(nil)
)

func TestMemoryMarkupEditsTextField(t *testing.T) {
	m := ui.NewMemory(form.Values{form.Text: "Hola mundo"})
	m.Select(5, 5)

	markup.InsertAtCursor(m, markup.BreakTag)

	assert.Equal(t, "Hola "+markup.BreakTag+"mundo", m.Value(form.Text))
	start, end, ok := m.Selection()
	require.True(t, ok)
	assert.Equal(t, 5+len([]rune(markup.BreakTag)), start)
	assert.Equal(t, start, end)
}

func TestMemoryPanels(t *testing.T) {
	m := ui.NewMemory(nil)

	m.ShowVoices()
	m.ShowResult()

	assert.True(t, m.ResultVisible())
	assert.False(t, m.VoicesVisible())
}

func TestMemoryPlay(t *testing.T) {
	m := ui.NewMemory(nil)

	assert.ErrorIs(t, m.Play(context.Background()), ui.ErrNoAudio)

	m.SetAudio(&audio.Artifact{Data: []byte("x"), Format: "mp3"})
	require.NoError(t, m.Play(context.Background()))

	blocked := errors.New("autoplay blocked")
	m.FailPlayback(blocked)
	assert.ErrorIs(t, m.Play(context.Background()), blocked)
	assert.Equal(t, 2, m.Plays())
}

type fakePlayer struct {
	played []*audio.Artifact
}

func (p *fakePlayer) Play(_ context.Context, a *audio.Artifact) error {
	p.played = append(p.played, a)
	return nil
}

func TestTerminalStatusAndAlerts(t *testing.T) {
	var out bytes.Buffer
	term := ui.NewTerminal(nil, &out, t.TempDir(), nil, logging.New("error", "text"))

	term.SetStatus("Sintetizando...")
	term.Alert("Preset guardado para alice")

	assert.Equal(t, "Sintetizando...\nPreset guardado para alice\n", out.String())
}

func TestTerminalVoicesOnlyWhenVisible(t *testing.T) {
	var out bytes.Buffer
	term := ui.NewTerminal(nil, &out, t.TempDir(), nil, logging.New("error", "text"))

	term.ShowResult()
	term.SetVoices(`{"voices": []}`)
	assert.Empty(t, out.String())

	term.ShowVoices()
	term.SetVoices(`{"voices": []}`)
	term.SetVoices("")
	assert.Equal(t, "{\"voices\": []}\n", out.String())
}

func TestTerminalDownload(t *testing.T) {
	var out bytes.Buffer
	dir := t.TempDir()
	term := ui.NewTerminal(nil, &out, dir, nil, logging.New("error", "text"))

	a := &audio.Artifact{Data: []byte("RIFF"), Format: "wav"}
	term.SetDownload(a.Filename(), a)

	path, err := term.Saved()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tts_output.wav"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF"), data)
	assert.Contains(t, out.String(), path)
}

func TestTerminalDownloadFailure(t *testing.T) {
	var out bytes.Buffer
	dir := filepath.Join(t.TempDir(), "missing")
	term := ui.NewTerminal(nil, &out, dir, nil, logging.New("error", "text"))

	term.SetDownload("tts_output.mp3", &audio.Artifact{Data: []byte("x")})

	_, err := term.Saved()
	assert.Error(t, err)
}

func TestTerminalPlay(t *testing.T) {
	player := &fakePlayer{}
	term := ui.NewTerminal(form.Values{form.Fmt: "mp3"}, &bytes.Buffer{}, t.TempDir(), player, logging.New("error", "text"))

	assert.ErrorIs(t, term.Play(context.Background()), ui.ErrNoAudio)

	a := &audio.Artifact{Data: []byte("x"), Format: "mp3"}
	term.SetAudio(a)
	require.NoError(t, term.Play(context.Background()))
	term.Wait()
	require.Len(t, player.played, 1)
	assert.Same(t, a, player.played[0])

	assert.Equal(t, "mp3", term.Value(form.Fmt))
}

// gatedPlayer blocks until release is closed.
type gatedPlayer struct {
	started chan struct{}
	release chan struct{}
}

func (p *gatedPlayer) Play(ctx context.Context, _ *audio.Artifact) error {
	close(p.started)
	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestTerminalPlayDoesNotWait(t *testing.T) {
	player := &gatedPlayer{started: make(chan struct{}), release: make(chan struct{})}
	term := ui.NewTerminal(nil, &bytes.Buffer{}, t.TempDir(), player, logging.New("error", "text"))
	term.SetAudio(&audio.Artifact{Data: []byte("x")})

	require.NoError(t, term.Play(context.Background()))
	<-player.started

	done := make(chan struct{})
	go func() {
		term.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned while the player was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(player.release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the player exited")
	}
}

func TestTerminalWithoutPlayer(t *testing.T) {
	term := ui.NewTerminal(nil, &bytes.Buffer{}, t.TempDir(), nil, logging.New("error", "text"))
	term.SetAudio(&audio.Artifact{Data: []byte("x")})

	assert.NoError(t, term.Play(context.Background()))
}
