// Package portal runs the portal flows: synthesis submission, preset saving,
// the installed-voices query and engine selection. It talks to the user only
// through a ui.Port and to the service only through a Backend.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dgnsrekt/tts-portal/internal/audio"
	"github.com/dgnsrekt/tts-portal/internal/client"
	"github.com/dgnsrekt/tts-portal/internal/diag"
	"github.com/dgnsrekt/tts-portal/internal/form"
	"github.com/dgnsrekt/tts-portal/internal/request"
	"github.com/dgnsrekt/tts-portal/internal/ui"
)

var (
	// ErrBusy is returned by Submit while another submission is running.
	ErrBusy = errors.New("a submission is already in progress")
	// ErrPresetFieldsMissing is returned by SavePreset when user or preset is blank.
	ErrPresetFieldsMissing = errors.New("user id and preset are required")
)

// Backend is the TTS service as seen by the flows.
type Backend interface {
	Speak(ctx context.Context, req request.Request) (*audio.Artifact, error)
	Voices(ctx context.Context) (json.RawMessage, error)
	SavePreset(ctx context.Context, user, preset string) error
}

// State is the phase of the submission state machine.
type State int32

const (
	// Idle means no submission is running.
	Idle State = iota
	// Busy means a submission is in flight.
	Busy
	// Success is the terminal state of a submission that produced audio.
	Success
	// Failure is the terminal state of a submission that did not.
	Failure
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Busy:
		return "busy"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Portal coordinates the flows.
type Portal struct {
	port     ui.Port
	backend  Backend
	reporter diag.Reporter
	logger   *slog.Logger
	timeout  time.Duration

	submitting atomic.Bool
	state      atomic.Int32
	outcome    atomic.Int32
}

// New creates a Portal. Failures go to reporter, or to logger when reporter
// is nil. A timeout of zero leaves flows unbounded.
func New(port ui.Port, backend Backend, reporter diag.Reporter, logger *slog.Logger, timeout time.Duration) *Portal {
	if reporter == nil {
		reporter = diag.NewLogReporter(logger)
	}
	return &Portal{
		port:     port,
		backend:  backend,
		reporter: reporter,
		logger:   logger,
		timeout:  timeout,
	}
}

// State returns the current phase.
func (p *Portal) State() State {
	return State(p.state.Load())
}

// LastOutcome returns Success or Failure for the last finished submission,
// or Idle if none has finished.
func (p *Portal) LastOutcome() State {
	return State(p.outcome.Load())
}

func (p *Portal) setState(logger *slog.Logger, s State) {
	prev := State(p.state.Swap(int32(s)))
	logger.Debug("state changed", "from", prev, "to", s)
}

// Submit builds a request from the form and synthesizes it. If the preset
// checkbox is ticked for the piper engine the preset is saved first, and a
// failure there aborts the submission. The submit control is re-enabled on
// every exit.
func (p *Portal) Submit(ctx context.Context) error {
	if !p.submitting.CompareAndSwap(false, true) {
		return ErrBusy
	}

	id := uuid.NewString()
	logger := p.logger.With("submission_id", id)

	playCtx := ctx
	ctx = client.WithRequestID(ctx, id)
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	p.port.ShowResult()
	p.port.SetBusy(true)
	p.setState(logger, Busy)
	p.port.SetStatus(StatusSynthesizing)

	completed := false
	defer func() {
		outcome := Failure
		if completed {
			outcome = Success
		}
		p.outcome.Store(int32(outcome))
		p.setState(logger, outcome)

		p.port.SetBusy(false)
		p.setState(logger, Idle)
		p.submitting.Store(false)
	}()

	fields := form.NewAccessor(p.port)
	engine := fields.Raw(form.Engine)

	if engine == request.EnginePiper && fields.Bool(form.SavePreset) {
		user, preset := fields.Trimmed(form.UserID), fields.Trimmed(form.Preset)
		if user != "" && preset != "" {
			if err := p.savePreset(ctx, user, preset); err != nil {
				return p.fail(ctx, "submit", id, err)
			}
		}
	}

	req := request.Build(engine, p.port)
	logger.Info("submitting synthesis", "engine", req.Engine(), "fmt", req.Format(), "text_length", utf8.RuneCountInString(req.Input()))

	artifact, err := p.backend.Speak(ctx, req)
	if err != nil {
		return p.fail(ctx, "submit", id, err)
	}

	p.port.SetAudio(artifact)
	p.port.SetDownload(audio.DownloadName(req.Format()), artifact)
	// Play only starts playback. A failure to start leaves the download in place.
	if err := p.port.Play(playCtx); err != nil {
		logger.Debug("playback not started", "error", err)
	}
	p.port.SetStatus(StatusDone)

	logger.Info("synthesis finished", "bytes", len(artifact.Data), "duration", artifact.Duration())
	completed = true
	return nil
}

// SavePreset stores the preset of the user named in the form and reports
// the result through alerts.
func (p *Portal) SavePreset(ctx context.Context) error {
	fields := form.NewAccessor(p.port)
	user, preset := fields.Trimmed(form.UserID), fields.Trimmed(form.Preset)

	if user == "" || preset == "" {
		p.port.Alert(AlertPresetFieldsMissing)
		return ErrPresetFieldsMissing
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	if err := p.savePreset(ctx, user, preset); err != nil {
		p.port.Alert(AlertPresetSaveFailed + detail(err))
		p.reporter.Report(ctx, err, map[string]string{"flow": "save_preset", "user_id": user})
		return err
	}

	p.port.Alert(AlertPresetSaved + user)
	return nil
}

func (p *Portal) savePreset(ctx context.Context, user, preset string) error {
	if err := p.backend.SavePreset(ctx, user, preset); err != nil {
		return fmt.Errorf("failed to save preset: %w", err)
	}
	p.logger.Info("preset saved", "user_id", user, "preset", preset)
	return nil
}

// ListVoices fetches the installed voices and renders them indented.
func (p *Portal) ListVoices(ctx context.Context) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	p.port.ShowResult()
	p.port.SetStatus(StatusQueryingVoices)

	raw, err := p.backend.Voices(ctx)
	if err == nil {
		var buf bytes.Buffer
		if err = json.Indent(&buf, raw, "", "  "); err == nil {
			p.port.ShowVoices()
			p.port.SetVoices(buf.String())
			p.port.SetStatus(StatusVoicesReady)
			return nil
		}
		err = fmt.Errorf("%w: %v", client.ErrInvalidJSON, err)
	}

	p.port.SetStatus(ErrorPrefix + detail(err))
	p.port.SetVoices("")
	p.reporter.Report(ctx, err, map[string]string{"flow": "voices"})
	return err
}

// SelectEngine opens the option group of engine and collapses the others.
func (p *Portal) SelectEngine(engine string) {
	open := request.GroupFor(engine)
	for _, e := range request.Engines() {
		p.port.SetOptionGroup(e.Group, e.Group == open)
	}
}

func (p *Portal) fail(ctx context.Context, flow, id string, err error) error {
	p.port.SetStatus(ErrorPrefix + detail(err))
	p.reporter.Report(ctx, err, map[string]string{"flow": flow, "submission_id": id})
	return err
}

func (p *Portal) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

// detail is the text shown to the user for err: the body of a rejected
// request, or the error message otherwise.
func detail(err error) string {
	var remote *client.RemoteError
	if errors.As(err, &remote) {
		return strings.TrimRight(remote.Body, "\r\n")
	}
	var transport *client.TransportError
	if errors.As(err, &transport) {
		return transport.Error()
	}
	return err.Error()
}
