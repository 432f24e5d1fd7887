// Package ui defines the surface the portal flows drive: typed access to the
// form controls plus the display regions (status line, busy flag, result and
// voices panels, audio element, download target).
package ui

import (
	"context"

	"github.com/dgnsrekt/tts-portal/internal/audio"
	"github.com/dgnsrekt/tts-portal/internal/form"
)

// Port is implemented by every front end of the portal.
type Port interface {
	form.Source

	// SetBusy enables or disables the submit control.
	SetBusy(busy bool)
	// ShowResult reveals the result panel and hides the voices panel.
	ShowResult()
	// ShowVoices reveals the voices panel.
	ShowVoices()
	SetStatus(text string)
	SetVoices(text string)

	// SetAudio loads a into the audio element, replacing the previous one.
	SetAudio(a *audio.Artifact)
	// Play starts playback of the loaded audio and returns without waiting
	// for it to finish.
	Play(ctx context.Context) error
	// SetDownload points the download target at a under name.
	SetDownload(name string, a *audio.Artifact)

	// Alert shows a blocking notification.
	Alert(msg string)
	// SetOptionGroup opens or collapses a group of engine options.
	SetOptionGroup(group string, open bool)
}
