package ui

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/dgnsrekt/tts-portal/internal/audio"
	"github.com/dgnsrekt/tts-portal/internal/form"
	"github.com/dgnsrekt/tts-portal/internal/markup"
)

// ErrNoAudio is returned by Play when no audio is loaded.
var ErrNoAudio = errors.New("no audio loaded")

// Memory is an in-memory Port that records everything the flows do to it.
// It also serves as the markup buffer over the text field.
type Memory struct {
	mu sync.Mutex

	values form.Values
	sel    *markup.Range

	busy          bool
	busyHistory   []bool
	resultVisible bool
	voicesVisible bool
	statuses      []string
	voices        string
	alerts        []string
	groups        map[string]bool

	audio        *audio.Artifact
	playErr      error
	plays        int
	downloadName string
	download     *audio.Artifact
}

// NewMemory creates a Memory port holding values.
func NewMemory(values form.Values) *Memory {
	if values == nil {
		values = form.Values{}
	}
	return &Memory{
		values: values,
		groups: make(map[string]bool),
	}
}

// Value implements form.Source.
func (m *Memory) Value(f form.Field) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values.Value(f)
}

// Checked implements form.Source.
func (m *Memory) Checked(f form.Field) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values.Checked(f)
}

// Set changes a form field.
func (m *Memory) Set(f form.Field, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values.Set(f, value)
}

// SetChecked changes a checkbox field.
func (m *Memory) SetChecked(f form.Field, checked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values.SetChecked(f, checked)
}

// Text implements markup.Buffer over the text field.
func (m *Memory) Text() string {
	return m.Value(form.Text)
}

// SetText implements markup.Buffer.
func (m *Memory) SetText(text string) {
	m.Set(form.Text, text)
}

// Selection implements markup.Buffer.
func (m *Memory) Selection() (int, int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sel == nil {
		return 0, 0, false
	}
	return m.sel.Start, m.sel.End, true
}

// Select implements markup.Buffer.
func (m *Memory) Select(start, end int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sel = &markup.Range{Start: start, End: end}
}

// SetBusy implements Port.
func (m *Memory) SetBusy(busy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = busy
	m.busyHistory = append(m.busyHistory, busy)
}

// ShowResult implements Port.
func (m *Memory) ShowResult() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultVisible = true
	m.voicesVisible = false
}

// ShowVoices implements Port.
func (m *Memory) ShowVoices() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voicesVisible = true
}

// SetStatus implements Port.
func (m *Memory) SetStatus(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, text)
}

// SetVoices implements Port.
func (m *Memory) SetVoices(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voices = text
}

// SetAudio implements Port.
func (m *Memory) SetAudio(a *audio.Artifact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audio = a
}

// Play implements Port. It fails with the error set by FailPlayback.
func (m *Memory) Play(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.audio == nil {
		return ErrNoAudio
	}
	m.plays++
	return m.playErr
}

// SetDownload implements Port.
func (m *Memory) SetDownload(name string, a *audio.Artifact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadName = name
	m.download = a
}

// Alert implements Port.
func (m *Memory) Alert(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, msg)
}

// SetOptionGroup implements Port.
func (m *Memory) SetOptionGroup(group string, open bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[group] = open
}

// FailPlayback makes later Play calls return err.
func (m *Memory) FailPlayback(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// Busy reports whether the submit control is disabled.
func (m *Memory) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// BusyHistory returns every SetBusy call in order.
func (m *Memory) BusyHistory() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.busyHistory)
}

// Status returns the current status text.
func (m *Memory) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.statuses) == 0 {
		return ""
	}
	return m.statuses[len(m.statuses)-1]
}

// Statuses returns every status text in order.
func (m *Memory) Statuses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.statuses)
}

// ResultVisible reports whether the result panel is shown.
func (m *Memory) ResultVisible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultVisible
}

// VoicesVisible reports whether the voices panel is shown.
func (m *Memory) VoicesVisible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voicesVisible
}

// Voices returns the rendered voice list.
func (m *Memory) Voices() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voices
}

// Alerts returns every alert in order.
func (m *Memory) Alerts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.alerts)
}

// Audio returns the loaded audio.
func (m *Memory) Audio() *audio.Artifact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.audio
}

// Plays returns how many times playback was started.
func (m *Memory) Plays() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays
}

// Download returns the download target.
func (m *Memory) Download() (string, *audio.Artifact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.downloadName, m.download
}

// GroupOpen reports whether an option group is open.
func (m *Memory) GroupOpen(group string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.groups[group]
}
