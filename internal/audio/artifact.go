// Package audio holds synthesized audio and plays it back.
package audio

import (
	"mime"
	"time"

	"github.com/dgnsrekt/tts-portal/internal/wav"
)

// Audio formats a synthesis request can ask for.
const (
	FormatMP3 = "mp3"
	FormatWAV = "wav"
)

// DownloadBase is the file name offered for downloads, without extension.
const DownloadBase = "tts_output"

// Artifact is the audio returned by a successful synthesis.
type Artifact struct {
	// Data is the raw payload as returned by the service.
	Data []byte
	// Format is the format that was requested, used only for naming.
	Format string
	// ContentType is the media type reported by the service, if any.
	ContentType string
}

// Extension returns "wav" for WAV requests and "mp3" for everything else.
func (a *Artifact) Extension() string {
	return Extension(a.Format)
}

// Filename returns the suggested download name.
func (a *Artifact) Filename() string {
	return DownloadName(a.Format)
}

// Duration returns the playing time when the payload is WAV, or 0 otherwise.
func (a *Artifact) Duration() time.Duration {
	info, err := wav.Inspect(a.Data)
	if err != nil {
		return 0
	}
	return info.Duration()
}

// MediaType returns the reported content type without parameters, falling
// back to the type implied by the extension.
func (a *Artifact) MediaType() string {
	if a.ContentType != "" {
		if mt, _, err := mime.ParseMediaType(a.ContentType); err == nil {
			return mt
		}
	}
	if a.Extension() == FormatWAV {
		return "audio/wav"
	}
	return "audio/mpeg"
}

// Extension maps a requested format to a file extension.
func Extension(format string) string {
	if format == FormatWAV {
		return FormatWAV
	}
	return FormatMP3
}

// DownloadName returns tts_output.<ext> for the requested format.
func DownloadName(format string) string {
	return DownloadBase + "." + Extension(format)
}
