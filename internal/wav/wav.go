// Package wav builds and inspects PCM WAV payloads.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const (
	// HeaderSize is the size of a canonical WAV header in bytes.
	HeaderSize = 44

	// FormatPCM is the audio format code for uncompressed PCM.
	FormatPCM = 1
)

// Piper writes 16-bit mono PCM at 22050 Hz.
const (
	PiperSampleRate    = 22050
	PiperChannels      = 1
	PiperBitsPerSample = 16
)

// ErrNotWAV is returned when a payload does not start with a RIFF/WAVE header.
var ErrNotWAV = errors.New("not a WAV payload")

// Info describes the PCM stream of a WAV payload.
type Info struct {
	Format        uint16
	Channels      int
	SampleRate    int
	BitsPerSample int
	DataSize      int
}

// Duration returns the playing time of the data chunk.
func (i Info) Duration() time.Duration {
	bytesPerSecond := i.SampleRate * i.Channels * i.BitsPerSample / 8
	if bytesPerSecond == 0 {
		return 0
	}
	return time.Duration(i.DataSize) * time.Second / time.Duration(bytesPerSecond)
}

// WrapRawPCM prefixes raw PCM samples with a canonical 44-byte header.
func WrapRawPCM(pcm []byte, sampleRate, channels, bitsPerSample int) []byte {
	le := binary.LittleEndian

	dataSize := len(pcm)
	blockAlign := channels * bitsPerSample / 8

	header := make([]byte, HeaderSize)

	copy(header[0:4], "RIFF")
	le.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	le.PutUint32(header[16:20], 16)
	le.PutUint16(header[20:22], FormatPCM)
	le.PutUint16(header[22:24], uint16(channels))
	le.PutUint32(header[24:28], uint32(sampleRate))
	le.PutUint32(header[28:32], uint32(sampleRate*blockAlign))
	le.PutUint16(header[32:34], uint16(blockAlign))
	le.PutUint16(header[34:36], uint16(bitsPerSample))

	copy(header[36:40], "data")
	le.PutUint32(header[40:44], uint32(dataSize))

	return append(header, pcm...)
}

// Silence returns a WAV payload of the given length filled with zero samples
// in Piper's output format.
func Silence(d time.Duration) []byte {
	samples := int(d * PiperSampleRate / time.Second)
	pcm := make([]byte, samples*PiperChannels*PiperBitsPerSample/8)
	return WrapRawPCM(pcm, PiperSampleRate, PiperChannels, PiperBitsPerSample)
}

// Inspect walks the RIFF chunks of data and returns the stream description.
// Chunks other than "fmt " and "data" are skipped.
func Inspect(data []byte) (Info, error) {
	le := binary.LittleEndian

	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Info{}, ErrNotWAV
	}

	var info Info
	var haveFmt bool

	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(le.Uint32(data[off+4 : off+8]))
		body := off + 8

		switch id {
		case "fmt ":
			if size < 16 || body+16 > len(data) {
				return Info{}, fmt.Errorf("%w: short fmt chunk", ErrNotWAV)
			}
			info.Format = le.Uint16(data[body : body+2])
			info.Channels = int(le.Uint16(data[body+2 : body+4]))
			info.SampleRate = int(le.Uint32(data[body+4 : body+8]))
			info.BitsPerSample = int(le.Uint16(data[body+14 : body+16]))
			haveFmt = true

		case "data":
			if !haveFmt {
				return Info{}, fmt.Errorf("%w: data chunk before fmt chunk", ErrNotWAV)
			}
			// Streaming writers leave the size unset; trust the payload length instead.
			if size == 0 || body+size > len(data) {
				size = len(data) - body
			}
			info.DataSize = size
			return info, nil
		}

		// Chunks are padded to an even size.
		off = body + size + size%2
	}

	return Info{}, fmt.Errorf("%w: missing data chunk", ErrNotWAV)
}
