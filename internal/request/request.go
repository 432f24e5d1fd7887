// Package request turns form state into a synthesis request for one of the
// supported engines.
package request

import (
	"encoding/json"

	"github.com/dgnsrekt/tts-portal/internal/form"
)

// Engine names.
const (
	EnginePiper      = "piper"
	EngineExpressive = "expressive"
)

// Defaults applied when a numeric field is blank or not a finite number.
const (
	DefaultLengthScale     = 1.0
	DefaultNoiseScale      = 0.667
	DefaultSentenceSilence = 0.2
	DefaultSpeed           = 1.0
	DefaultTemperature     = 0.8
	DefaultLang            = "es"
)

// Request is a synthesis request. It is implemented only by Piper and Expressive.
type Request interface {
	// Engine returns the engine tag sent with the request.
	Engine() string
	// Format returns the requested audio format as entered by the user.
	Format() string
	// Input returns the text to synthesize.
	Input() string

	isRequest()
}

// Common holds the fields shared by every engine.
type Common struct {
	Text string `json:"text"`
	Fmt  string `json:"fmt"`
}

// Piper is a request for the parametric offline engine.
type Piper struct {
	Common

	Voice           *string `json:"voice,omitempty"`
	Preset          *string `json:"preset,omitempty"`
	UserID          *string `json:"user_id,omitempty"`
	LengthScale     float64 `json:"length_scale"`
	NoiseScale      float64 `json:"noise_scale"`
	SentenceSilence float64 `json:"sentence_silence"`
	OnnxURL         *string `json:"onnx_url,omitempty"`
	JSONURL         *string `json:"json_url,omitempty"`
	Postprocess     bool    `json:"postprocess"`
}

// Expressive is a request for the style and voice driven engine.
type Expressive struct {
	Common

	Voice       *string `json:"x_voice,omitempty"`
	Style       *string `json:"style,omitempty"`
	Lang        string  `json:"lang"`
	Speed       float64 `json:"speed"`
	Temperature float64 `json:"temperature"`
}

// Engine returns EnginePiper.
func (Piper) Engine() string { return EnginePiper }

// Engine returns EngineExpressive.
func (Expressive) Engine() string { return EngineExpressive }

// Format returns the requested audio format.
func (c Common) Format() string { return c.Fmt }

// Input returns the text to synthesize.
func (c Common) Input() string { return c.Text }

func (Piper) isRequest()      {}
func (Expressive) isRequest() {}

// MarshalJSON adds the engine tag to the encoded request.
func (p Piper) MarshalJSON() ([]byte, error) {
	type plain Piper
	return json.Marshal(struct {
		Engine string `json:"engine"`
		plain
	}{EnginePiper, plain(p)})
}

// MarshalJSON adds the engine tag to the encoded request.
func (e Expressive) MarshalJSON() ([]byte, error) {
	type plain Expressive
	return json.Marshal(struct {
		Engine string `json:"engine"`
		plain
	}{EngineExpressive, plain(e)})
}

// Build creates the request for engine from the current form state.
// Only the fields of the selected engine are read; any engine other than
// piper yields an Expressive request.
func Build(engine string, fields form.Source) Request {
	a := form.NewAccessor(fields)

	common := Common{
		Text: a.Raw(form.Text),
		Fmt:  a.Raw(form.Fmt),
	}

	if engine == EnginePiper {
		return Piper{
			Common: common,

			Voice:           a.String(form.Voice),
			Preset:          a.String(form.Preset),
			UserID:          a.String(form.UserID),
			LengthScale:     a.Number(form.LengthScale, DefaultLengthScale),
			NoiseScale:      a.Number(form.NoiseScale, DefaultNoiseScale),
			SentenceSilence: a.Number(form.SentenceSilence, DefaultSentenceSilence),
			OnnxURL:         a.String(form.OnnxURL),
			JSONURL:         a.String(form.JSONURL),
			Postprocess:     a.Bool(form.Postprocess),
		}
	}

	lang := DefaultLang
	if l := a.String(form.XLang); l != nil {
		lang = *l
	}

	return Expressive{
		Common: common,

		Voice:       a.String(form.XVoice),
		Style:       a.String(form.XStyle),
		Lang:        lang,
		Speed:       a.Number(form.XSpeed, DefaultSpeed),
		Temperature: a.Number(form.XTemp, DefaultTemperature),
	}
}
