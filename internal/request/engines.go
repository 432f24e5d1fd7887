package request

import "github.com/dgnsrekt/tts-portal/internal/form"

// Option groups shown for each engine.
const (
	GroupPiper      = "piperOpts"
	GroupExpressive = "exprOpts"
)

// EngineInfo describes a selectable engine and the form fields it reads.
type EngineInfo struct {
	Name   string
	Group  string
	Fields []form.Field
}

var engines = []EngineInfo{
	{
		Name:  EnginePiper,
		Group: GroupPiper,
		Fields: []form.Field{
			form.Voice, form.Preset, form.UserID,
			form.LengthScale, form.NoiseScale, form.SentenceSilence,
			form.OnnxURL, form.JSONURL, form.Postprocess,
		},
	},
	{
		Name:  EngineExpressive,
		Group: GroupExpressive,
		Fields: []form.Field{
			form.XVoice, form.XStyle, form.XLang, form.XSpeed, form.XTemp,
		},
	},
}

// Engines returns the selectable engines, piper first.
func Engines() []EngineInfo {
	out := make([]EngineInfo, len(engines))
	copy(out, engines)
	return out
}

// GroupFor returns the option group opened when engine is selected.
func GroupFor(engine string) string {
	if engine == EnginePiper {
		return GroupPiper
	}
	return GroupExpressive
}
