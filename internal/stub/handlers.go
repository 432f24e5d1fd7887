package stub

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgnsrekt/tts-portal/internal/wav"
)

// SpeakRequest is the body accepted by POST /api/speak for either engine.
type SpeakRequest struct {
	Engine string `json:"engine"`
	Text   string `json:"text"`
	Fmt    string `json:"fmt"`

	// Piper parameters
	Voice           string  `json:"voice"`
	Preset          string  `json:"preset"`
	UserID          string  `json:"user_id"`
	LengthScale     float64 `json:"length_scale"`
	NoiseScale      float64 `json:"noise_scale"`
	SentenceSilence float64 `json:"sentence_silence"`
	OnnxURL         string  `json:"onnx_url"`
	JSONURL         string  `json:"json_url"`
	Postprocess     bool    `json:"postprocess"`

	// Expressive parameters
	XVoice      string  `json:"x_voice"`
	Style       string  `json:"style"`
	Lang        string  `json:"lang"`
	Speed       float64 `json:"speed"`
	Temperature float64 `json:"temperature"`
}

// Voice describes an installed Piper voice.
type Voice struct {
	Key  string `json:"key"`
	Onnx string `json:"onnx"`
	JSON string `json:"json"`
}

// PresetResponse is the body of GET /api/prefs/preset.
type PresetResponse struct {
	UserID string `json:"user_id"`
	Preset string `json:"preset"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// Clip length bounds for the silent audio returned by speak.
const (
	perCharacter = 50 * time.Millisecond
	minClip      = 200 * time.Millisecond
	maxClip      = 5 * time.Second
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{OK: true})
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req SpeakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("failed to decode speak request", "error", err)
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.Engine == "" {
		req.Engine = "piper"
	}
	if req.Engine != "piper" && req.Engine != "expressive" {
		http.Error(w, "unknown engine: "+req.Engine, http.StatusBadRequest)
		return
	}

	if req.Fmt == "" {
		req.Fmt = "mp3"
	}
	if req.Fmt != "mp3" && req.Fmt != "wav" {
		http.Error(w, "fmt must be one of: mp3, wav", http.StatusUnprocessableEntity)
		return
	}

	length := utf8.RuneCountInString(req.Text)
	if length > s.cfg.MaxTextLength {
		s.logger.Warn("text exceeds max length", "length", length, "max", s.cfg.MaxTextLength)
		http.Error(w, "text exceeds maximum length", http.StatusBadRequest)
		return
	}

	voice := req.XVoice
	if req.Engine == "piper" {
		voice = req.Voice
		if voice == "" && len(s.cfg.Voices) > 0 {
			voice = s.cfg.Voices[0]
		}
		if !slices.Contains(s.cfg.Voices, voice) && req.OnnxURL == "" {
			http.Error(w, "Modelo .onnx no encontrado", http.StatusBadRequest)
			return
		}
	}

	clip := min(max(time.Duration(length)*perCharacter, minClip), maxClip)

	s.logger.Info("speak request served",
		"request_id", r.Header.Get("X-Request-ID"),
		"engine", req.Engine,
		"voice", voice,
		"fmt", req.Fmt,
		"text_length", length,
		"clip", clip,
	)

	// The stub cannot encode MP3; it always answers with WAV.
	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	w.Write(wav.Silence(clip))
}

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	voices := make([]Voice, 0, len(s.cfg.Voices))
	for _, key := range s.cfg.Voices {
		voices = append(voices, Voice{
			Key:  key,
			Onnx: key + ".onnx",
			JSON: key + ".onnx.json",
		})
	}

	writeJSON(w, http.StatusOK, voices)
}

func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user_id"))
	preset := strings.TrimSpace(r.URL.Query().Get("preset"))

	if user == "" || preset == "" {
		http.Error(w, "user_id and preset are required", http.StatusBadRequest)
		return
	}

	if err := s.presets.Save(user, preset); err != nil {
		s.logger.Error("failed to save preset", "user_id", user, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Info("preset saved", "user_id", user, "preset", preset)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if user == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	preset, ok, err := s.presets.Get(user)
	if err != nil {
		s.logger.Error("failed to load preset", "user_id", user, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "no preset for user", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, PresetResponse{UserID: user, Preset: preset})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
