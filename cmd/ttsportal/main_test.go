package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgnsrekt/tts-portal/internal/config"
	"github.com/dgnsrekt/tts-portal/internal/logging"
	"github.com/dgnsrekt/tts-portal/internal/markup"
	"github.com/dgnsrekt/tts-portal/internal/stub"
	"github.com/dgnsrekt/tts-portal/internal/wav"
)

func startStub(t *testing.T) string {
	t.Helper()
	srv := stub.New(&config.StubConfig{
		HTTPPort:      8000,
		Voices:        []string{"es_ES"},
		MaxTextLength: 5000,
	}, logging.New("error", "text"), nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func setEnv(t *testing.T, apiURL, outputDir string) {
	t.Helper()
	t.Setenv("TTS_PORTAL_API_URL", apiURL)
	t.Setenv("TTS_PORTAL_OUTPUT_DIR", outputDir)
	t.Setenv("TTS_PORTAL_PLAYER", "")
	t.Setenv("SENTRY_DSN", "")
	t.Setenv("LOG_LEVEL", "error")
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if code := run(context.Background(), nil, nil, &stdout, &stderr); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "Usage: ttsportal") {
		t.Errorf("expected usage, got %q", stderr.String())
	}

	stderr.Reset()
	if code := run(context.Background(), []string{"dance"}, nil, &stdout, &stderr); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestRunEngines(t *testing.T) {
	var stdout bytes.Buffer

	if code := run(context.Background(), []string{"engines"}, nil, &stdout, &bytes.Buffer{}); code != 0 {
		t.Fatalf("exit code = %d", code)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 engines, got %q", stdout.String())
	}
	if !strings.HasPrefix(lines[0], "piper\tpiperOpts\t") {
		t.Errorf("unexpected first line %q", lines[0])
	}
}

func TestRunMarkup(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"break at caret", []string{"markup", "-action", "break", "-start", "5", "Hola", "mundo"}, "Hola " + markup.BreakTag + "mundo\n"},
		{"break at end", []string{"markup", "Hola"}, "Hola" + markup.BreakTag + "\n"},
		{"emphasis empty", []string{"markup", "-action", "emphasis", "-selection"}, "<emphasis>texto</emphasis>\n10 15\n"},
		{"slow selection", []string{"markup", "-action", "slow", "-start", "0", "-end", "4", "Hola"}, `<prosody rate="slow">Hola</prosody>` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			if code := run(context.Background(), tt.args, nil, &stdout, &stderr); code != 0 {
				t.Fatalf("exit code = %d: %s", code, stderr.String())
			}
			if stdout.String() != tt.want {
				t.Errorf("output = %q, want %q", stdout.String(), tt.want)
			}
		})
	}
}

func TestRunMarkupUnknownAction(t *testing.T) {
	var stderr bytes.Buffer

	if code := run(context.Background(), []string{"markup", "-action", "shout"}, nil, &bytes.Buffer{}, &stderr); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestRunSpeak(t *testing.T) {
	dir := t.TempDir()
	setEnv(t, startStub(t), dir)

	formFile := filepath.Join(dir, "form.yaml")
	if err := os.WriteFile(formFile, []byte("engine: piper\nvoice: es_ES\nfmt: mp3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	args := []string{"speak", "-form", formFile, "-fmt", "wav", "-text", "-"}

	if code := run(context.Background(), args, strings.NewReader("Hola mundo"), &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d: %s%s", code, stdout.String(), stderr.String())
	}

	data, err := os.ReadFile(filepath.Join(dir, "tts_output.wav"))
	if err != nil {
		t.Fatalf("audio not written: %v", err)
	}
	if _, err := wav.Inspect(data); err != nil {
		t.Errorf("audio is not WAV: %v", err)
	}
	if !strings.Contains(stdout.String(), "Listo ✅") {
		t.Errorf("expected success status, got %q", stdout.String())
	}
}

func TestRunSpeakFailure(t *testing.T) {
	dir := t.TempDir()
	setEnv(t, startStub(t), dir)

	var stdout bytes.Buffer
	args := []string{"speak", "-text", "hola", "-voice", "de_DE"}

	if code := run(context.Background(), args, nil, &stdout, &bytes.Buffer{}); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stdout.String(), "❌ Modelo .onnx no encontrado") {
		t.Errorf("expected error status, got %q", stdout.String())
	}
}

func TestRunVoices(t *testing.T) {
	setEnv(t, startStub(t), t.TempDir())

	var stdout bytes.Buffer
	if code := run(context.Background(), []string{"voices"}, nil, &stdout, &bytes.Buffer{}); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stdout.String(), `"key": "es_ES"`) {
		t.Errorf("expected voice list, got %q", stdout.String())
	}
}

func TestRunSavePreset(t *testing.T) {
	setEnv(t, startStub(t), t.TempDir())

	var stdout bytes.Buffer
	args := []string{"save-preset", "-userId", "alice", "-preset", "calm"}
	if code := run(context.Background(), args, nil, &stdout, &bytes.Buffer{}); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(stdout.String()) != "Preset guardado para alice" {
		t.Errorf("unexpected output %q", stdout.String())
	}

	stdout.Reset()
	if code := run(context.Background(), []string{"save-preset", "-userId", "alice"}, nil, &stdout, &bytes.Buffer{}); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if strings.TrimSpace(stdout.String()) != "Necesitas User ID y un preset." {
		t.Errorf("unexpected output %q", stdout.String())
	}
}
