package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/dgnsrekt/tts-portal/internal/audio"
	"github.com/dgnsrekt/tts-portal/internal/client"
	"github.com/dgnsrekt/tts-portal/internal/config"
	"github.com/dgnsrekt/tts-portal/internal/diag"
	"github.com/dgnsrekt/tts-portal/internal/form"
	"github.com/dgnsrekt/tts-portal/internal/logging"
	"github.com/dgnsrekt/tts-portal/internal/markup"
	"github.com/dgnsrekt/tts-portal/internal/portal"
	"github.com/dgnsrekt/tts-portal/internal/request"
	"github.com/dgnsrekt/tts-portal/internal/ui"
)

const usage = `Usage: ttsportal <command> [flags]

Commands:
  speak        synthesize the form text and save the audio
  voices       list the voices installed on the service
  save-preset  store the default preset of a user
  markup       apply a markup action to a text
  engines      list the engines and the form fields they read

Form fields are read from -form and overridden by flags named after the
field ids (-text, -voice, -userId, ...). -text - reads the text from stdin.
`

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd, args := args[0], args[1:]

	switch cmd {
	case "engines":
		return runEngines(stdout)
	case "markup":
		return runMarkup(args, stdout, stderr)
	case "speak", "voices", "save-preset":
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	formPath := fs.String("form", "", "YAML file with form field values")
	apply := bindFormFlags(fs)

	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "failed to load config: "+err.Error())
		return 1
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	values := form.Values{
		form.Engine: request.EnginePiper,
		form.Fmt:    audio.FormatMP3,
	}
	if *formPath != "" {
		loaded, err := form.LoadFile(*formPath)
		if err != nil {
			logger.Error("failed to load form", "error", err)
			return 1
		}
		values.Merge(loaded)
	}
	apply(values)

	if values.Value(form.Text) == "-" {
		text, err := io.ReadAll(stdin)
		if err != nil {
			logger.Error("failed to read text from stdin", "error", err)
			return 1
		}
		values.Set(form.Text, string(text))
	}

	reporter := diag.Multi{diag.NewLogReporter(logger)}
	if cfg.DiagnosticsEnabled() {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
		})
		if err != nil {
			logger.Warn("sentry init failed", "error", err)
		} else {
			sentryReporter := diag.NewSentryReporter(sentry.CurrentHub())
			defer sentryReporter.Flush(2 * time.Second)
			reporter = append(reporter, sentryReporter)
		}
	}

	var player audio.Player
	if cfg.Autoplay && cfg.Player != "" {
		p, err := audio.NewCommandPlayer(cfg.Player)
		if err != nil {
			logger.Warn("playback disabled", "error", err)
		} else {
			player = p
		}
	}

	term := ui.NewTerminal(values, stdout, cfg.OutputDir, player, logger)
	backend := client.New(cfg.APIURL,
		client.WithToken(cfg.BearerToken),
		client.WithLogger(logger),
	)
	p := portal.New(term, backend, reporter, logger, cfg.Timeout)

	logger.Debug("configuration loaded",
		"api_url", cfg.APIURL,
		"timeout", cfg.Timeout,
		"output_dir", cfg.OutputDir,
		"player", cfg.Player,
		"diagnostics", cfg.DiagnosticsEnabled(),
	)

	switch cmd {
	case "speak":
		p.SelectEngine(values.Value(form.Engine))
		err = p.Submit(ctx)
		if err == nil {
			_, err = term.Saved()
		}
		term.Wait()
	case "voices":
		err = p.ListVoices(ctx)
	case "save-preset":
		err = p.SavePreset(ctx)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted")
		}
		return 1
	}
	return 0
}

// bindFormFlags registers one flag per form field. The returned function
// copies the flags given on the command line into values.
func bindFormFlags(fs *flag.FlagSet) func(form.Values) {
	strs := make(map[form.Field]*string)
	bools := make(map[form.Field]*bool)

	for _, f := range form.Fields {
		if form.Checkbox(f) {
			bools[f] = fs.Bool(string(f), false, "check the "+string(f)+" box")
		} else {
			strs[f] = fs.String(string(f), "", "value of the "+string(f)+" field")
		}
	}

	return func(values form.Values) {
		fs.Visit(func(fl *flag.Flag) {
			f := form.Field(fl.Name)
			if v, ok := strs[f]; ok {
				values.Set(f, *v)
			}
			if v, ok := bools[f]; ok {
				values.SetChecked(f, *v)
			}
		})
	}
}

func runEngines(stdout io.Writer) int {
	for _, e := range request.Engines() {
		fields := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			fields = append(fields, string(f))
		}
		fmt.Fprintf(stdout, "%s\t%s\t%s\n", e.Name, e.Group, strings.Join(fields, ","))
	}
	return 0
}

func runMarkup(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("markup", flag.ContinueOnError)
	fs.SetOutput(stderr)
	action := fs.String("action", string(markup.Break), "one of break, emphasis, slow, fast")
	start := fs.Int("start", -1, "selection start (character offset); -1 puts the caret at the end")
	end := fs.Int("end", -1, "selection end (character offset); defaults to start")
	showSel := fs.Bool("selection", false, "print the resulting selection after the text")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	a, err := markup.ParseAction(*action)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	buf := markup.NewText(strings.Join(fs.Args(), " "))
	if *start >= 0 {
		e := *end
		if e < 0 {
			e = *start
		}
		buf.Select(*start, e)
	}

	if err := markup.Apply(buf, a); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	fmt.Fprintln(stdout, buf.Text())
	if *showSel {
		s, e, _ := buf.Selection()
		fmt.Fprintf(stdout, "%d %d\n", s, e)
	}
	return 0
}
