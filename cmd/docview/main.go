// Command docview loads a document, applies navigation, zoom, search and
// script commands, and prints the renderer's events as JSON lines.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/wudi/docview/annotation"
	"github.com/wudi/docview/content"
	"github.com/wudi/docview/event"
	"github.com/wudi/docview/observability"
	"github.com/wudi/docview/ocr/tesseract"
	"github.com/wudi/docview/renderer"
	"github.com/wudi/docview/scripting"
	"github.com/wudi/docview/surface"
)

type options struct {
	source      string
	configPath  string
	unit        int
	query       string
	script      string
	htmlOut     string
	csvOut      string
	annotations string
	exportAnn   string
	timeout     time.Duration
	cfg         *Config
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "docview: %v\n", err)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "docview: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("docview", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: docview [flags] <file or url>\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	contentType := fs.String("type", "", "Content type, overrides the file extension")
	zoom := fs.Float64("zoom", 1, "Zoom factor")
	continuous := fs.Bool("continuous", true, "Stack pages instead of showing one at a time")
	useOCR := fs.Bool("ocr", false, "Extract text from images with tesseract")
	langs := fs.String("lang", "eng", "Comma separated OCR languages")
	level := fs.String("log-level", "info", "debug, info, warn or error")
	fs.IntVar(&opts.unit, "goto", 0, "Unit to show, 1-indexed")
	fs.StringVar(&opts.query, "search", "", "Search query")
	fs.StringVar(&opts.script, "script", "", "JavaScript file run against the viewer")
	fs.StringVar(&opts.htmlOut, "html", "", "Write the rendered surface to this file")
	fs.StringVar(&opts.csvOut, "csv", "", "Write the current sheet as CSV to this file")
	fs.StringVar(&opts.annotations, "annotations", "", "Import annotations from this JSON file")
	fs.StringVar(&opts.exportAnn, "export-annotations", "", "Write annotations as JSON to this file")
	fs.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Overall time limit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, errors.New("missing document")
	}
	opts.source = fs.Arg(0)

	cfg := defaultConfig()
	if opts.configPath != "" {
		loaded, err := LoadFile(opts.configPath)
		if err != nil {
			return options{}, err
		}
		cfg = loaded
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "type":
			cfg.ContentType = *contentType
		case "zoom":
			cfg.Zoom = *zoom
		case "continuous":
			cfg.Continuous = continuous
		case "ocr":
			cfg.OCR.Enabled = *useOCR
		case "lang":
			cfg.OCR.Languages = strings.Split(*langs, ",")
		case "log-level":
			cfg.LogLevel = *level
		}
	})
	cfg.applyDefaults()
	opts.cfg = cfg
	return opts, nil
}

func openSource(s string) content.Source {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return content.URL(s, http.DefaultClient)
	}
	return content.File(s)
}

func run(ctx context.Context, opts options, out io.Writer) error {
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	cfg := opts.cfg
	logger := observability.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.level()})))

	src := openSource(opts.source)
	ctor, err := renderer.Default().Lookup(cfg.ContentType, content.Ext(src))
	if err != nil {
		return err
	}
	ropts := append(cfg.Options(), renderer.WithLogger(logger))
	if cfg.OCR.Enabled {
		ropts = append(ropts, renderer.WithOCR(tesseract.New(), cfg.OCR.Languages...))
	}
	host := surface.Element("div", surface.Attr("id", "viewer"))
	r, err := ctor(host, ropts...)
	if err != nil {
		return err
	}
	defer r.Destroy()

	enc := json.NewEncoder(out)
	r.Subscribe(func(e event.Event) {
		b, err := event.Encode(e)
		if err != nil {
			logger.Warn("encode event", observability.Error("error", err))
			return
		}
		_ = enc.Encode(json.RawMessage(b))
	})

	if err := r.Load(ctx, src); err != nil {
		return err
	}
	if err := r.Render(ctx); err != nil {
		return err
	}
	if opts.annotations != "" {
		if err := importAnnotations(r, opts.annotations); err != nil {
			return err
		}
	}
	if cfg.Zoom != 1 {
		if err := r.SetZoom(ctx, cfg.Zoom); err != nil {
			return err
		}
	}
	if opts.unit > 0 {
		ok, err := r.Goto(ctx, opts.unit)
		if err != nil {
			return err
		}
		if !ok {
			logger.Warn("unit out of range", observability.Int("unit", opts.unit))
		}
	}
	if opts.query != "" {
		if _, err := r.Search(ctx, opts.query); err != nil {
			return err
		}
	}
	if opts.script != "" {
		if err := runScript(ctx, r, opts.script, out, logger); err != nil {
			return err
		}
	}
	if opts.csvOut != "" {
		if err := exportCSV(r, opts.csvOut); err != nil {
			return err
		}
	}
	if opts.exportAnn != "" {
		if err := writeJSON(opts.exportAnn, r.ExportAnnotations()); err != nil {
			return err
		}
	}
	if opts.htmlOut != "" {
		markup, err := surface.Render(host)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.htmlOut, []byte(markup), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func importAnnotations(r renderer.Renderer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var list []annotation.Annotation
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return r.ImportAnnotations(list)
}

func runScript(ctx context.Context, r renderer.Renderer, path string, out io.Writer, logger observability.Logger) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	engine := scripting.NewEngine(scripting.WithOutput(out), scripting.WithLogger(logger))
	if err := engine.Bind(r); err != nil {
		return err
	}
	val, err := engine.Execute(ctx, string(code))
	if err != nil {
		return err
	}
	if val != nil {
		logger.Info("script finished", observability.String("result", fmt.Sprint(val)))
	}
	return nil
}

func exportCSV(r renderer.Renderer, path string) error {
	x, ok := r.(renderer.CSVExporter)
	if !ok {
		return fmt.Errorf("%s documents cannot be exported as csv", r.Snapshot().Format)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := x.ExportCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
