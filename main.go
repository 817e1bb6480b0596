package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"ParallaxSketch/internal/config"
	"ParallaxSketch/internal/export"
	"ParallaxSketch/internal/logging"
	"ParallaxSketch/internal/motion"
	pnet "ParallaxSketch/internal/net"
	"ParallaxSketch/internal/studio"
	"ParallaxSketch/internal/ui"
)

func main() {
	configPath := flag.String("config", "parallax.toml", "path to the TOML configuration")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (overrides the config)")
	sketchPath := flag.String("sketch", "", "sketch JSON to open")
	record := flag.Bool("record", false, "render the export loop of -sketch without a window and exit")
	pdfPath := flag.String("pdf", "", "write a vector PDF of -sketch without a window and exit")
	width := flag.Int("width", 1280, "canvas width for headless output")
	height := flag.Int("height", 720, "canvas height for headless output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logging.ParseLevel(level)})))

	var sketch []byte
	if *sketchPath != "" {
		if sketch, err = os.ReadFile(*sketchPath); err != nil {
			logging.Logger().Error("could not read sketch", "path", *sketchPath, "err", err)
			os.Exit(1)
		}
	}

	if *record || *pdfPath != "" {
		if err := runHeadless(cfg, sketch, *width, *height, *record, *pdfPath); err != nil {
			logging.Logger().Error("headless export failed", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := ui.Options{Config: cfg, Sketch: sketch}
	if cfg.Tilt.Enabled {
		tilt, url, cleanup := startTilt(ctx, cfg.Tilt)
		defer cleanup()
		if tilt != nil {
			opts.Tilt, opts.CompanionURL = tilt, url
		}
	}
	ui.RunApp(opts)
}

// startTilt starts the companion server and, if configured, announces it
// over mDNS. A failure leaves tilt disabled.
func startTilt(ctx context.Context, cfg config.Tilt) (*pnet.TiltServer, string, func()) {
	srv := pnet.NewTiltServer()
	if err := srv.Listen(ctx, cfg.Addr); err != nil {
		logging.Logger().Warn("tilt disabled", "err", err)
		return nil, "", func() {}
	}
	cleanup := func() { _ = srv.Close() }

	url, err := pnet.CompanionURL(srv.Addr())
	if err != nil {
		logging.Logger().Warn("companion url unavailable", "err", err)
	} else {
		logging.Logger().Info("tilt companion ready", "url", url)
	}

	if cfg.Advertise {
		_, portStr, _ := net.SplitHostPort(srv.Addr())
		port, _ := strconv.Atoi(portStr)
		zone, err := pnet.Advertise(port)
		if err != nil {
			logging.Logger().Warn("mDNS advertise failed", "err", err)
		} else {
			cleanup = func() {
				_ = zone.Shutdown()
				_ = srv.Close()
			}
		}
	}
	return srv, url, cleanup
}

// runHeadless renders without a window. Frames are stepped on a manual
// clock at the export frame rate, so output is identical on every run.
func runHeadless(cfg config.Config, sketch []byte, width, height int, record bool, pdfPath string) error {
	if len(sketch) == 0 {
		return fmt.Errorf("headless output needs -sketch")
	}
	save := func(b export.Blob) error {
		if err := os.MkdirAll(cfg.Export.OutDir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(cfg.Export.OutDir, b.Name)
		logging.Logger().Info("writing export", "path", path)
		return os.WriteFile(path, b.Data, 0o644)
	}
	st := studio.New(cfg, nil, save)
	st.Resize(width, height)
	if err := st.ImportJSON(sketch); err != nil {
		return err
	}

	if pdfPath != "" {
		f, err := os.Create(pdfPath)
		if err != nil {
			return err
		}
		if err := st.WriteStrokesPDF(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	if !record {
		return nil
	}

	var result error
	st.OnExport = func(_ *export.Blob, err error) { result = err }
	clock := motion.NewManualClock(time.Now())
	if !st.RecordExport(clock.Now()) {
		return fmt.Errorf("could not start recording")
	}
	step := time.Second / time.Duration(cfg.Export.FPS)
	for st.Recorder().Recording() {
		st.Frame(clock.Now())
		clock.Advance(step)
	}
	return result
}
