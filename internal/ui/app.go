// Package ui is the fyne desktop shell around the studio.
package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"ParallaxSketch/internal/config"
	"ParallaxSketch/internal/export"
	"ParallaxSketch/internal/logging"
	"ParallaxSketch/internal/motion"
	"ParallaxSketch/internal/studio"
)

// tiltWait bounds how long enabling tilt waits for a companion.
const tiltWait = 30 * time.Second

// Options configures RunApp.
type Options struct {
	Config config.Config
	// Tilt is the orientation source; nil disables the tilt action.
	Tilt motion.TiltSource
	// CompanionURL is shown when tilt is enabled.
	CompanionURL string
	// Sketch is loaded into the canvas on start.
	Sketch []byte
}

// App is the running desktop application.
type App struct {
	opts   Options
	app    fyne.App
	window fyne.Window

	studio *studio.Studio
	canvas *CanvasWidget
	status *widget.Label

	swatches   []*colorSwatch
	actions    *widget.Toolbar
	playAction *widget.ToolbarAction

	loop   *motion.Loop
	cancel context.CancelFunc
}

// RunApp opens the main window and blocks until it is closed.
func RunApp(opts Options) {
	a := &App{opts: opts, app: app.New(), status: widget.NewLabel("Ready")}
	a.window = a.app.NewWindow("Parallax Sketch")
	a.window.Resize(fyne.NewSize(1200, 800))

	a.studio = studio.New(opts.Config, opts.Tilt, a.saveBlob)
	a.studio.OnExport = a.exportDone
	a.canvas = NewCanvasWidget(a.studio, a.invalidate)

	if len(opts.Sketch) > 0 {
		if err := a.studio.ImportJSON(opts.Sketch); err != nil {
			logging.Logger().Warn("startup sketch ignored", "err", err)
		}
	}

	content := container.NewBorder(a.newToolbar(), a.newScenePanel(), nil, nil, a.canvas)
	a.window.SetContent(content)
	a.window.SetMainMenu(a.newMainMenu())
	a.addShortcuts()

	a.startLoop()
	a.window.SetOnClosed(func() {
		if a.cancel != nil {
			a.cancel()
		}
	})
	a.window.ShowAndRun()
}

// startLoop (re)starts the frame loop with the scheduler matching the
// current power mode.
func (a *App) startLoop() {
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	sched := motion.NewScheduler(a.studio.Controller().LowPower(), motion.FrameInterval)
	a.loop = motion.NewLoop(sched, motion.SystemClock{}, fyne.Do, a.frame)
	go a.loop.Run(ctx)
	a.loop.Invalidate()
}

func (a *App) frame(now time.Time) bool {
	more := a.studio.Frame(now)
	a.canvas.Update()
	if rec := a.studio.Recorder(); rec.Recording() {
		a.status.SetText(fmt.Sprintf("Recording %.0f%%", rec.Progress()*100))
	}
	return more
}

func (a *App) invalidate() {
	if a.loop != nil {
		a.loop.Invalidate()
	}
}

func (a *App) setStatus(text string) { a.status.SetText(text) }

// showStatus is safe to call from any goroutine.
func (a *App) showStatus(text string) {
	fyne.Do(func() { a.status.SetText(text) })
}

func (a *App) togglePlay() {
	on := !a.studio.Playing()
	a.studio.SetPlaying(on)
	a.playAction.Icon = theme.MediaPlayIcon()
	if on {
		a.playAction.Icon = theme.MediaPauseIcon()
	}
	a.actions.Refresh()
	a.invalidate()
}

func (a *App) setLowPower(on bool) {
	if a.studio.Controller().LowPower() == on {
		return
	}
	a.studio.Controller().SetLowPower(on)
	if a.loop != nil {
		a.startLoop()
	}
}

func (a *App) randomizePalette() {
	a.studio.RandomizePalette()
	a.syncSwatches()
	a.invalidate()
}

func (a *App) syncSwatches() {
	pal := a.studio.Store().Palette()
	for _, sw := range a.swatches {
		if sw.Slot < len(pal) {
			sw.SetColor(pal[sw.Slot])
		}
	}
}

// enableTilt waits for a companion off the main goroutine, then switches
// the controller to tilt input.
func (a *App) enableTilt() {
	if a.opts.Tilt == nil {
		dialog.ShowInformation("Tilt", "Tilt input is disabled in the configuration.", a.window)
		return
	}
	if a.opts.CompanionURL != "" {
		dialog.ShowInformation("Tilt", "Open "+a.opts.CompanionURL+" on your phone and tap Start.", a.window)
	}
	a.setStatus("Waiting for tilt companion...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), tiltWait)
		defer cancel()
		granted := a.opts.Tilt.RequestPermission(ctx)
		fyne.Do(func() {
			if granted && a.studio.EnableTilt(context.Background()) {
				a.setStatus("Tilt active")
				if !a.studio.Playing() {
					a.togglePlay()
				}
				return
			}
			a.setStatus("Tilt unavailable, using pointer")
		})
	}()
}

func (a *App) disableTilt() {
	a.studio.Controller().DisableTilt()
	a.setStatus("Pointer input")
	a.invalidate()
}

func (a *App) previewExport() {
	a.studio.PreviewExport(time.Now())
	a.setStatus("Previewing " + a.studio.Recorder().Config().Trajectory.String())
	a.invalidate()
}

func (a *App) recordExport() {
	if !a.studio.RecordExport(time.Now()) {
		dialog.ShowError(fmt.Errorf("could not start recording"), a.window)
		return
	}
	a.invalidate()
}

func (a *App) stopExport() {
	rec := a.studio.Recorder()
	if rec.Recording() {
		if _, err := a.studio.FinishExport(time.Now()); err != nil {
			dialog.ShowError(err, a.window)
		}
	} else {
		a.studio.StopExport()
	}
	a.setStatus("Ready")
	a.invalidate()
}

// saveBlob writes a finished recording into the configured output folder.
func (a *App) saveBlob(b export.Blob) error {
	dir := a.opts.Config.Export.OutDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, b.Name), b.Data, 0o644)
}

func (a *App) exportDone(b *export.Blob, err error) {
	if err != nil {
		dialog.ShowError(err, a.window)
		a.setStatus("Export failed")
		return
	}
	a.setStatus(fmt.Sprintf("Saved %s (%d KB)", b.Name, len(b.Data)/1024))
}

func (a *App) newMainMenu() *fyne.MainMenu {
	file := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Sketch...", a.openSketch),
		fyne.NewMenuItem("Save Sketch...", a.saveSketch),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Copy Share Code", a.copyShare),
		fyne.NewMenuItem("Paste Share Code...", a.pasteShare),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Snapshot PDF...", func() { a.savePDF(a.studio.WriteSnapshotPDF) }),
		fyne.NewMenuItem("Export Vector PDF...", func() { a.savePDF(a.studio.WriteStrokesPDF) }),
	)

	exportMenu := fyne.NewMenu("Export",
		fyne.NewMenuItem("Preview Loop", a.previewExport),
		fyne.NewMenuItem("Record", a.recordExport),
		fyne.NewMenuItem("Stop", a.stopExport),
		fyne.NewMenuItemSeparator(),
	)
	for _, t := range []motion.Trajectory{motion.TrajectoryCircle, motion.TrajectoryFigure8, motion.TrajectorySwayH, motion.TrajectorySwayV} {
		exportMenu.Items = append(exportMenu.Items, fyne.NewMenuItem("Path: "+t.String(), func() {
			cfg := a.studio.Recorder().Config()
			cfg.Trajectory = t
			a.studio.Recorder().SetConfig(cfg)
			a.invalidate()
		}))
	}
	for _, f := range export.Formats() {
		exportMenu.Items = append(exportMenu.Items, fyne.NewMenuItem("Format: "+f, func() {
			cfg := a.studio.Recorder().Config()
			cfg.Format = f
			a.studio.Recorder().SetConfig(cfg)
		}))
	}

	motionMenu := fyne.NewMenu("Motion",
		fyne.NewMenuItem("Play / Pause", a.togglePlay),
		fyne.NewMenuItem("Enable Tilt", a.enableTilt),
		fyne.NewMenuItem("Use Pointer", a.disableTilt),
	)
	return fyne.NewMainMenu(file, exportMenu, motionMenu)
}

func (a *App) addShortcuts() {
	c := a.window.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		a.studio.Undo()
		a.invalidate()
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		a.studio.Redo()
		a.invalidate()
	})
	c.SetOnTypedKey(func(e *fyne.KeyEvent) {
		if e.Name == fyne.KeySpace {
			a.togglePlay()
		}
	})
}
