package ui

import (
	"fmt"
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"ParallaxSketch/internal/logging"
	"ParallaxSketch/internal/studio"
)

func (a *App) saveSketch() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if writer == nil {
			return
		}
		a.writeSketch(writer)
	}, a.window)
	d.SetFileName(studio.JSONFileName)
	d.Show()
}

func (a *App) writeSketch(writer fyne.URIWriteCloser) {
	defer func() {
		if err := writer.Close(); err != nil {
			logging.Logger().Warn("error closing writer", "err", err)
		}
	}()

	data, err := a.studio.ExportJSON()
	if err != nil {
		logging.Logger().Warn("sketch encode failed", "err", err)
		a.setStatus("Error saving file")
		return
	}
	if _, err := writer.Write(data); err != nil {
		logging.Logger().Warn("sketch write failed", "uri", writer.URI().String(), "err", err)
		a.setStatus("Error writing file")
		return
	}
	n := len(a.studio.Store().Committed())
	a.setStatus(fmt.Sprintf("Saved %d strokes", n))
	logging.Logger().Info("sketch saved", "uri", writer.URI().String(), "strokes", n)
}

func (a *App) openSketch() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			return
		}
		a.readSketch(reader)
	}, a.window)
}

func (a *App) readSketch(reader fyne.URIReadCloser) {
	defer func() {
		if err := reader.Close(); err != nil {
			logging.Logger().Warn("error closing reader", "err", err)
		}
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		logging.Logger().Warn("sketch read failed", "err", err)
		a.setStatus("Error reading file")
		return
	}
	if err := a.studio.ImportJSON(data); err != nil {
		dialog.ShowError(err, a.window)
		a.setStatus("Error parsing file - invalid format")
		return
	}
	a.afterImport()
}

func (a *App) afterImport() {
	a.syncSwatches()
	a.setStatus(fmt.Sprintf("Loaded %d strokes", len(a.studio.Store().Committed())))
	a.invalidate()
}

func (a *App) copyShare() {
	code, err := a.studio.ShareString()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.window.Clipboard().SetContent(code)
	a.setStatus("Share code copied")
}

func (a *App) pasteShare() {
	entry := widget.NewMultiLineEntry()
	entry.SetText(a.window.Clipboard().Content())
	items := []*widget.FormItem{widget.NewFormItem("Code", entry)}
	dialog.ShowForm("Import Share Code", "Import", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		if err := a.studio.ImportShare(entry.Text); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.afterImport()
	}, a.window)
}

// savePDF asks for a destination and streams the PDF produced by write.
func (a *App) savePDF(write func(io.Writer) error) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()
		if err := write(writer); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.setStatus("PDF exported")
	}, a.window)
	d.SetFileName("parallax-sketch.pdf")
	d.Show()
}
