// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"thumb-studio/internal/app"
	"thumb-studio/internal/assets"
	"thumb-studio/internal/config"
	"thumb-studio/internal/export"
	"thumb-studio/internal/imaging"
	"thumb-studio/internal/layer"
	"thumb-studio/internal/metrics"
	"thumb-studio/internal/project"
	"thumb-studio/internal/render"
	"thumb-studio/internal/version"
	"thumb-studio/ui/canvas"
	"thumb-studio/ui/panels"
)

const (
	appTitle = "Thumbnail Studio"

	prefKeyLastDir     = "lastDirectory"
	prefKeyLastProject = "lastProject"
)

// Deps are the services the window drives.
type Deps struct {
	Config   *config.Config
	Loader   *assets.Loader
	Renderer *render.Renderer
	Exporter *export.Exporter
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	deps      Deps
	logger    *slog.Logger
	preview   *canvas.Preview
	sidePanel *panels.SidePanel
	statusBar *widget.Label

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, deps Deps) *MainWindow {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	mw := &MainWindow{
		Window: fyneApp.NewWindow(appTitle),
		app:    fyneApp,
		state:  state,
		deps:   deps,
		logger: deps.Logger,
		ctx:    ctx,
		cancel: cancel,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.SetOnClosed(cancel)

	mw.preview.Start(ctx)
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.preview = canvas.NewPreview(mw.state, mw.deps.Renderer, mw.deps.Metrics, mw.deps.Config.ViewportPadding, mw.logger)
	mw.preview.OnReport(mw.onPreviewReport)

	mw.sidePanel = panels.NewSidePanel(mw.state, mw.deps.Loader)
	mw.sidePanel.Background().OnChooseImage = mw.onBackgroundImage

	mw.statusBar = widget.NewLabel("Ready")

	toolbar := container.NewHBox(
		widget.NewButton("Add Text", func() { mw.state.AddText() }),
		widget.NewButton("Add Element...", mw.onAddElement),
		widget.NewButton("Insert Product...", mw.onInsertProduct),
		widget.NewButton("Export PNG", mw.onExport),
	)

	canvasArea := container.NewBorder(toolbar, nil, nil, nil, mw.preview)

	split := container.NewHSplit(mw.sidePanel.Container(), canvasArea)
	split.SetOffset(0.28)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	)
	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1400, 860))

	mw.Canvas().SetOnTypedKey(mw.onTypedKey)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Project", mw.onNewProject),
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Project", mw.onSaveProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PNG", mw.onExport),
	)

	insertMenu := fyne.NewMenu("Insert",
		fyne.NewMenuItem("Text", func() { mw.state.AddText() }),
		fyne.NewMenuItem("Element...", mw.onAddElement),
		fyne.NewMenuItem("Product...", mw.onInsertProduct),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Background Image...", mw.onBackgroundImage),
	)

	var presetItems []*fyne.MenuItem
	for _, p := range layer.GradientPresets {
		p := p
		presetItems = append(presetItems, fyne.NewMenuItem(p.Name, func() {
			mw.sidePanel.Background().ApplyPreset(p)
		}))
	}
	backgroundMenu := fyne.NewMenu("Background", presetItems...)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, insertMenu, backgroundMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventProjectLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
			mw.updateStatus("Project loaded: " + path)
		}
	})

	mw.state.On(app.EventProjectSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
			mw.updateStatus("Project saved: " + path)
		}
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok && modified {
			title := mw.Title()
			if len(title) > 0 && title[len(title)-1] != '*' {
				mw.SetTitle(title + " *")
			}
		}
	})
}

// RestoreLastProject reopens the project from the previous session, if any.
func (mw *MainWindow) RestoreLastProject() {
	path := mw.app.Preferences().String(prefKeyLastProject)
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := mw.state.LoadProject(path); err != nil {
		mw.logger.Warn("restore project failed", "path", path, "error", err)
	}
}

func (mw *MainWindow) onTypedKey(ev *fyne.KeyEvent) {
	_, textFocused := mw.Canvas().Focused().(*widget.Entry)
	mw.preview.Controller().KeyDown(string(ev.Name), textFocused)
}

func (mw *MainWindow) onPreviewReport(rep render.Report) {
	if mw.sidePanel != nil {
		mw.sidePanel.RefreshThumbnails()
	}
	switch {
	case len(rep.Failures) > 0:
		mw.updateStatus(fmt.Sprintf("%d layer(s) could not be drawn", len(rep.Failures)))
	case rep.Background != nil:
		mw.updateStatus("Background image could not be loaded")
	case len(rep.Fallbacks) > 0:
		mw.updateStatus("Fonts still loading; using fallback font")
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.app.Preferences().SetString(prefKeyLastDir, filepath.Dir(filePath))
}

// openFile shows a file open dialog filtered to exts and passes the chosen
// path to fn.
func (mw *MainWindow) openFile(exts []string, fn func(path string)) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		fn(path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(exts))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func imageExtensions() []string {
	formats := imaging.SupportedFormats()
	exts := make([]string, len(formats))
	for i, f := range formats {
		exts[i] = "." + f
	}
	return exts
}

// Menu action handlers

func (mw *MainWindow) onNewProject() {
	mw.state.SetDocument(layer.NewDocument(mw.state.NewID()))
	mw.state.ProjectPath = ""
	mw.state.SetModified(false)
	mw.SetTitle(appTitle + " - New Project")
}

func (mw *MainWindow) onOpenProject() {
	mw.openFile([]string{project.Extension}, func(path string) {
		if err := mw.state.LoadProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.app.Preferences().SetString(prefKeyLastProject, path)
	})
}

func (mw *MainWindow) onSaveProject() {
	if mw.state.ProjectPath == "" {
		mw.onSaveProjectAs()
		return
	}
	if err := mw.state.SaveProject(mw.state.ProjectPath); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveProjectAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := project.WithExtension(writer.URI().Path())
		mw.saveLastDir(path)
		if err := mw.state.SaveProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.app.Preferences().SetString(prefKeyLastProject, path)
	}, mw.Window)
	fd.SetFileName("thumbnail" + project.Extension)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onAddElement() {
	mw.openFile(imageExtensions(), func(path string) {
		mw.state.AddElement(path)
	})
}

func (mw *MainWindow) onBackgroundImage() {
	mw.openFile(imageExtensions(), func(path string) {
		mw.state.SetBackgroundImage(path)
		mw.state.SetBackgroundMode(layer.BackgroundImage)
	})
}

// onInsertProduct keys out a green screen and inserts the result as the
// product layer, keeping the original file for later re-isolation.
func (mw *MainWindow) onInsertProduct() {
	mw.openFile(imageExtensions(), func(path string) {
		uri, err := isolateProduct(path)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.state.InsertProduct(uri, path)
		mw.updateStatus("Product inserted: " + filepath.Base(path))
	})
}

// isolateProduct returns a PNG data URI of the image at path with its green
// backdrop made transparent.
func isolateProduct(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read product: %w", err)
	}
	img, err := assets.Decode(data)
	if err != nil {
		return "", fmt.Errorf("decode product: %w", err)
	}
	png, err := imaging.EncodePNG(imaging.ChromaKeyGreen(img))
	if err != nil {
		return "", fmt.Errorf("encode product: %w", err)
	}
	return assets.DataURI("image/png", png), nil
}

func (mw *MainWindow) onExport() {
	doc := mw.state.Snapshot()
	dir := mw.deps.Config.ExportDir
	mw.updateStatus("Exporting...")

	go func() {
		res, err := mw.deps.Exporter.Export(mw.ctx, doc, dir)
		switch {
		case errors.Is(err, export.ErrAllLayersFailed):
			mw.updateStatus("Exported with no layers drawn: " + res.Path)
		case err != nil:
			mw.logger.Error("export failed", "error", err)
			mw.updateStatus("Export failed")
			dialog.ShowError(err, mw.Window)
		case !res.Report.OK():
			mw.updateStatus(fmt.Sprintf("Exported %s (%s)", res.Path, summarize(res.Report)))
		default:
			mw.updateStatus("Exported " + res.Path)
		}
	}()
}

func summarize(rep render.Report) string {
	var parts []string
	if n := len(rep.Failures); n > 0 {
		parts = append(parts, fmt.Sprintf("%d layer(s) skipped", n))
	}
	if rep.Background != nil {
		parts = append(parts, "background missing")
	}
	if n := len(rep.Fallbacks); n > 0 {
		parts = append(parts, fmt.Sprintf("%d fallback font(s)", n))
	}
	return strings.Join(parts, ", ")
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Compose 1920×1080 video thumbnails from images and text.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
