// Package panels provides the editor side panels.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"thumb-studio/internal/app"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	layersPanel     *LayersPanel
	propertiesPanel *PropertiesPanel
	backgroundPanel *BackgroundPanel

	propertiesTab *container.TabItem
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State, cache ImageCache) *SidePanel {
	sp := &SidePanel{state: state}

	sp.layersPanel = NewLayersPanel(state, cache)
	sp.propertiesPanel = NewPropertiesPanel(state)
	sp.backgroundPanel = NewBackgroundPanel(state)

	sp.propertiesTab = container.NewTabItem("Properties", sp.propertiesPanel.Container())
	sp.container = container.NewAppTabs(
		container.NewTabItem("Layers", sp.layersPanel.Container()),
		sp.propertiesTab,
		container.NewTabItem("Background", sp.backgroundPanel.Container()),
	)

	// A freshly added layer opens its properties.
	state.On(app.EventEditContextRequested, func(interface{}) {
		sp.container.Select(sp.propertiesTab)
	})

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// Background returns the background panel.
func (sp *SidePanel) Background() *BackgroundPanel {
	return sp.backgroundPanel
}

// SyncLayers reloads the layer list from state.
func (sp *SidePanel) SyncLayers() {
	sp.layersPanel.Sync()
}

// RefreshThumbnails redraws layer rows whose images have since decoded.
func (sp *SidePanel) RefreshThumbnails() {
	sp.layersPanel.RefreshThumbnails()
}
