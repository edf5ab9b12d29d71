package app

import "thumb-studio/internal/layer"

// Concept is a thumbnail idea produced by the brainstorming service.
type Concept struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	VisualDescription string `json:"visualDescription"`
	HookText          string `json:"hookText"`
	Reasoning         string `json:"reasoning"`
}

// fallbackHook titles a generated thumbnail whose concept had no hook text.
const fallbackHook = "VIRAL TITLE"

// headlineLayer is the big title layer that seeds a fresh composition.
func headlineLayer(id, text string) layer.TextLayer {
	t := layer.NewTextLayer(id, text)
	t.FontSize = 250
	t.SkewX = -5
	t.ShadowOpacity = 1
	return t
}

// ApplyGeneration starts a composition from a generated image: the image
// becomes the background, the layers are replaced by a headline carrying the
// concept's hook, and the existing product layer, if any, stays on top.
func (s *State) ApplyGeneration(c Concept, imageURI string) {
	text := c.HookText
	if text == "" {
		text = fallbackHook
	}
	headline := headlineLayer(s.newID(), text)

	s.mutate(func(d layer.Document) layer.Document {
		out := d
		out.Background.Mode = layer.BackgroundImage
		out.Background.ImageRef = imageURI
		out.Layers = []layer.Layer{headline}
		if p, ok := productLayer(d); ok {
			out.Layers = append(out.Layers, p)
		}
		return out
	})
	s.ClearSelection()
}

// ApplySplit replaces the background and adds the separated foreground as a
// product layer.
func (s *State) ApplySplit(backgroundURI, productURI string) string {
	s.SetBackgroundImage(backgroundURI)
	return s.InsertProduct(productURI, "")
}

// InsertProduct adds an isolated product shot at full scale with a drop
// shadow and selects it.
func (s *State) InsertProduct(uri, originalURI string) string {
	l := layer.NewImageLayer(s.newID(), uri)
	l.Shadow = true
	l.IsProduct = true
	l.OriginalSource = originalURI
	return s.addSelected(l)
}

// AddElement adds a decorative image at 80% scale and selects it.
func (s *State) AddElement(uri string) string {
	l := layer.NewImageLayer(s.newID(), uri)
	l.Scale = 0.8
	return s.addSelected(l)
}

// AddElements adds several elements; the last one ends up selected.
func (s *State) AddElements(uris []string) []string {
	ids := make([]string, 0, len(uris))
	for _, uri := range uris {
		ids = append(ids, s.AddElement(uri))
	}
	return ids
}

// AddText adds a default text layer and selects it.
func (s *State) AddText() string {
	return s.addSelected(layer.NewTextLayer(s.newID(), "NEW TEXT"))
}

// ProductLayer returns the current product layer, if any.
func (s *State) ProductLayer() (layer.ImageLayer, bool) {
	return productLayer(s.Document())
}

func (s *State) addSelected(l layer.Layer) string {
	s.AddLayer(l)
	id := l.Common().ID
	s.Select(id)
	s.RequestEditContext(id)
	return id
}

func productLayer(d layer.Document) (layer.ImageLayer, bool) {
	for _, l := range d.Layers {
		if img, ok := l.(layer.ImageLayer); ok && img.IsProduct {
			return img, true
		}
	}
	return layer.ImageLayer{}, false
}
