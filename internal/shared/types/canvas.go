package types

// NodeKind identifies the card template a node renders with
type NodeKind string

const (
	KindContentCard    NodeKind = "content-card"
	KindAnchorCard     NodeKind = "anchor-card"
	KindBackgroundCard NodeKind = "background-card"
)

// Valid reports whether k is a known node kind
func (k NodeKind) Valid() bool {
	switch k {
	case KindContentCard, KindAnchorCard, KindBackgroundCard:
		return true
	}
	return false
}

// HasTabs reports whether nodes of this kind own a tab list.
// Only content cards carry tabs; the other kinds are opaque to the engine.
func (k NodeKind) HasTabs() bool {
	return k == KindContentCard
}

// Position is a node's location in canvas coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a positioned unit on the canvas
type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// NodeData is the kind-specific payload of a node.
// An empty ActiveTabID stands for "no active tab".
type NodeData struct {
	Label       string `json:"label"`
	IsExpanded  bool   `json:"isExpanded"`
	ActiveTabID string `json:"activeTab,omitempty"`
	Tabs        []Tab  `json:"tabs,omitempty"`
}

// Tab is one content pane inside a node
type Tab struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Content Content `json:"content"`
}

// Content holds the editable payloads of a tab
type Content struct {
	Text       *string     `json:"text,omitempty"`
	Multimedia *Multimedia `json:"multimedia,omitempty"`
}

// MediaKind names one multimedia slot
type MediaKind string

const (
	MediaAttachment MediaKind = "attachment"
	MediaImage      MediaKind = "image"
	MediaDrawing    MediaKind = "drawing"
)

// Valid reports whether k is a known media kind
func (k MediaKind) Valid() bool {
	switch k {
	case MediaAttachment, MediaImage, MediaDrawing:
		return true
	}
	return false
}

// Multimedia carries the media descriptors of a tab.
// Slots are independent: setting one kind leaves the others in place, and
// Primary decides which one is displayed.
type Multimedia struct {
	Attachment *Attachment `json:"attachment,omitempty"`
	Image      *Image      `json:"image,omitempty"`
	Drawing    *Drawing    `json:"drawing,omitempty"`
}

// Attachment describes an attached file
type Attachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Image describes an embedded image
type Image struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Drawing describes a freehand drawing
type Drawing struct {
	Type    string   `json:"type"`
	Strokes []Stroke `json:"strokes"`
}

// Stroke is one polyline of a drawing
type Stroke struct {
	Points []Point `json:"points"`
}

// MediaPayload is a tagged media selection as sent by a media picker
type MediaPayload struct {
	Kind       MediaKind   `json:"kind"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Image      *Image      `json:"image,omitempty"`
	Drawing    *Drawing    `json:"drawing,omitempty"`
}

// Primary returns the media kind shown for this content, by priority
// image > attachment > drawing.
func (m *Multimedia) Primary() (MediaKind, bool) {
	switch {
	case m == nil:
		return "", false
	case m.Image != nil:
		return MediaImage, true
	case m.Attachment != nil:
		return MediaAttachment, true
	case m.Drawing != nil:
		return MediaDrawing, true
	}
	return "", false
}

// IsEmpty reports whether no media slot is populated
func (m *Multimedia) IsEmpty() bool {
	_, ok := m.Primary()
	return !ok
}

// Set stores the payload in its slot and leaves the other slots untouched.
// Returns false when the payload kind and populated field do not match.
func (m *Multimedia) Set(p MediaPayload) bool {
	switch p.Kind {
	case MediaAttachment:
		if p.Attachment == nil {
			return false
		}
		a := *p.Attachment
		m.Attachment = &a
	case MediaImage:
		if p.Image == nil {
			return false
		}
		img := *p.Image
		m.Image = &img
	case MediaDrawing:
		if p.Drawing == nil {
			return false
		}
		d := p.Drawing.clone()
		m.Drawing = &d
	default:
		return false
	}
	return true
}

// Clone returns a deep copy
func (m *Multimedia) Clone() *Multimedia {
	if m == nil {
		return nil
	}
	out := &Multimedia{}
	if m.Attachment != nil {
		a := *m.Attachment
		out.Attachment = &a
	}
	if m.Image != nil {
		img := *m.Image
		out.Image = &img
	}
	if m.Drawing != nil {
		d := m.Drawing.clone()
		out.Drawing = &d
	}
	return out
}

func (d Drawing) clone() Drawing {
	out := Drawing{Type: d.Type}
	if d.Strokes != nil {
		out.Strokes = make([]Stroke, len(d.Strokes))
		for i, s := range d.Strokes {
			out.Strokes[i] = Stroke{Points: append([]Point(nil), s.Points...)}
		}
	}
	return out
}

// Clone returns a deep copy
func (c Content) Clone() Content {
	out := Content{Multimedia: c.Multimedia.Clone()}
	if c.Text != nil {
		text := *c.Text
		out.Text = &text
	}
	return out
}

// TextValue returns the text content or "" when unset
func (c Content) TextValue() string {
	if c.Text == nil {
		return ""
	}
	return *c.Text
}

// Clone returns a deep copy
func (t Tab) Clone() Tab {
	return Tab{ID: t.ID, Title: t.Title, Content: t.Content.Clone()}
}

// CloneTabs deep-copies a tab list, preserving nil
func CloneTabs(tabs []Tab) []Tab {
	if tabs == nil {
		return nil
	}
	out := make([]Tab, len(tabs))
	for i, t := range tabs {
		out[i] = t.Clone()
	}
	return out
}

// TabIndex returns the position of the tab with the given ID, or -1
func TabIndex(tabs []Tab, id string) int {
	for i, t := range tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy
func (n Node) Clone() Node {
	out := n
	out.Data.Tabs = CloneTabs(n.Data.Tabs)
	return out
}

// CloneNodes deep-copies a node collection
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}
