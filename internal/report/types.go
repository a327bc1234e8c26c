package report

import (
	"encoding/json"
	"fmt"
)

// Report is the root document description submitted for rendering. It is
// owned by a single request: parsed once, hydrated in place once, rendered
// once and discarded.
type Report struct {
	Company    string      `json:"company"`
	ReportName string      `json:"reportName"`
	Colors     Colors      `json:"colors"`
	Assets     Assets      `json:"assets"`
	Configs    Configs     `json:"configs"`
	Components []Component `json:"components"`
}

// Colors is the document palette. Every slot is independently defaulted.
type Colors struct {
	Primary    string `json:"primary"`
	Accent     string `json:"accent"`
	Text       string `json:"text"`
	Muted      string `json:"muted"`
	Border     string `json:"border"`
	Background string `json:"background"`
}

// Assets holds the four whole-document image slots. A nil slot is absent;
// hydration replaces resolvable references with data URIs and nulls the
// slot on failure.
type Assets struct {
	Logo            *string `json:"logo"`
	HeaderImage     *string `json:"headerImage"`
	FooterImage     *string `json:"footerImage"`
	BackgroundImage *string `json:"backgroundImage"`
}

// Configs groups the layout configuration. Each group is independently
// defaulted and closed: unknown fields are validation errors.
type Configs struct {
	Page   PageConfig   `json:"page"`
	Font   FontConfig   `json:"font"`
	Header HeaderConfig `json:"header"`
	Footer FooterConfig `json:"footer"`
	Date   DateConfig   `json:"date"`
	Table  TableConfig  `json:"table"`
}

type PageConfig struct {
	Size        string `json:"size"`        // A4 | Letter
	Orientation string `json:"orientation"` // portrait | landscape
	Margin      string `json:"margin"`
}

type FontConfig struct {
	Family  string `json:"family"`
	Base    string `json:"base"`
	Leading string `json:"leading"`
}

type HeaderConfig struct {
	Visible bool   `json:"visible"`
	Align   string `json:"align"`  // left | center | right
	Repeat  string `json:"repeat"` // all | first
}

type FooterConfig struct {
	Visible bool   `json:"visible"`
	Text    string `json:"text"` // may contain {{page}} / {{pages}}
	Align   string `json:"align"`
}

type DateConfig struct {
	Align  string `json:"align"`
	Format string `json:"format"`
}

type TableConfig struct {
	Border   string `json:"border"`
	Striped  bool   `json:"striped"`
	Compact  bool   `json:"compact"`
	HeaderBg string `json:"headerBg"`
}

// StyleMap carries per-instance class overrides keyed by renderer-defined
// style slot names. Keys are free-form; each renderer honors the slots it
// declares and ignores the rest.
type StyleMap map[string]string

// Component is one content block. Props holds the variant payload; its
// concrete type matches Type.
type Component struct {
	Type  string
	ID    string
	Style StyleMap
	Props Props
}

// Props is the closed set of component payloads.
type Props interface {
	component()
}

type HeaderProps struct {
	Text string `json:"text"`
}

type SubheaderProps struct {
	Text string `json:"text"`
}

type DateProps struct {
	Value string `json:"value,omitempty"`
}

type ParaProps struct {
	Text string `json:"text"`
}

type DividerProps struct{}

type SpacerProps struct {
	Size string `json:"size,omitempty"` // xs|sm|md|lg|xl, default md
}

type PagebreakProps struct{}

type SignatureProps struct {
	Label string `json:"label,omitempty"`
	Lines int    `json:"lines,omitempty"` // clamped to [1,5] at render time
}

type FooterTextProps struct {
	Text string `json:"text"`
}

type TableProps struct {
	Title   string   `json:"title,omitempty"`
	Headers []string `json:"headers"`
	Rows    [][]Cell `json:"rows"`
	Notes   string   `json:"notes,omitempty"`
}

type ImageProps struct {
	// URL is required at validation time; hydration may null it when the
	// reference cannot be resolved, and the renderer degrades.
	URL     *string `json:"url"`
	Alt     string  `json:"alt,omitempty"`
	Caption string  `json:"caption,omitempty"`
	Width   string  `json:"width,omitempty"`
	Height  string  `json:"height,omitempty"`
}

type ImageGridProps struct {
	Title string     `json:"title,omitempty"`
	Rows  [][]string `json:"rows"`
}

func (*HeaderProps) component()     {}
func (*SubheaderProps) component()  {}
func (*DateProps) component()       {}
func (*ParaProps) component()       {}
func (*DividerProps) component()    {}
func (*SpacerProps) component()     {}
func (*PagebreakProps) component()  {}
func (*SignatureProps) component()  {}
func (*FooterTextProps) component() {}
func (*TableProps) component()      {}
func (*ImageProps) component()      {}
func (*ImageGridProps) component()  {}

// Cell is one table cell: a string, a number, or null. The JSON text of a
// number is preserved so rendering stays byte-stable.
type Cell struct {
	Valid bool
	Text  string
}

// UnmarshalJSON accepts string, number or null and rejects everything else.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Cell{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Cell{Valid: true, Text: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("cell must be string, number or null")
	}
	*c = Cell{Valid: true, Text: n.String()}
	return nil
}

// MarshalJSON keeps the wire form symmetric with UnmarshalJSON.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Text)
}

// ImageRefs returns a pointer to every image reference in the document:
// the four asset slots first, then each image component url in component
// order. The hydrator settles them positionally and independently.
func (r *Report) ImageRefs() []*Ref {
	refs := []*Ref{
		{Name: "assets.logo", Slot: &r.Assets.Logo},
		{Name: "assets.headerImage", Slot: &r.Assets.HeaderImage},
		{Name: "assets.footerImage", Slot: &r.Assets.FooterImage},
		{Name: "assets.backgroundImage", Slot: &r.Assets.BackgroundImage},
	}
	for i, c := range r.Components {
		if p, ok := c.Props.(*ImageProps); ok {
			refs = append(refs, &Ref{
				Name: fmt.Sprintf("components[%d].url", i),
				Slot: &p.URL,
			})
		}
	}
	return refs
}

// Ref is one mutable image reference slot inside a Report.
type Ref struct {
	Name string
	Slot **string
}
