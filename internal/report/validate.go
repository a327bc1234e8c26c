package report

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// FieldError is one field-scoped validation issue, surfaced to the caller
// verbatim in the error envelope.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

var (
	pathRefPattern = regexp.MustCompile(`^[\w./\-]+$`)
	httpPattern    = regexp.MustCompile(`(?i)^https?://`)
)

// Parse decodes and validates an inbound report payload. On success the
// returned Report has every default applied; otherwise the collected field
// errors describe each rejected field. No partial document is returned.
func Parse(data []byte) (*Report, []FieldError) {
	var issues []FieldError
	add := func(field, msg string) {
		issues = append(issues, FieldError{Field: field, Message: msg})
	}

	top, err := objectFields(data)
	if err != nil {
		return nil, []FieldError{{Field: "", Message: "payload must be a JSON object"}}
	}
	rejectUnknown(top, "", []string{"company", "reportName", "colors", "assets", "configs", "components"}, add)

	r := &Report{}
	r.Company = requiredString(top["company"], "company", add)
	r.ReportName = requiredString(top["reportName"], "reportName", add)
	r.Colors = parseColors(top["colors"], add)
	r.Assets = parseAssets(top["assets"], add)
	r.Configs = parseConfigs(top["configs"], add)
	r.Components = parseComponents(top["components"], add)

	if len(issues) > 0 {
		return nil, issues
	}
	return r, nil
}

func objectFields(raw json.RawMessage) (map[string]json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing object")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func rejectUnknown(fields map[string]json.RawMessage, prefix string, known []string, add func(string, string)) {
	extra := make([]string, 0)
	for key := range fields {
		found := false
		for _, k := range known {
			if key == k {
				found = true
				break
			}
		}
		if !found {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		add(joinPath(prefix, key), "unknown field")
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func requiredString(raw json.RawMessage, field string, add func(string, string)) string {
	if len(raw) == 0 {
		add(field, "required")
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		add(field, "must be a string")
		return ""
	}
	if s == "" {
		add(field, "must not be empty")
	}
	return s
}

func optionalString(raw json.RawMessage, field, def string, add func(string, string)) string {
	if len(raw) == 0 || string(raw) == "null" {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		add(field, "must be a string")
		return def
	}
	return s
}

func optionalBool(raw json.RawMessage, field string, def bool, add func(string, string)) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return def
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		add(field, "must be a boolean")
		return def
	}
	return b
}

func optionalEnum(raw json.RawMessage, field, def string, allowed []string, add func(string, string)) string {
	s := optionalString(raw, field, def, add)
	for _, a := range allowed {
		if s == a {
			return s
		}
	}
	add(field, fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
	return def
}

// imageRef accepts the three reference forms: an already-embedded data URI,
// an absolute http(s) URL, or a path relative to the configured asset root.
func validImageRef(s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "data:") {
		return true
	}
	if httpPattern.MatchString(s) {
		return true
	}
	return pathRefPattern.MatchString(s)
}

func parseImageRef(raw json.RawMessage, field string, add func(string, string)) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		add(field, "must be a string")
		return nil
	}
	if !validImageRef(s) {
		add(field, "invalid image reference")
		return nil
	}
	return &s
}

// component image urls must parse as absolute URLs (data URIs included);
// bare repo paths are only accepted in asset slots.
func parseImageURL(raw json.RawMessage, field string, add func(string, string)) *string {
	if len(raw) == 0 {
		add(field, "required")
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		add(field, "must be a string")
		return nil
	}
	if u, err := url.Parse(s); err != nil || u.Scheme == "" {
		add(field, "must be a valid URL")
		return nil
	}
	return &s
}

func parseColors(raw json.RawMessage, add func(string, string)) Colors {
	c := Colors{
		Primary:    "#0F172A",
		Accent:     "#2563EB",
		Text:       "#111827",
		Muted:      "#6B7280",
		Border:     "#E5E7EB",
		Background: "#FFFFFF",
	}
	if len(raw) == 0 {
		return c
	}
	fields, err := objectFields(raw)
	if err != nil {
		add("colors", "must be an object")
		return c
	}
	rejectUnknown(fields, "colors", []string{"primary", "accent", "text", "muted", "border", "background"}, add)
	c.Primary = optionalString(fields["primary"], "colors.primary", c.Primary, add)
	c.Accent = optionalString(fields["accent"], "colors.accent", c.Accent, add)
	c.Text = optionalString(fields["text"], "colors.text", c.Text, add)
	c.Muted = optionalString(fields["muted"], "colors.muted", c.Muted, add)
	c.Border = optionalString(fields["border"], "colors.border", c.Border, add)
	c.Background = optionalString(fields["background"], "colors.background", c.Background, add)
	return c
}

func parseAssets(raw json.RawMessage, add func(string, string)) Assets {
	var a Assets
	if len(raw) == 0 {
		add("assets", "required")
		return a
	}
	fields, err := objectFields(raw)
	if err != nil {
		add("assets", "must be an object")
		return a
	}
	rejectUnknown(fields, "assets", []string{"logo", "headerImage", "footerImage", "backgroundImage"}, add)
	a.Logo = parseImageRef(fields["logo"], "assets.logo", add)
	a.HeaderImage = parseImageRef(fields["headerImage"], "assets.headerImage", add)
	a.FooterImage = parseImageRef(fields["footerImage"], "assets.footerImage", add)
	a.BackgroundImage = parseImageRef(fields["backgroundImage"], "assets.backgroundImage", add)
	return a
}

func parseConfigs(raw json.RawMessage, add func(string, string)) Configs {
	cfg := Configs{
		Page:   PageConfig{Size: "A4", Orientation: "portrait", Margin: "20mm"},
		Font:   FontConfig{Family: "Inter, ui-sans-serif, system-ui", Base: "text-[12pt]", Leading: "leading-relaxed"},
		Header: HeaderConfig{Visible: true, Align: "center", Repeat: "all"},
		Footer: FooterConfig{Visible: true, Text: "Page {{page}} of {{pages}}", Align: "center"},
		Date:   DateConfig{Align: "right", Format: "DD MMM YYYY"},
		Table:  TableConfig{Border: "border-2", Striped: true, Compact: false, HeaderBg: "bg-gray-100"},
	}
	if len(raw) == 0 {
		return cfg
	}
	fields, err := objectFields(raw)
	if err != nil {
		add("configs", "must be an object")
		return cfg
	}
	rejectUnknown(fields, "configs", []string{"page", "font", "header", "footer", "date", "table"}, add)

	if group, ok := subObject(fields["page"], "configs.page", add); ok {
		rejectUnknown(group, "configs.page", []string{"size", "orientation", "margin"}, add)
		cfg.Page.Size = optionalEnum(group["size"], "configs.page.size", cfg.Page.Size, []string{"A4", "Letter"}, add)
		cfg.Page.Orientation = optionalEnum(group["orientation"], "configs.page.orientation", cfg.Page.Orientation, []string{"portrait", "landscape"}, add)
		cfg.Page.Margin = optionalString(group["margin"], "configs.page.margin", cfg.Page.Margin, add)
	}
	if group, ok := subObject(fields["font"], "configs.font", add); ok {
		rejectUnknown(group, "configs.font", []string{"family", "base", "leading"}, add)
		cfg.Font.Family = optionalString(group["family"], "configs.font.family", cfg.Font.Family, add)
		cfg.Font.Base = optionalString(group["base"], "configs.font.base", cfg.Font.Base, add)
		cfg.Font.Leading = optionalString(group["leading"], "configs.font.leading", cfg.Font.Leading, add)
	}
	if group, ok := subObject(fields["header"], "configs.header", add); ok {
		rejectUnknown(group, "configs.header", []string{"visible", "align", "repeat"}, add)
		cfg.Header.Visible = optionalBool(group["visible"], "configs.header.visible", cfg.Header.Visible, add)
		cfg.Header.Align = optionalEnum(group["align"], "configs.header.align", cfg.Header.Align, []string{"left", "center", "right"}, add)
		cfg.Header.Repeat = optionalEnum(group["repeat"], "configs.header.repeat", cfg.Header.Repeat, []string{"all", "first"}, add)
	}
	if group, ok := subObject(fields["footer"], "configs.footer", add); ok {
		rejectUnknown(group, "configs.footer", []string{"visible", "text", "align"}, add)
		cfg.Footer.Visible = optionalBool(group["visible"], "configs.footer.visible", cfg.Footer.Visible, add)
		cfg.Footer.Text = optionalString(group["text"], "configs.footer.text", cfg.Footer.Text, add)
		cfg.Footer.Align = optionalEnum(group["align"], "configs.footer.align", cfg.Footer.Align, []string{"left", "center", "right"}, add)
	}
	if group, ok := subObject(fields["date"], "configs.date", add); ok {
		rejectUnknown(group, "configs.date", []string{"align", "format"}, add)
		cfg.Date.Align = optionalEnum(group["align"], "configs.date.align", cfg.Date.Align, []string{"left", "center", "right"}, add)
		cfg.Date.Format = optionalString(group["format"], "configs.date.format", cfg.Date.Format, add)
	}
	if group, ok := subObject(fields["table"], "configs.table", add); ok {
		rejectUnknown(group, "configs.table", []string{"border", "striped", "compact", "headerBg"}, add)
		cfg.Table.Border = optionalString(group["border"], "configs.table.border", cfg.Table.Border, add)
		cfg.Table.Striped = optionalBool(group["striped"], "configs.table.striped", cfg.Table.Striped, add)
		cfg.Table.Compact = optionalBool(group["compact"], "configs.table.compact", cfg.Table.Compact, add)
		cfg.Table.HeaderBg = optionalString(group["headerBg"], "configs.table.headerBg", cfg.Table.HeaderBg, add)
	}
	return cfg
}

func subObject(raw json.RawMessage, field string, add func(string, string)) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	fields, err := objectFields(raw)
	if err != nil {
		add(field, "must be an object")
		return nil, false
	}
	return fields, true
}

func parseComponents(raw json.RawMessage, add func(string, string)) []Component {
	if len(raw) == 0 {
		add("components", "required")
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		add("components", "must be an array")
		return nil
	}
	if len(items) == 0 {
		add("components", "must contain at least one component")
		return nil
	}
	comps := make([]Component, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("components[%d]", i)
		fields, err := objectFields(item)
		if err != nil {
			add(field, "must be an object")
			continue
		}
		rejectUnknown(fields, field, []string{"type", "props", "style", "id"}, add)

		c := Component{}
		c.Type = requiredString(fields["type"], field+".type", add)
		c.ID = optionalString(fields["id"], field+".id", "", add)
		if styleRaw, ok := fields["style"]; ok && string(styleRaw) != "null" {
			if err := json.Unmarshal(styleRaw, &c.Style); err != nil {
				add(field+".style", "must be a map of style slots to class strings")
			}
		}

		propsRaw, hasProps := fields["props"]
		if !hasProps {
			add(field+".props", "required")
			continue
		}
		props, ok := subObject(propsRaw, field+".props", add)
		if !ok {
			continue
		}
		c.Props = parseProps(c.Type, props, field+".props", add)
		if c.Props == nil {
			continue
		}
		comps = append(comps, c)
	}
	return comps
}

func parseProps(typ string, fields map[string]json.RawMessage, prefix string, add func(string, string)) Props {
	switch typ {
	case "header":
		rejectUnknown(fields, prefix, []string{"text"}, add)
		return &HeaderProps{Text: requiredString(fields["text"], prefix+".text", add)}
	case "subheader":
		rejectUnknown(fields, prefix, []string{"text"}, add)
		return &SubheaderProps{Text: requiredString(fields["text"], prefix+".text", add)}
	case "date":
		rejectUnknown(fields, prefix, []string{"value"}, add)
		return &DateProps{Value: optionalString(fields["value"], prefix+".value", "", add)}
	case "para":
		rejectUnknown(fields, prefix, []string{"text"}, add)
		return &ParaProps{Text: requiredString(fields["text"], prefix+".text", add)}
	case "divider":
		rejectUnknown(fields, prefix, nil, add)
		return &DividerProps{}
	case "spacer":
		rejectUnknown(fields, prefix, []string{"size"}, add)
		p := &SpacerProps{}
		if _, ok := fields["size"]; ok {
			p.Size = optionalEnum(fields["size"], prefix+".size", "md", []string{"xs", "sm", "md", "lg", "xl"}, add)
		}
		return p
	case "pagebreak":
		rejectUnknown(fields, prefix, nil, add)
		return &PagebreakProps{}
	case "signature":
		rejectUnknown(fields, prefix, []string{"label", "lines"}, add)
		p := &SignatureProps{Lines: 1}
		p.Label = optionalString(fields["label"], prefix+".label", "", add)
		if raw, ok := fields["lines"]; ok && string(raw) != "null" {
			var n int
			if err := json.Unmarshal(raw, &n); err != nil {
				add(prefix+".lines", "must be an integer")
			} else if n < 1 || n > 5 {
				add(prefix+".lines", "must be between 1 and 5")
			} else {
				p.Lines = n
			}
		}
		return p
	case "footerText":
		rejectUnknown(fields, prefix, []string{"text"}, add)
		return &FooterTextProps{Text: requiredString(fields["text"], prefix+".text", add)}
	case "table":
		rejectUnknown(fields, prefix, []string{"title", "headers", "rows", "notes"}, add)
		p := &TableProps{}
		p.Title = optionalString(fields["title"], prefix+".title", "", add)
		p.Notes = optionalString(fields["notes"], prefix+".notes", "", add)
		if raw, ok := fields["headers"]; !ok {
			add(prefix+".headers", "required")
		} else if err := json.Unmarshal(raw, &p.Headers); err != nil {
			add(prefix+".headers", "must be an array of strings")
		}
		if raw, ok := fields["rows"]; !ok {
			add(prefix+".rows", "required")
		} else if err := json.Unmarshal(raw, &p.Rows); err != nil {
			add(prefix+".rows", "rows must contain string, number or null cells")
		}
		return p
	case "image":
		rejectUnknown(fields, prefix, []string{"url", "alt", "caption", "width", "height"}, add)
		p := &ImageProps{}
		p.URL = parseImageURL(fields["url"], prefix+".url", add)
		p.Alt = optionalString(fields["alt"], prefix+".alt", "", add)
		p.Caption = optionalString(fields["caption"], prefix+".caption", "", add)
		p.Width = optionalString(fields["width"], prefix+".width", "", add)
		p.Height = optionalString(fields["height"], prefix+".height", "", add)
		return p
	case "image-grid":
		rejectUnknown(fields, prefix, []string{"title", "rows"}, add)
		p := &ImageGridProps{}
		p.Title = optionalString(fields["title"], prefix+".title", "", add)
		if raw, ok := fields["rows"]; !ok {
			add(prefix+".rows", "required")
		} else if err := json.Unmarshal(raw, &p.Rows); err != nil {
			add(prefix+".rows", "must be an array of arrays of image URLs")
		} else if len(p.Rows) == 0 {
			add(prefix+".rows", "must contain at least one row")
		} else {
			for ri, row := range p.Rows {
				for ci, u := range row {
					if parsed, err := url.Parse(u); err != nil || parsed.Scheme == "" {
						add(fmt.Sprintf("%s.rows[%d][%d]", prefix, ri, ci), "must be a valid URL")
					}
				}
			}
		}
		return p
	case "":
		return nil
	default:
		add(prefix[:len(prefix)-len(".props")]+".type", fmt.Sprintf("unknown component type %q", typ))
		return nil
	}
}
