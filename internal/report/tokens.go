package report

// Tokens are the computed design values shared by the document compositor
// and the print-overlay reconciler. Both rendering contexts must derive
// their visual decisions from this single resolution so the main document
// and the isolated overlay context cannot drift apart.
type Tokens struct {
	TextColor       string
	BorderColor     string
	BackgroundColor string

	FontFamily string

	PageSize        string
	PageOrientation string
	PageMargin      string

	HeaderVisible   bool
	HeaderRepeatAll bool
	HeaderAlign     string
	HeaderHeight    string // overlay height, "0px" when hidden or inline-only
	FooterVisible   bool
	FooterAlign     string
	FooterHeight    string
	FooterText      string

	BackgroundImage string // data URI after hydration, empty when absent
}

const (
	headerOverlayHeight = "48px"
	footerOverlayHeight = "40px"
)

// ResolveTokens computes the design tokens for a hydrated report.
func ResolveTokens(r *Report) Tokens {
	t := Tokens{
		TextColor:       r.Colors.Text,
		BorderColor:     r.Colors.Border,
		BackgroundColor: r.Colors.Background,
		FontFamily:      r.Configs.Font.Family,
		PageSize:        r.Configs.Page.Size,
		PageOrientation: r.Configs.Page.Orientation,
		PageMargin:      r.Configs.Page.Margin,
		HeaderVisible:   r.Configs.Header.Visible,
		HeaderRepeatAll: r.Configs.Header.Repeat == "all",
		HeaderAlign:     r.Configs.Header.Align,
		HeaderHeight:    "0px",
		FooterVisible:   r.Configs.Footer.Visible,
		FooterAlign:     r.Configs.Footer.Align,
		FooterHeight:    "0px",
		FooterText:      r.Configs.Footer.Text,
	}
	if t.HeaderVisible && t.HeaderRepeatAll {
		t.HeaderHeight = headerOverlayHeight
	}
	if t.FooterVisible {
		t.FooterHeight = footerOverlayHeight
	}
	if r.Assets.BackgroundImage != nil {
		t.BackgroundImage = *r.Assets.BackgroundImage
	}
	return t
}

// justifyClass maps an alignment token to the flex utility class used in
// the main document flow.
func justifyClass(align string) string {
	switch align {
	case "left":
		return "justify-start"
	case "right":
		return "justify-end"
	default:
		return "justify-center"
	}
}

// justifyCSS maps an alignment token to the literal justify-content value
// used by the isolated overlay context, which cannot see utility classes.
func justifyCSS(align string) string {
	switch align {
	case "left":
		return "flex-start"
	case "right":
		return "flex-end"
	default:
		return "center"
	}
}
