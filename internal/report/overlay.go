package report

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// The print overlays run in the rendering engine's isolated header/footer
// context: no access to the document stylesheet, the tailwind runtime or
// the CSS custom properties. Everything here is literal inline style, and
// every visual decision re-derives from the same ResolveTokens call the
// compositor uses, so the two contexts stay consistent.

// HeaderOverlay returns the standalone header fragment for the engine's
// repeating page header. Falls back from header image to the escaped
// report name when the image slot did not hydrate.
func HeaderOverlay(r *Report) string {
	t := ResolveTokens(r)
	if !t.HeaderVisible {
		return "<div></div>"
	}

	title := fmt.Sprintf(`<div style="font-weight:600;">%s</div>`, esc(r.ReportName))
	if r.Assets.HeaderImage != nil {
		title = fmt.Sprintf(`<img src="%s" style="height:18px;">`, esc(*r.Assets.HeaderImage))
	}

	logo := ""
	if r.Assets.Logo != nil {
		logo = fmt.Sprintf(`<img src="%s" style="height:14px;margin-right:8px;">`, esc(*r.Assets.Logo))
	}

	return fmt.Sprintf(`
<div style="
  font-size:10px;
  color:%s;
  width:100%%;
  padding:4px 0;
  display:flex;
  align-items:center;
  justify-content:%s;
  border-bottom:1px solid %s;
  font-family:%s;
  margin:0 15mm;
">%s%s</div>`,
		t.TextColor, justifyCSS(t.HeaderAlign), t.BorderColor, t.FontFamily, logo, title)
}

var (
	leadingPageWord = regexp.MustCompile(`(?i)^Page\b`)
	ofWord          = regexp.MustCompile(`(?i)\bof\b`)
)

// FooterOverlay returns the standalone footer fragment. The {{page}} and
// {{pages}} placeholders become the live pageNumber/totalPages spans the
// engine populates per page, and the literal words "Page" and "of" get
// light spacing so the counters do not crowd them.
func FooterOverlay(r *Report) string {
	t := ResolveTokens(r)
	if !t.FooterVisible {
		return "<div></div>"
	}

	raw := t.FooterText
	if raw == "" {
		raw = "Page {{page}} of {{pages}}"
	}
	text := esc(raw)
	text = strings.ReplaceAll(text, "{{page}}", `&nbsp;<span class="pageNumber"></span>&nbsp;`)
	text = strings.ReplaceAll(text, "{{pages}}", `&nbsp;<span class="totalPages"></span>`)
	text = leadingPageWord.ReplaceAllString(text, `<span style="padding-right:2px;">Page</span>`)
	if loc := ofWord.FindStringIndex(text); loc != nil {
		text = text[:loc[0]] + `<span style="padding:0 2px;">of</span>` + text[loc[1]:]
	}

	img := ""
	if r.Assets.FooterImage != nil {
		img = fmt.Sprintf(`<img src="%s" style="height:14px;margin-right:8px;">`, esc(*r.Assets.FooterImage))
	}

	return fmt.Sprintf(`
<div style="
  font-size:10px;
  color:%s;
  width:100%%;
  padding:4px 0;
  display:flex;
  align-items:center;
  justify-content:%s;
  border-top:1px solid %s;
  font-family:%s;
  margin:0 15mm;
  font-variant-numeric: tabular-nums;
">%s%s</div>`,
		t.TextColor, justifyCSS(t.FooterAlign), t.BorderColor, t.FontFamily, img, text)
}

const defaultPDFName = "report"

var (
	nonASCII      = regexp.MustCompile(`[^\x00-\x7F]`)
	repeatedScore = regexp.MustCompile(`_+`)
	edgeNonWord   = regexp.MustCompile(`^\W+|\W+$`)
)

// PDFFilename derives an ASCII-safe filename stem from the report name for
// the content-disposition header: decompose, strip non-ASCII to
// underscores, collapse runs and trim non-word edges.
func PDFFilename(r *Report) string {
	name := norm.NFKD.String(r.ReportName)
	name = nonASCII.ReplaceAllString(name, "_")
	name = repeatedScore.ReplaceAllString(name, "_")
	name = edgeNonWord.ReplaceAllString(name, "")
	if name == "" {
		return defaultPDFName
	}
	return name
}
