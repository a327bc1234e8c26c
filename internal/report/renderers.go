package report

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Renderers are pure: (props, style overrides, shared config, palette) in,
// HTML fragment out. All free text passes through esc before interpolation;
// that is the single chokepoint keeping document content out of markup.

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func esc(s string) string { return escaper.Replace(s) }

// tw joins class tokens, dropping empties. Override tokens are appended
// after base tokens, never replacing them.
func tw(tokens ...string) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

var monthAbbr = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// timeNow is a test seam for the date component's current-date fallback.
var timeNow = time.Now

// formatDate reformats the first 10 characters of an ISO date string as
// "DD Mon YYYY". An unparseable value degrades to the escaped input, and a
// missing value falls back to today's ISO date.
func formatDate(value string) string {
	if value == "" {
		return timeNow().UTC().Format("2006-01-02")
	}
	s := value
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return esc(value)
	}
	return fmt.Sprintf("%02d %s %d", d.Day(), monthAbbr[d.Month()-1], d.Year())
}

type renderFunc func(c *Component, cfg *Configs, col *Colors) string

var registry = map[string]renderFunc{
	"header":     renderHeader,
	"subheader":  renderSubheader,
	"date":       renderDate,
	"para":       renderPara,
	"divider":    renderDivider,
	"spacer":     renderSpacer,
	"pagebreak":  renderPagebreak,
	"signature":  renderSignature,
	"footerText": renderFooterText,
	"table":      renderTable,
	"image":      renderImage,
	"image-grid": renderImageGrid,
}

// RenderComponent dispatches on the component discriminant. An unrecognized
// type is a logged no-op that yields an empty fragment; validation already
// rejects unknown types at the boundary, so this only fires for documents
// constructed in-process.
func RenderComponent(c *Component, cfg *Configs, col *Colors) string {
	fn, ok := registry[c.Type]
	if !ok {
		slog.Warn("skipping component with unrecognized type", slog.String("type", c.Type))
		return ""
	}
	return fn(c, cfg, col)
}

func renderHeader(c *Component, _ *Configs, _ *Colors) string {
	p := c.Props.(*HeaderProps)
	return fmt.Sprintf(`
<section class="%s">
  <h1 class="%s">%s</h1>
</section>`,
		tw("mb-3", c.Style["wrapper"]),
		tw("text-2xl font-bold text-slate-800", c.Style["title"]),
		esc(p.Text))
}

func renderSubheader(c *Component, _ *Configs, _ *Colors) string {
	p := c.Props.(*SubheaderProps)
	return fmt.Sprintf(`
<section class="%s">
  <h2 class="%s">%s</h2>
</section>`,
		tw("mb-2", c.Style["wrapper"]),
		tw("text-xl font-semibold text-slate-700", c.Style["title"]),
		esc(p.Text))
}

func renderDate(c *Component, cfg *Configs, _ *Colors) string {
	p := c.Props.(*DateProps)
	return fmt.Sprintf(`
<section class="%s">
  <div class="%s">%s</div>
</section>`,
		tw("mb-2 flex", justifyClass(cfg.Date.Align), c.Style["wrapper"]),
		tw("text-sm text-slate-600", c.Style["text"]),
		formatDate(p.Value))
}

func renderPara(c *Component, _ *Configs, _ *Colors) string {
	p := c.Props.(*ParaProps)
	return fmt.Sprintf(`
<section class="%s">
  <p class="%s">%s</p>
</section>`,
		tw("mb-3", c.Style["wrapper"]),
		tw("text-justify", c.Style["text"]),
		esc(p.Text))
}

func renderDivider(c *Component, _ *Configs, col *Colors) string {
	return fmt.Sprintf(`
<hr class="%s" style="border-color:%s"/>`,
		tw("my-4", c.Style["hr"]), col.Border)
}

var spacerScale = map[string]string{
	"xs": "h-2",
	"sm": "h-4",
	"md": "h-8",
	"lg": "h-12",
	"xl": "h-20",
}

func renderSpacer(c *Component, _ *Configs, _ *Colors) string {
	p := c.Props.(*SpacerProps)
	height, ok := spacerScale[p.Size]
	if !ok {
		height = spacerScale["md"]
	}
	return fmt.Sprintf(`<div class="%s"></div>`, tw(height, c.Style["wrapper"]))
}

func renderPagebreak(_ *Component, _ *Configs, _ *Colors) string {
	return `<div class="pagebreak"></div>`
}

func renderSignature(c *Component, _ *Configs, col *Colors) string {
	p := c.Props.(*SignatureProps)
	n := p.Lines
	if n < 1 {
		n = 1
	}
	if n > 5 {
		n = 5
	}
	var lines strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&lines, `<div class="border-b" style="border-color:%s;height:2rem;"></div>`, col.Border)
	}
	return fmt.Sprintf(`
<section class="%s">
  <div class="flex flex-col gap-6 w-64">
    %s
    <div class="%s">%s</div>
  </div>
</section>`,
		tw("mt-8", c.Style["wrapper"]),
		lines.String(),
		tw("text-sm text-slate-600", c.Style["label"]),
		esc(p.Label))
}

func renderFooterText(c *Component, _ *Configs, _ *Colors) string {
	p := c.Props.(*FooterTextProps)
	return fmt.Sprintf(`
<section class="%s">%s</section>`,
		tw("mt-8 text-center text-sm text-slate-600", c.Style["text"]),
		esc(p.Text))
}

func renderTable(c *Component, cfg *Configs, col *Colors) string {
	p := c.Props.(*TableProps)

	title := ""
	if p.Title != "" {
		title = fmt.Sprintf(`<div class="%s">%s</div>`,
			tw("mb-2 font-semibold text-slate-800", c.Style["title"]), esc(p.Title))
	}

	cellPad := "py-2 px-3"
	if cfg.Table.Compact {
		cellPad = "py-1 px-2 text-sm"
	}

	var head strings.Builder
	for _, h := range p.Headers {
		fmt.Fprintf(&head,
			`<th class="%s border-b font-semibold text-left" style="border-color:%s">%s</th>`,
			cellPad, col.Border, esc(h))
	}
	headRow := ""
	if head.Len() > 0 {
		headRow = "<tr>" + head.String() + "</tr>"
	}

	var body strings.Builder
	for i, row := range p.Rows {
		// rows may be narrower or wider than the header; each renders as-is
		bg := "bg-white"
		if cfg.Table.Striped && i%2 == 1 {
			bg = "bg-gray-100"
		}
		fmt.Fprintf(&body, `<tr class="%s">`, bg)
		for _, cell := range row {
			text := ""
			if cell.Valid {
				text = esc(cell.Text)
			}
			fmt.Fprintf(&body, `<td class="%s border-b" style="border-color:%s">%s</td>`,
				cellPad, col.Border, text)
		}
		body.WriteString("</tr>")
	}

	notes := ""
	if p.Notes != "" {
		notes = fmt.Sprintf(`<div class="mt-2 text-xs text-slate-500">%s</div>`, esc(p.Notes))
	}

	return fmt.Sprintf(`
<section class="%s">
  %s
  <div class="%s">
    <table class="%s" style="border-color:%s">
      <thead class="%s">
        %s
      </thead>
      <tbody>%s</tbody>
    </table>
  </div>
  %s
</section>`,
		tw("my-4", c.Style["wrapper"]),
		title,
		tw("tbl-wrap overflow-x-auto", c.Style["container"]),
		tw("tbl w-full border-collapse", cfg.Table.Border),
		col.Border,
		tw(c.Style["thead"], cfg.Table.HeaderBg),
		headRow,
		body.String(),
		notes)
}

func renderImage(c *Component, _ *Configs, _ *Colors) string {
	p := c.Props.(*ImageProps)

	var size strings.Builder
	if p.Width != "" {
		fmt.Fprintf(&size, "width:%s;", p.Width)
	}
	if p.Height != "" {
		fmt.Fprintf(&size, "height:%s;", p.Height)
	}

	caption := ""
	if p.Caption != "" {
		caption = fmt.Sprintf(`<div class="%s">%s</div>`,
			tw("text-xs text-slate-500 mt-1 text-center", c.Style["caption"]), esc(p.Caption))
	}

	img := ""
	if p.URL != nil {
		img = fmt.Sprintf(`<img src="%s" alt="%s"
       class="%s"
       style="%s"/>`,
			esc(*p.URL), esc(p.Alt),
			tw("max-w-full mx-auto", c.Style["img"]),
			size.String())
	}

	return fmt.Sprintf(`
<section class="%s">
  %s
  %s
</section>`,
		tw("my-4", c.Style["wrapper"]), img, caption)
}

// renderImageGrid flattens all rows, keeps the first 6 images and re-chunks
// them into a fixed 2-column table. An odd count leaves the final row's
// second cell empty rather than dropping the row.
func renderImageGrid(c *Component, _ *Configs, _ *Colors) string {
	p := c.Props.(*ImageGridProps)

	title := ""
	if p.Title != "" {
		title = fmt.Sprintf(`<div class="%s">%s</div>`,
			tw("mb-4 text-center font-semibold text-slate-700 tracking-wide", c.Style["title"]),
			esc(p.Title))
	}

	flat := make([]string, 0)
	for _, row := range p.Rows {
		flat = append(flat, row...)
	}
	if len(flat) > 6 {
		flat = flat[:6]
	}

	var rows strings.Builder
	for i := 0; i < len(flat); i += 2 {
		end := i + 2
		if end > len(flat) {
			end = len(flat)
		}
		rows.WriteString(`<tr style="border: 2px solid black;">`)
		for _, u := range flat[i:end] {
			fmt.Fprintf(&rows, `
          <td style="width:50%%;text-align:center;vertical-align:middle;padding:16px 0;border: 2px solid black;">
            <img src="%s"
                 style="width:auto;max-width:30vw;height:auto;max-height:20vh;object-fit:contain;border:none;border-radius:3px;display:block;margin:0 auto;"/>
          </td>`, esc(u))
		}
		if end-i < 2 {
			rows.WriteString(`<td style="max-height:20vh;"></td>`)
		}
		rows.WriteString("</tr>")
	}

	return fmt.Sprintf(`
<div style="text-align:center;margin:0 auto;width:100%%;">
%s<section class="%s" style="width:90vw;display:flex;align-items:center;justify-content:center;">
  <table style="width:80%%;border-collapse:collapse;table-layout:fixed;margin:0 auto;text-align:center;">
    <tbody>
      %s
    </tbody>
  </table>
</section>
</div>`,
		title,
		tw("my-10", c.Style["wrapper"]),
		rows.String())
}
