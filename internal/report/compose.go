package report

import (
	"fmt"
	"strings"
)

// RenderHead produces the document head fragment: the print reset plus the
// CSS custom-property block computed from the resolved design tokens. The
// custom properties are the only source of design values for the body, so
// every inline style downstream reads the same resolution the overlay
// reconciler uses.
func RenderHead(r *Report) string {
	t := ResolveTokens(r)

	var bgRule string
	if t.BackgroundImage != "" {
		bgRule = fmt.Sprintf(`
.page-bg{
  position:fixed;
  top:0;
  left:0;
  width:100%%;
  height:100%%;
  background-image:url('%s');
  background-size:cover;
  background-repeat:no-repeat;
  background-position:center top;
  z-index:-1;
}`, t.BackgroundImage)
	}

	return fmt.Sprintf(`
<style>
  @media print {
    html, body {
      height: auto !important;
      min-height: 100%%;
      display: block !important;
    }
    .page, .wrapper {
      min-height: 100%%;
      display: block;
      position: relative;
    }
  }
</style>

<style>

:root{
  --color-text:%s;
  --color-border:%s;
  --color-bg:%s;
  --page-size:%s;
  --page-orientation:%s;
  --page-margin:%s;
  --header-h:%s;
  --footer-h:%s;
}
body{
  color:var(--color-text);
  background-color:var(--color-bg);
}
%s

/* inner white margin via padding, not page margin */
.body-wrap{
  padding:var(--page-margin);
  padding-top:calc(var(--header-h) + var(--page-margin) + 36mm);
  padding-bottom:calc(var(--footer-h) + var(--page-margin));
  box-decoration-break:clone;
  -webkit-box-decoration-break:clone;
}

.fixed-header{
  position:fixed;
  top:0;
  left:0;
  right:0;
  height:var(--header-h);
  background:transparent;
  z-index:1000;
}

.fixed-footer{
  position:fixed;
  bottom:0;
  left:0;
  right:0;
  height:var(--footer-h);
  background:transparent;
  z-index:1000;
  display:flex;
  align-items:center;
}

.pagebreak{page-break-after:always;}

@page{
  size:var(--page-size) var(--page-orientation);
  margin:0;
}

@media print{
  .fixed-header{position:fixed;}
  .fixed-footer{position:fixed;}
  .page-bg{position:fixed;}
  html,body{height:auto !important;}

  .tbl{page-break-inside:auto;break-inside:auto;}
  .tbl thead{display:table-header-group;}
  .tbl tfoot{display:table-footer-group;}
  .tbl tr{page-break-inside:avoid;break-inside:avoid;}
  .tbl-wrap{overflow:visible !important;}
}
</style>`,
		t.TextColor, t.BorderColor, t.BackgroundColor,
		t.PageSize, t.PageOrientation, t.PageMargin,
		t.HeaderHeight, t.FooterHeight,
		bgRule)
}

// PrintOnlyCSS is layered on top of the head fragment for the PDF path:
// the external engine repeats its own overlays, so the in-document fixed
// ones must not print as well.
const PrintOnlyCSS = `<style>@media print {.fixed-header,.fixed-footer{display:none!important}}</style>`

// RenderBody assembles the body fragment: background layer, fixed header
// overlay or first-page inline header, main content flow in component
// order, and the fixed footer overlay.
func RenderBody(r *Report) string {
	t := ResolveTokens(r)

	headerInner := func(logoClass, headerClass string) string {
		var b strings.Builder
		if r.Assets.Logo != nil {
			fmt.Fprintf(&b, `<img src="%s" alt="logo" class="%s"/>`, esc(*r.Assets.Logo), logoClass)
		}
		if r.Assets.HeaderImage != nil {
			fmt.Fprintf(&b, `<img src="%s" alt="header" class="%s"/>`, esc(*r.Assets.HeaderImage), headerClass)
		}
		return b.String()
	}

	firstHeader := ""
	if t.HeaderVisible && !t.HeaderRepeatAll {
		firstHeader = fmt.Sprintf(`<section class="mb-6 border-b pb-3" style="border-color:%s">
  <div class="flex items-center %s">
    %s
  </div>
</section>`,
			t.BorderColor, justifyClass(t.HeaderAlign), headerInner("h-8 mr-3", "h-10"))
	}

	var parts strings.Builder
	for i := range r.Components {
		parts.WriteString(RenderComponent(&r.Components[i], &r.Configs, &r.Colors))
	}

	fixedHeader := ""
	if t.HeaderVisible && t.HeaderRepeatAll {
		fixedHeader = fmt.Sprintf(`<header class="fixed-header border-b" style="border-color:%s">
  <div class="flex items-center %s h-full px-4">
    %s
  </div>
</header>`,
			t.BorderColor, justifyClass(t.HeaderAlign), headerInner("h-8 mr-3", "h-10"))
	}

	fixedFooter := ""
	if t.FooterVisible {
		footerImg := ""
		if r.Assets.FooterImage != nil {
			footerImg = fmt.Sprintf(`<img src="%s" alt="footer" class="h-6 mr-2"/>`, esc(*r.Assets.FooterImage))
		}
		// the flowing document has no live page counter; the placeholders
		// only come alive in the print overlay context
		text := strings.ReplaceAll(t.FooterText, "{{page}}", "")
		text = strings.ReplaceAll(text, "{{pages}}", "")
		fixedFooter = fmt.Sprintf(`<footer class="fixed-footer px-4">
  %s<span class="text-sm text-gray-600">%s</span>
</footer>`, footerImg, esc(text))
	}

	pageBg := ""
	if t.BackgroundImage != "" {
		pageBg = `<div class="page-bg"></div>`
	}

	main := fmt.Sprintf(`
<main class="prose max-w-none text-[0] body-wrap">
  <div class="text-[inherit] %s %s"
       style="font-family:%s">
    %s%s
  </div>
</main>`,
		r.Configs.Font.Base, r.Configs.Font.Leading, t.FontFamily, firstHeader, parts.String())

	return pageBg + fixedHeader + main + fixedFooter
}
