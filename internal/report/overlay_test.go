package report

import (
	"strings"
	"testing"
)

func TestHeaderOverlay_HiddenYieldsEmptyDiv(t *testing.T) {
	doc := mustParse(t, `{
		"company": "Acme",
		"reportName": "R",
		"assets": {},
		"configs": {"header": {"visible": false}},
		"components": [{"type": "divider", "props": {}}]
	}`)
	if got := HeaderOverlay(doc); got != "<div></div>" {
		t.Errorf("hidden header overlay = %q", got)
	}
}

func TestHeaderOverlay_FallsBackToReportName(t *testing.T) {
	doc := testDoc(t)
	doc.ReportName = `Q3 <Survey> Report`

	out := HeaderOverlay(doc)
	if !strings.Contains(out, "Q3 &lt;Survey&gt; Report") {
		t.Errorf("report name fallback missing or unescaped: %s", out)
	}
}

func TestHeaderOverlay_PrefersHeaderImage(t *testing.T) {
	doc := testDoc(t)
	uri := "data:image/png;base64,AAAA"
	doc.Assets.HeaderImage = &uri

	out := HeaderOverlay(doc)
	if !strings.Contains(out, `height:18px`) {
		t.Errorf("header image not rendered: %s", out)
	}
	if strings.Contains(out, doc.ReportName) {
		t.Errorf("report name should yield to the header image: %s", out)
	}
}

func TestHeaderOverlay_UsesLiteralInlineStyles(t *testing.T) {
	doc := mustParse(t, `{
		"company": "Acme",
		"reportName": "R",
		"colors": {"text": "#333333", "border": "#DDDDDD"},
		"assets": {},
		"configs": {"header": {"align": "right"}},
		"components": [{"type": "divider", "props": {}}]
	}`)

	out := HeaderOverlay(doc)
	if !strings.Contains(out, "color:#333333") {
		t.Errorf("text color not inlined: %s", out)
	}
	if !strings.Contains(out, "border-bottom:1px solid #DDDDDD") {
		t.Errorf("border color not inlined: %s", out)
	}
	if !strings.Contains(out, "justify-content:flex-end") {
		t.Errorf("alignment not mapped to a literal flex value: %s", out)
	}
	if strings.Contains(out, "justify-end") {
		t.Errorf("utility class leaked into the isolated overlay context: %s", out)
	}
}

func TestFooterOverlay_HiddenYieldsEmptyDiv(t *testing.T) {
	doc := mustParse(t, `{
		"company": "Acme",
		"reportName": "R",
		"assets": {},
		"configs": {"footer": {"visible": false}},
		"components": [{"type": "divider", "props": {}}]
	}`)
	if got := FooterOverlay(doc); got != "<div></div>" {
		t.Errorf("hidden footer overlay = %q", got)
	}
}

func TestFooterOverlay_ActivatesCounterPlaceholders(t *testing.T) {
	doc := testDoc(t)
	out := FooterOverlay(doc)

	if strings.Contains(out, "{{page}}") || strings.Contains(out, "{{pages}}") {
		t.Errorf("raw placeholders survived: %s", out)
	}
	if !strings.Contains(out, `<span class="pageNumber"></span>`) {
		t.Errorf("page counter span missing: %s", out)
	}
	if !strings.Contains(out, `<span class="totalPages"></span>`) {
		t.Errorf("total pages span missing: %s", out)
	}
	if !strings.Contains(out, `<span style="padding-right:2px;">Page</span>`) {
		t.Errorf("leading Page word not spaced: %s", out)
	}
	if !strings.Contains(out, "tabular-nums") {
		t.Errorf("counter digits should use tabular figures: %s", out)
	}
}

func TestFooterOverlay_OnlyFirstOfWordSpaced(t *testing.T) {
	doc := testDoc(t)
	doc.Configs.Footer.Text = "Page {{page}} of {{pages}} of record"

	out := FooterOverlay(doc)
	if got := strings.Count(out, `<span style="padding:0 2px;">of</span>`); got != 1 {
		t.Errorf("of-word span count = %d, want 1", got)
	}
	if !strings.Contains(out, "of record") {
		t.Errorf("second occurrence should stay literal: %s", out)
	}
}

func TestFooterOverlay_CustomTextWithoutPlaceholders(t *testing.T) {
	doc := testDoc(t)
	doc.Configs.Footer.Text = "Confidential - Acme & Co"

	out := FooterOverlay(doc)
	if !strings.Contains(out, "Acme &amp; Co") {
		t.Errorf("footer text not escaped: %s", out)
	}
	if strings.Contains(out, "pageNumber") {
		t.Errorf("no counters requested, none should render: %s", out)
	}
}

func TestOverlayVisibilityAgreesWithCompositor(t *testing.T) {
	doc := mustParse(t, `{
		"company": "Acme",
		"reportName": "R",
		"assets": {},
		"configs": {"header": {"visible": false}, "footer": {"visible": false}},
		"components": [{"type": "divider", "props": {}}]
	}`)

	if HeaderOverlay(doc) != "<div></div>" || FooterOverlay(doc) != "<div></div>" {
		t.Error("hidden overlays should be empty")
	}
	body := RenderBody(doc)
	if strings.Contains(body, "fixed-header") || strings.Contains(body, "fixed-footer") {
		t.Error("compositor disagrees with overlay visibility")
	}
	head := RenderHead(doc)
	if !strings.Contains(head, "--header-h:0px") || !strings.Contains(head, "--footer-h:0px") {
		t.Error("hidden overlays must not reserve height in the flow")
	}
}

func TestPDFFilename(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Q3 Report", "Q3 Report"},
		{"Überprüfung 2024", "U_berpru_fung 2024"},
		{"日本語", "report"},
		{"###", "report"},
		{"", "report"},
		{"--survey--", "survey"},
	}
	for _, tc := range cases {
		doc := &Report{ReportName: tc.name}
		if got := PDFFilename(doc); got != tc.want {
			t.Errorf("PDFFilename(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
