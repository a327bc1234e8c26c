package report

import (
	"testing"
)

func hasIssue(issues []FieldError, field string) bool {
	for _, issue := range issues {
		if issue.Field == field {
			return true
		}
	}
	return false
}

func mustParse(t *testing.T, payload string) *Report {
	t.Helper()
	r, issues := Parse([]byte(payload))
	if issues != nil {
		t.Fatalf("unexpected issues: %v", issues)
	}
	return r
}

const minimalPayload = `{
	"company": "Acme Surveys",
	"reportName": "Q3 Report",
	"assets": {},
	"components": [
		{"type": "para", "props": {"text": "hello"}}
	]
}`

func TestParse_AppliesDefaults(t *testing.T) {
	r := mustParse(t, minimalPayload)

	if r.Colors.Primary != "#0F172A" || r.Colors.Border != "#E5E7EB" {
		t.Errorf("color defaults not applied: %+v", r.Colors)
	}
	if r.Configs.Page.Size != "A4" || r.Configs.Page.Orientation != "portrait" || r.Configs.Page.Margin != "20mm" {
		t.Errorf("page defaults not applied: %+v", r.Configs.Page)
	}
	if !r.Configs.Header.Visible || r.Configs.Header.Align != "center" || r.Configs.Header.Repeat != "all" {
		t.Errorf("header defaults not applied: %+v", r.Configs.Header)
	}
	if r.Configs.Footer.Text != "Page {{page}} of {{pages}}" {
		t.Errorf("footer text default not applied: %q", r.Configs.Footer.Text)
	}
	if r.Configs.Date.Align != "right" || r.Configs.Date.Format != "DD MMM YYYY" {
		t.Errorf("date defaults not applied: %+v", r.Configs.Date)
	}
	if !r.Configs.Table.Striped || r.Configs.Table.Compact || r.Configs.Table.HeaderBg != "bg-gray-100" {
		t.Errorf("table defaults not applied: %+v", r.Configs.Table)
	}
}

func TestParse_PartialGroupKeepsOtherDefaults(t *testing.T) {
	r := mustParse(t, `{
		"company": "Acme",
		"reportName": "R",
		"assets": {},
		"configs": {"page": {"orientation": "landscape"}},
		"components": [{"type": "divider", "props": {}}]
	}`)

	if r.Configs.Page.Orientation != "landscape" {
		t.Errorf("explicit orientation lost: %q", r.Configs.Page.Orientation)
	}
	if r.Configs.Page.Size != "A4" || r.Configs.Page.Margin != "20mm" {
		t.Errorf("sibling defaults lost: %+v", r.Configs.Page)
	}
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, issues := Parse([]byte(`{
		"company": "Acme",
		"reportName": "R",
		"assets": {},
		"extra": 1,
		"configs": {"page": {"papersize": "A4"}},
		"components": [{"type": "divider", "props": {}}]
	}`))
	if issues == nil {
		t.Fatal("expected issues")
	}
	if !hasIssue(issues, "extra") {
		t.Errorf("top-level unknown field not reported: %v", issues)
	}
	if !hasIssue(issues, "configs.page.papersize") {
		t.Errorf("nested unknown field not reported: %v", issues)
	}
}

func TestParse_RejectsBadEnums(t *testing.T) {
	_, issues := Parse([]byte(`{
		"company": "Acme",
		"reportName": "R",
		"assets": {},
		"configs": {
			"page": {"size": "A5"},
			"header": {"align": "top"}
		},
		"components": [{"type": "divider", "props": {}}]
	}`))
	if !hasIssue(issues, "configs.page.size") {
		t.Errorf("bad page size not reported: %v", issues)
	}
	if !hasIssue(issues, "configs.header.align") {
		t.Errorf("bad header align not reported: %v", issues)
	}
}

func TestParse_RequiresComponents(t *testing.T) {
	_, issues := Parse([]byte(`{"company": "A", "reportName": "R", "assets": {}}`))
	if !hasIssue(issues, "components") {
		t.Errorf("missing components not reported: %v", issues)
	}

	_, issues = Parse([]byte(`{"company": "A", "reportName": "R", "assets": {}, "components": []}`))
	if !hasIssue(issues, "components") {
		t.Errorf("empty components not reported: %v", issues)
	}
}

func TestParse_RejectsUnknownComponentType(t *testing.T) {
	_, issues := Parse([]byte(`{
		"company": "A",
		"reportName": "R",
		"assets": {},
		"components": [{"type": "chart", "props": {}}]
	}`))
	if !hasIssue(issues, "components[0].type") {
		t.Errorf("unknown component type not reported: %v", issues)
	}
}

func TestParse_SignatureLinesRange(t *testing.T) {
	_, issues := Parse([]byte(`{
		"company": "A",
		"reportName": "R",
		"assets": {},
		"components": [{"type": "signature", "props": {"label": "Surveyor", "lines": 6}}]
	}`))
	if !hasIssue(issues, "components[0].props.lines") {
		t.Errorf("out-of-range lines not reported: %v", issues)
	}

	r := mustParse(t, `{
		"company": "A",
		"reportName": "R",
		"assets": {},
		"components": [{"type": "signature", "props": {"label": "Surveyor", "lines": 3}}]
	}`)
	p := r.Components[0].Props.(*SignatureProps)
	if p.Lines != 3 {
		t.Errorf("lines = %d, want 3", p.Lines)
	}
}

func TestParse_TableCellKinds(t *testing.T) {
	r := mustParse(t, `{
		"company": "A",
		"reportName": "R",
		"assets": {},
		"components": [{
			"type": "table",
			"props": {
				"headers": ["Item", "Qty"],
				"rows": [["Bolts", 12.5], [null, "n/a"]]
			}
		}]
	}`)
	p := r.Components[0].Props.(*TableProps)
	if got := p.Rows[0][1]; !got.Valid || got.Text != "12.5" {
		t.Errorf("number cell = %+v", got)
	}
	if got := p.Rows[1][0]; got.Valid {
		t.Errorf("null cell should be invalid: %+v", got)
	}
}

func TestParse_TableCellRejectsNestedValues(t *testing.T) {
	_, issues := Parse([]byte(`{
		"company": "A",
		"reportName": "R",
		"assets": {},
		"components": [{
			"type": "table",
			"props": {"headers": [], "rows": [[{"x": 1}]]}
		}]
	}`))
	if !hasIssue(issues, "components[0].props.rows") {
		t.Errorf("object cell not reported: %v", issues)
	}
}

func TestParse_ImageURLMustBeAbsolute(t *testing.T) {
	_, issues := Parse([]byte(`{
		"company": "A",
		"reportName": "R",
		"assets": {},
		"components": [{"type": "image", "props": {"url": "photos/site.png"}}]
	}`))
	if !hasIssue(issues, "components[0].props.url") {
		t.Errorf("relative component url not reported: %v", issues)
	}

	r := mustParse(t, `{
		"company": "A",
		"reportName": "R",
		"assets": {},
		"components": [{"type": "image", "props": {"url": "data:image/png;base64,AAAA"}}]
	}`)
	p := r.Components[0].Props.(*ImageProps)
	if p.URL == nil {
		t.Fatal("data URI should be accepted")
	}
}

func TestParse_AssetSlotsAcceptRepoPaths(t *testing.T) {
	r := mustParse(t, `{
		"company": "A",
		"reportName": "R",
		"assets": {"logo": "branding/logo.png", "headerImage": null},
		"components": [{"type": "divider", "props": {}}]
	}`)
	if r.Assets.Logo == nil || *r.Assets.Logo != "branding/logo.png" {
		t.Errorf("repo path asset ref lost: %+v", r.Assets)
	}
	if r.Assets.HeaderImage != nil {
		t.Errorf("null asset slot should stay nil")
	}
}

func TestParse_NoPartialDocument(t *testing.T) {
	r, issues := Parse([]byte(`{"reportName": "R", "assets": {}, "components": []}`))
	if r != nil {
		t.Fatal("invalid payload must not yield a document")
	}
	if !hasIssue(issues, "company") {
		t.Errorf("missing company not reported: %v", issues)
	}
}

func TestParse_ImageRefsOrder(t *testing.T) {
	r := mustParse(t, `{
		"company": "A",
		"reportName": "R",
		"assets": {"logo": "data:image/png;base64,AAAA"},
		"components": [
			{"type": "para", "props": {"text": "x"}},
			{"type": "image", "props": {"url": "https://example.com/a.png"}}
		]
	}`)
	refs := r.ImageRefs()
	if len(refs) != 5 {
		t.Fatalf("refs = %d, want 4 asset slots + 1 image", len(refs))
	}
	if refs[0].Name != "assets.logo" || refs[4].Name != "components[1].url" {
		t.Errorf("ref order wrong: %q ... %q", refs[0].Name, refs[4].Name)
	}
}
