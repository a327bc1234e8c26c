package report

import (
	"strings"
	"testing"
	"time"
)

func testDoc(t *testing.T) *Report {
	t.Helper()
	return mustParse(t, minimalPayload)
}

func render(t *testing.T, comp Component) string {
	t.Helper()
	doc := testDoc(t)
	return RenderComponent(&comp, &doc.Configs, &doc.Colors)
}

func TestRenderPara_EscapesText(t *testing.T) {
	out := render(t, Component{Type: "para", Props: &ParaProps{Text: `<script>alert("x")</script>`}})
	if strings.Contains(out, "<script>") {
		t.Fatalf("unescaped markup leaked: %s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("expected escaped text, got: %s", out)
	}
}

func TestRenderComponent_UnknownTypeIsNoOp(t *testing.T) {
	out := render(t, Component{Type: "chart", Props: &ParaProps{}})
	if out != "" {
		t.Errorf("unknown type should yield empty fragment, got: %q", out)
	}
}

func TestRenderSignature_ClampsLines(t *testing.T) {
	cases := []struct {
		lines int
		want  int
	}{
		{0, 1},
		{-3, 1},
		{3, 3},
		{9, 5},
	}
	for _, tc := range cases {
		out := render(t, Component{Type: "signature", Props: &SignatureProps{Label: "Surveyor", Lines: tc.lines}})
		got := strings.Count(out, "border-b")
		if got != tc.want {
			t.Errorf("lines=%d rendered %d rules, want %d", tc.lines, got, tc.want)
		}
	}
}

func TestRenderSpacer_Scale(t *testing.T) {
	out := render(t, Component{Type: "spacer", Props: &SpacerProps{Size: "xs"}})
	if !strings.Contains(out, "h-2") {
		t.Errorf("xs spacer: %s", out)
	}
	out = render(t, Component{Type: "spacer", Props: &SpacerProps{}})
	if !strings.Contains(out, "h-8") {
		t.Errorf("unset size should fall back to md: %s", out)
	}
}

func TestRenderTable_NullCellsAndStriping(t *testing.T) {
	comp := Component{Type: "table", Props: &TableProps{
		Headers: []string{"Item", "Qty"},
		Rows: [][]Cell{
			{{Valid: true, Text: "Bolts"}, {Valid: true, Text: "12"}},
			{{}, {Valid: true, Text: "n/a"}},
		},
	}}
	out := render(t, comp)

	if !strings.Contains(out, "<thead") || !strings.Contains(out, ">Item</th>") {
		t.Errorf("header row missing: %s", out)
	}
	if !strings.Contains(out, `<tr class="bg-gray-100">`) {
		t.Errorf("odd row not striped: %s", out)
	}
	if strings.Contains(out, ">null<") {
		t.Errorf("null cell leaked as text: %s", out)
	}
}

func TestRenderTable_NoHeadersSkipsHeadRow(t *testing.T) {
	comp := Component{Type: "table", Props: &TableProps{
		Headers: nil,
		Rows:    [][]Cell{{{Valid: true, Text: "a"}}},
	}}
	out := render(t, comp)
	if strings.Contains(out, "<tr><th") {
		t.Errorf("empty header set must not render a head row: %s", out)
	}
}

func TestRenderTable_CompactPadding(t *testing.T) {
	doc := testDoc(t)
	doc.Configs.Table.Compact = true
	comp := Component{Type: "table", Props: &TableProps{
		Headers: []string{"A"},
		Rows:    [][]Cell{{{Valid: true, Text: "x"}}},
	}}
	out := RenderComponent(&comp, &doc.Configs, &doc.Colors)
	if !strings.Contains(out, "py-1 px-2 text-sm") {
		t.Errorf("compact padding missing: %s", out)
	}
}

func TestRenderTable_RaggedRowsRenderAsIs(t *testing.T) {
	comp := Component{Type: "table", Props: &TableProps{
		Headers: []string{"A", "B"},
		Rows: [][]Cell{
			{{Valid: true, Text: "only"}},
			{{Valid: true, Text: "1"}, {Valid: true, Text: "2"}, {Valid: true, Text: "3"}},
		},
	}}
	out := render(t, comp)
	if got := strings.Count(out, "<td"); got != 4 {
		t.Errorf("ragged rows should keep their own cell counts, got %d cells", got)
	}
}

func TestRenderImage_NilURLDegrades(t *testing.T) {
	comp := Component{Type: "image", Props: &ImageProps{URL: nil, Caption: "Site photo"}}
	out := render(t, comp)
	if strings.Contains(out, "<img") {
		t.Errorf("nil url must not render an img tag: %s", out)
	}
	if !strings.Contains(out, "Site photo") {
		t.Errorf("caption should survive a missing image: %s", out)
	}
}

func TestRenderImageGrid_CapsAtSixImages(t *testing.T) {
	urls := []string{
		"https://e.com/1.png", "https://e.com/2.png", "https://e.com/3.png",
		"https://e.com/4.png", "https://e.com/5.png", "https://e.com/6.png",
		"https://e.com/7.png",
	}
	comp := Component{Type: "image-grid", Props: &ImageGridProps{Rows: [][]string{urls}}}
	out := render(t, comp)

	if got := strings.Count(out, "<img"); got != 6 {
		t.Errorf("image count = %d, want 6", got)
	}
	if got := strings.Count(out, "<tr"); got != 3 {
		t.Errorf("row count = %d, want 3", got)
	}
}

func TestRenderImageGrid_OddCountPadsLastRow(t *testing.T) {
	comp := Component{Type: "image-grid", Props: &ImageGridProps{
		Rows: [][]string{{"https://e.com/1.png", "https://e.com/2.png", "https://e.com/3.png"}},
	}}
	out := render(t, comp)
	if !strings.Contains(out, `<td style="max-height:20vh;"></td>`) {
		t.Errorf("odd image count should pad the final cell: %s", out)
	}
}

func TestRenderImageGrid_TitleRendered(t *testing.T) {
	comp := Component{Type: "image-grid", Props: &ImageGridProps{
		Title: "Cargo Condition",
		Rows:  [][]string{{"https://e.com/1.png"}},
	}}
	out := render(t, comp)
	if !strings.Contains(out, "Cargo Condition") {
		t.Errorf("grid title missing: %s", out)
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate("2024-03-07"); got != "07 Mar 2024" {
		t.Errorf("formatDate ISO = %q", got)
	}
	if got := formatDate("2024-03-07T09:30:00Z"); got != "07 Mar 2024" {
		t.Errorf("formatDate timestamp = %q", got)
	}
	if got := formatDate("next tuesday"); got != "next tuesday" {
		t.Errorf("unparseable value should pass through escaped: %q", got)
	}
}

func TestFormatDate_EmptyFallsBackToToday(t *testing.T) {
	orig := timeNow
	timeNow = func() time.Time { return time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC) }
	defer func() { timeNow = orig }()

	if got := formatDate(""); got != "2026-08-29" {
		t.Errorf("empty value fallback = %q", got)
	}
}

func TestStyleOverridesAppendAfterBase(t *testing.T) {
	comp := Component{
		Type:  "para",
		Style: StyleMap{"wrapper": "mb-8 text-red-500"},
		Props: &ParaProps{Text: "x"},
	}
	out := render(t, comp)
	if !strings.Contains(out, "mb-3 mb-8 text-red-500") {
		t.Errorf("override must append after base classes: %s", out)
	}
}
