package pdf

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Options describe one paginated render: page geometry plus the two
// standalone overlay fragments the engine repeats on every page. Page
// margins are zero; the document reserves its own margins via padding.
type Options struct {
	Size        string // A4 | Letter
	Orientation string // portrait | landscape
	HeaderHTML  string
	FooterHTML  string
}

// Paper dimensions in inches at the sizes the document model allows.
var paperSizes = map[string][2]float64{
	"A4":     {8.27, 11.69},
	"Letter": {8.5, 11},
}

// Generate renders the HTML document in a headless browser and returns the
// paginated PDF bytes. The browser, page and launcher are released on every
// exit path, including mid-render failures.
func Generate(ctx context.Context, htmlContent string, opts Options) ([]byte, error) {
	launch := launcher.New().
		Headless(true).
		NoSandbox(true)

	if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	defer launch.Cleanup()

	browser := rod.New().ControlURL(browserURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		_ = browser.Close()
	}()

	page, err := browser.Timeout(30 * time.Second).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	page = page.Timeout(60 * time.Second)
	if err := page.SetDocumentContent(htmlContent); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	if err := (proto.EmulationSetEmulatedMedia{Media: "print"}).Call(page); err != nil {
		return nil, fmt.Errorf("set emulated media to print: %w", err)
	}

	reader, err := page.PDF(buildPrintParams(opts))
	if err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf bytes: %w", err)
	}
	return data, nil
}

// buildPrintParams maps the document page options onto the engine's print
// call. The overlay fragments ride along as the engine's native header and
// footer templates, which render outside the document's style scope.
func buildPrintParams(opts Options) *proto.PagePrintToPDF {
	size, ok := paperSizes[opts.Size]
	if !ok {
		size = paperSizes["A4"]
	}

	params := &proto.PagePrintToPDF{
		Landscape:         opts.Orientation == "landscape",
		PrintBackground:   true,
		PaperWidth:        floatPtr(size[0]),
		PaperHeight:       floatPtr(size[1]),
		MarginTop:         floatPtr(0),
		MarginBottom:      floatPtr(0),
		MarginLeft:        floatPtr(0),
		MarginRight:       floatPtr(0),
		PreferCSSPageSize: false,
	}

	if opts.HeaderHTML != "" || opts.FooterHTML != "" {
		params.DisplayHeaderFooter = true
		params.HeaderTemplate = opts.HeaderHTML
		params.FooterTemplate = opts.FooterHTML
		if params.HeaderTemplate == "" {
			params.HeaderTemplate = "<span></span>"
		}
		if params.FooterTemplate == "" {
			params.FooterTemplate = "<span></span>"
		}
	}

	return params
}

func floatPtr(value float64) *float64 {
	return &value
}
