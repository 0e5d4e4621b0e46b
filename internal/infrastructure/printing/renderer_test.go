package printing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name string
		req  *RenderRequest
		code string
	}{
		{"nil request", nil, ErrCodeInvalidHTML},
		{"empty HTML", &RenderRequest{HTML: "", Page: DefaultPageSetup()}, ErrCodeInvalidHTML},
		{"whitespace HTML", &RenderRequest{HTML: "  \n\t", Page: DefaultPageSetup()}, ErrCodeInvalidHTML},
		{"invalid paper size", &RenderRequest{HTML: "<p>x</p>", Page: PageSetup{PaperSize: "B5"}}, ErrCodeInvalidPaperSize},
		{"valid", &RenderRequest{HTML: "<p>x</p>", Page: DefaultPageSetup()}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.req)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			var rerr *RenderError
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tt.code, rerr.Code)
		})
	}
}

func TestEstimatePageCount(t *testing.T) {
	tests := []struct {
		name     string
		pdf      string
		expected int
	}{
		{"no markers", "%PDF-1.4", 1},
		{"single page", "/Type /Pages /Kids [3 0 R] /Type /Page", 1},
		{"three pages", "/Type /Pages /Type /Page /Type /Page /Type /Page", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, estimatePageCount([]byte(tt.pdf)))
		})
	}
}

func TestNewPDFRenderer_UnknownEngine(t *testing.T) {
	r, err := NewPDFRenderer(RendererConfig{Engine: "prince"}, nil)
	assert.Nil(t, r)
	var rerr *RenderError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, ErrCodeUnknownEngine, rerr.Code)
}

func TestNewPDFRenderer_Chromedp(t *testing.T) {
	r, err := NewPDFRenderer(RendererConfig{}, nil)
	require.NoError(t, err)
	defer r.Close()
	_, ok := r.(*ChromedpRenderer)
	assert.True(t, ok)
}

func TestNewWkhtmltopdfRenderer_MissingBinary(t *testing.T) {
	_, err := NewWkhtmltopdfRenderer(&WkhtmltopdfConfig{BinaryPath: "/nonexistent/wkhtmltopdf"})
	var rerr *RenderError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, ErrCodeBinaryNotFound, rerr.Code)
}

func TestWkhtmltopdfRenderer_BuildArgs(t *testing.T) {
	r := &WkhtmltopdfRenderer{config: &WkhtmltopdfConfig{DPI: 96}}
	req := &RenderRequest{
		HTML:  "<p>x</p>",
		Page:  DefaultPageSetup(),
		Title: "Raport Finansowy",
	}

	args := r.buildArgs(req, "/tmp/in.html", "/tmp/footer.html", "/tmp/out.pdf")

	assert.Contains(t, args, "--disable-javascript")
	assert.Subset(t, args, []string{"--page-size", "A4", "--orientation", "Portrait"})
	assert.Subset(t, args, []string{"--margin-top", "18mm"})
	assert.Subset(t, args, []string{"--title", "Raport Finansowy"})
	assert.Subset(t, args, []string{"--footer-html", "/tmp/footer.html"})
	assert.Equal(t, []string{"/tmp/in.html", "/tmp/out.pdf"}, args[len(args)-2:])
}

func TestBuildPrintParams(t *testing.T) {
	req := &RenderRequest{
		HTML: "<p>x</p>",
		Page: PageSetup{
			PaperSize:   PaperSizeA4,
			Orientation: OrientationLandscape,
			Margins:     UniformMargins(5),
		},
		FooterHTML: "<div>1</div>",
	}

	p := buildPrintParams(req)
	assert.InDelta(t, 8.27, p.paperWidth, 0.01)
	assert.InDelta(t, 11.69, p.paperHeight, 0.01)
	assert.True(t, p.landscape)
	assert.InDelta(t, mmToInches(5), p.marginTop, 0.0001)
	// footer forces room at the bottom
	assert.InDelta(t, mmToInches(12), p.marginBottom, 0.0001)
}

func TestChromedpRenderer_RejectsInvalidRequest(t *testing.T) {
	r, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Render(context.Background(), &RenderRequest{HTML: ""})
	var rerr *RenderError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, ErrCodeInvalidHTML, rerr.Code)
}

func TestParsePaperSize(t *testing.T) {
	p, err := ParsePaperSize("")
	require.NoError(t, err)
	assert.Equal(t, PaperSizeA4, p)

	p, err = ParsePaperSize("A5")
	require.NoError(t, err)
	w, h := p.Dimensions()
	assert.Equal(t, 148, w)
	assert.Equal(t, 210, h)

	_, err = ParsePaperSize("RECEIPT_58MM")
	assert.Error(t, err)
}
