package printing

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"strings"

	"github.com/gym/backend/internal/domain/report"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

const reportTemplateName = "report.html"

// Report colors
const (
	HeaderColor = "rgb(220, 20, 60)"
	CellColor   = "rgb(26, 26, 26)"
)

// pageFooterHTML is repeated on every page by engines that support it.
// pageNumber and totalPages are filled in by Chrome.
const pageFooterHTML = `<div style="font-size:8px;width:100%;text-align:center;color:#666;">` +
	`Strona <span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// TemplateEngine turns report documents into HTML using html/template
type TemplateEngine struct {
	report *template.Template
}

// NewTemplateEngine parses the embedded report layout
func NewTemplateEngine() (*TemplateEngine, error) {
	funcs := template.FuncMap{
		"join":  strings.Join,
		"upper": upperPolish,
		"align": columnAlign,
	}
	tmpl, err := template.New(reportTemplateName).Funcs(funcs).ParseFS(templateFS, "templates/"+reportTemplateName)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse report template", err)
	}
	return &TemplateEngine{report: tmpl}, nil
}

// reportView is the data bound to the report template
type reportView struct {
	*report.Document
	GeneratedAt string
	PageSize    template.CSS
	HeaderColor template.CSS
	CellColor   template.CSS
}

// RenderDocument renders a report document to a complete HTML page
func (e *TemplateEngine) RenderDocument(ctx context.Context, doc *report.Document, setup PageSetup) (string, error) {
	if doc == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "document is nil", nil)
	}
	if err := ctx.Err(); err != nil {
		return "", NewRenderError(ErrCodeRenderTimeout, "template rendering was cancelled", err)
	}

	view := reportView{
		Document:    doc,
		GeneratedAt: doc.GeneratedAtText(),
		PageSize:    template.CSS(cssPageSize(setup)),
		HeaderColor: template.CSS(HeaderColor),
		CellColor:   template.CSS(CellColor),
	}

	var buf bytes.Buffer
	if err := e.report.Execute(&buf, view); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute report template", err)
	}
	return buf.String(), nil
}

// PageFooterHTML returns the per-page footer fragment
func (e *TemplateEngine) PageFooterHTML() string {
	return pageFooterHTML
}

// upperPolish upper-cases with Polish rules. Casers are stateful, so one is
// created per call.
func upperPolish(s string) string {
	return cases.Upper(language.Polish).String(s)
}

func columnAlign(cols []report.Column, i int) string {
	if i < 0 || i >= len(cols) || cols[i].Align == "" {
		return string(report.AlignLeft)
	}
	return string(cols[i].Align)
}

func cssPageSize(setup PageSetup) string {
	size := "A4"
	switch setup.PaperSize {
	case PaperSizeA5:
		size = "A5"
	case PaperSizeLetter:
		size = "letter"
	}
	if setup.Orientation == OrientationLandscape {
		return size + " landscape"
	}
	return size + " portrait"
}
