// Package printing turns report documents into PDF files.
//
// Rendering is two-stage: TemplateEngine lays a report.Document out as HTML
// using the embedded templates, then a PDFRenderer (chromedp or wkhtmltopdf)
// prints that HTML to PDF. Finished files are written with WriteFileAtomic.
package printing
