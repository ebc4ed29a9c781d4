// Package report renders proposal quote PDFs through an external Gotenberg
// service.
package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"
)

// QuoteLine is one priced line of a quote.
type QuoteLine struct {
	Description string
	Quantity    float64
	Rate        float64
	Discount    float64
}

// Amount is the line total after discount.
func (l QuoteLine) Amount() float64 {
	gross := l.Quantity * l.Rate
	return gross - gross*l.Discount/100
}

// Quote carries everything the quote document shows.
type Quote struct {
	Number       string
	Date         time.Time
	CustomerName string
	CustomerCity string
	Reference    string
	Lines        []QuoteLine
	Terms        []string
}

// Total sums all line amounts.
func (q Quote) Total() float64 {
	var sum float64
	for _, l := range q.Lines {
		sum += l.Amount()
	}
	return sum
}

var quoteTemplate = template.Must(template.New("quote").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"date":  func(t time.Time) string { return t.Format("02 Jan 2006") },
	"inc":   func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><style>
body { font-family: sans-serif; font-size: 12px; margin: 40px; }
h1 { font-size: 18px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { border: 1px solid #444; padding: 6px 8px; text-align: left; }
tfoot td { font-weight: bold; }
.meta { margin-top: 8px; color: #333; }
.terms { margin-top: 24px; font-size: 11px; }
</style></head>
<body>
<h1>Quotation {{.Number}}</h1>
<div class="meta">Date: {{date .Date}}</div>
<div class="meta">Customer: {{.CustomerName}}{{if .CustomerCity}}, {{.CustomerCity}}{{end}}</div>
{{if .Reference}}<div class="meta">Reference: {{.Reference}}</div>{{end}}
<table>
<thead><tr><th>#</th><th>Description</th><th>Qty</th><th>Rate</th><th>Disc %</th><th>Amount</th></tr></thead>
<tbody>
{{range $i, $l := .Lines}}<tr><td>{{inc $i}}</td><td>{{$l.Description}}</td><td>{{money $l.Quantity}}</td><td>{{money $l.Rate}}</td><td>{{money $l.Discount}}</td><td>{{money $l.Amount}}</td></tr>
{{end}}</tbody>
<tfoot><tr><td colspan="5">Total</td><td>{{money .Total}}</td></tr></tfoot>
</table>
{{if .Terms}}<div class="terms"><strong>Terms &amp; Conditions</strong><ol>{{range .Terms}}<li>{{.}}</li>{{end}}</ol></div>{{end}}
</body>
</html>`))

// BuildQuoteHTML renders the quote document markup.
func BuildQuoteHTML(q Quote) (string, error) {
	var buf bytes.Buffer
	if err := quoteTemplate.Execute(&buf, q); err != nil {
		return "", fmt.Errorf("report: render quote %s: %w", q.Number, err)
	}
	return buf.String(), nil
}

// RenderQuotePDF builds the quote HTML and converts it to PDF.
func (c *Client) RenderQuotePDF(ctx context.Context, q Quote) ([]byte, error) {
	html, err := BuildQuoteHTML(q)
	if err != nil {
		return nil, err
	}
	return c.RenderHTML(ctx, html)
}
