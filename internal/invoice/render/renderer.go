package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	appconfig "github.com/MaverickDev-J/hrm/internal/config"
	"github.com/MaverickDev-J/hrm/internal/invoice/domain"
	"github.com/MaverickDev-J/hrm/internal/observability/metrics"
	"github.com/MaverickDev-J/hrm/internal/storage"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const gridWidth = 12

var (
	headerBg  = props.Color{Red: 45, Green: 62, Blue: 80}
	headerFg  = props.Color{Red: 255, Green: 255, Blue: 255}
	stripedBg = props.Color{Red: 240, Green: 242, Blue: 245}
	totalBg   = props.Color{Red: 225, Green: 231, Blue: 238}
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Store    storage.Store
	Document *appconfig.DocumentConfigHolder
	Metrics  *metrics.Metrics `optional:"true"`
}

// Renderer lays out an invoice snapshot as a PDF and writes it to the
// content store under the caller-chosen locator.
type Renderer struct {
	log      *zap.Logger
	store    storage.Store
	document *appconfig.DocumentConfigHolder
	metrics  *metrics.Metrics
}

func New(p Params) domain.Renderer {
	return &Renderer{
		log:      p.Log.Named("invoice.render"),
		store:    p.Store,
		document: p.Document,
		metrics:  p.Metrics,
	}
}

func (r *Renderer) Render(ctx context.Context, snapshot domain.Snapshot, locator string) error {
	start := time.Now()
	doc := r.document.Get()

	m := maroto.New(config.NewBuilder().
		WithLeftMargin(10).
		WithRightMargin(10).
		WithTopMargin(10).
		Build())

	r.addBanner(m, snapshot.Company.BannerPath)
	r.addHeader(m, snapshot)
	r.addBillTo(m, snapshot.Client)
	r.addLineTable(m, snapshot, doc)
	r.addSummary(m, snapshot.Totals, doc)
	r.addBankDetails(m, snapshot.Company)
	r.addTerms(m, doc)
	r.addSignature(m, snapshot.Company, doc)

	m.AddRow(12,
		text.NewCol(gridWidth, doc.ClosingNote, props.Text{
			Size:  8,
			Align: align.Center,
			Top:   6,
		}),
	)

	rendered, err := m.Generate()
	if err != nil {
		return fmt.Errorf("render invoice %s: %w", snapshot.InvoiceNumber, err)
	}

	if err := r.store.Write(locator, bytes.NewReader(rendered.GetBytes())); err != nil {
		return fmt.Errorf("store invoice artifact %s: %w", locator, err)
	}

	r.metrics.RecordRenderDuration(ctx, time.Since(start))
	r.metrics.RecordArtifactWritten(ctx)
	r.log.Debug("invoice rendered",
		zap.String("invoice_number", snapshot.InvoiceNumber),
		zap.String("locator", locator),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// addBanner places the full-width company banner when the locator
// resolves to a stored image. Missing images render nothing.
func (r *Renderer) addBanner(m core.Maroto, bannerPath string) {
	path, ok := r.imagePath(bannerPath)
	if !ok {
		return
	}
	m.AddRow(28, image.NewFromFileCol(gridWidth, path, props.Rect{
		Center:  true,
		Percent: 100,
	}))
}

// addHeader renders company identity on the left and invoice metadata
// on the right.
func (r *Renderer) addHeader(m core.Maroto, snapshot domain.Snapshot) {
	company := snapshot.Company

	left := col.New(7).Add(
		text.New(company.Name, props.Text{Size: 16, Style: fontstyle.Bold}),
	)
	top := 8.0
	if company.Tagline != "" {
		left.Add(text.New(company.Tagline, props.Text{Size: 9, Top: top}))
		top += 5
	}
	for _, line := range addressLines(company.Address, company.City, company.State, company.Pincode) {
		left.Add(text.New(line, props.Text{Size: 9, Top: top}))
		top += 5
	}
	if company.PAN != "" {
		left.Add(text.New("PAN: "+company.PAN, props.Text{Size: 9, Top: top}))
	}

	right := col.New(5).Add(
		text.New("TAX INVOICE", props.Text{Size: 13, Style: fontstyle.Bold, Align: align.Right}),
		text.New("Invoice No: "+snapshot.InvoiceNumber, props.Text{Size: 9, Top: 8, Align: align.Right}),
		text.New("Invoice Date: "+snapshot.InvoiceDate, props.Text{Size: 9, Top: 13, Align: align.Right}),
	)
	if snapshot.Client.State != "" {
		right.Add(text.New("Place of Supply: "+snapshot.Client.State, props.Text{Size: 9, Top: 18, Align: align.Right}))
	}

	m.AddRow(34, left, right)
}

func (r *Renderer) addBillTo(m core.Maroto, client domain.ClientBlock) {
	block := col.New(gridWidth).Add(
		text.New("Bill To", props.Text{Size: 10, Style: fontstyle.Bold}),
		text.New(client.Name, props.Text{Size: 10, Top: 6}),
	)
	top := 11.0
	for _, line := range addressLines(client.Address, client.City, client.State, client.Pincode) {
		block.Add(text.New(line, props.Text{Size: 9, Top: top}))
		top += 5
	}
	if client.GSTIN != "" {
		block.Add(text.New("GSTIN: "+client.GSTIN, props.Text{Size: 9, Top: top}))
		top += 5
	}
	if client.PAN != "" {
		block.Add(text.New("PAN: "+client.PAN, props.Text{Size: 9, Top: top}))
		top += 5
	}
	m.AddRow(top+4, block)
}

// addLineTable renders the candidate table: serial column plus one
// column per configured field, header styled and repeated by maroto on
// page breaks, alternating row shading, amount-like fields formatted as
// currency and right-aligned.
func (r *Renderer) addLineTable(m core.Maroto, snapshot domain.Snapshot, doc appconfig.DocumentConfig) {
	widths := columnWidths(snapshot.Columns)

	headerCols := make([]core.Col, 0, len(snapshot.Columns)+1)
	headerCols = append(headerCols, text.NewCol(1, "S.No", props.Text{
		Size: 9, Style: fontstyle.Bold, Color: &headerFg, Align: align.Center, Top: 1.5,
	}))
	for i, column := range snapshot.Columns {
		alignment := align.Left
		if isAmountField(column.FieldName) {
			alignment = align.Right
		}
		headerCols = append(headerCols, text.NewCol(widths[i], column.DisplayLabel, props.Text{
			Size: 9, Style: fontstyle.Bold, Color: &headerFg, Align: alignment, Top: 1.5,
		}))
	}
	m.AddRows(row.New(8).Add(headerCols...).WithStyle(&props.Cell{BackgroundColor: &headerBg}))

	for _, item := range snapshot.LineItems {
		cols := make([]core.Col, 0, len(snapshot.Columns)+1)
		cols = append(cols, text.NewCol(1, fmt.Sprintf("%d", item.Serial), props.Text{
			Size: 9, Align: align.Center, Top: 1.5,
		}))
		for i, column := range snapshot.Columns {
			value := item.Fields[column.FieldName]
			alignment := align.Left
			if isAmountField(column.FieldName) {
				alignment = align.Right
				value = formatCurrency(doc.CurrencySymbol, item.Fields[column.FieldName])
			}
			cols = append(cols, text.NewCol(widths[i], value, props.Text{
				Size: 9, Align: alignment, Top: 1.5,
			}))
		}

		line := row.New(7).Add(cols...)
		if item.Serial%2 == 0 {
			line.WithStyle(&props.Cell{BackgroundColor: &stripedBg})
		}
		m.AddRows(line)
	}
}

// addSummary renders subtotal, the tax lines that carry a non-zero
// amount, and an emphasized grand total.
func (r *Renderer) addSummary(m core.Maroto, totals domain.Totals, doc appconfig.DocumentConfig) {
	m.AddRow(6, col.New(gridWidth))

	r.summaryLine(m, "Subtotal", totals.Subtotal, doc, false)
	if totals.CGSTAmount > 0 {
		r.summaryLine(m, "CGST", totals.CGSTAmount, doc, false)
	}
	if totals.SGSTAmount > 0 {
		r.summaryLine(m, "SGST", totals.SGSTAmount, doc, false)
	}
	if totals.IGSTAmount > 0 {
		r.summaryLine(m, "IGST", totals.IGSTAmount, doc, false)
	}
	r.summaryLine(m, "Grand Total", totals.GrandTotal, doc, true)
}

func (r *Renderer) summaryLine(m core.Maroto, label string, amount float64, doc appconfig.DocumentConfig, emphasized bool) {
	style := fontstyle.Normal
	size := 9.0
	if emphasized {
		style = fontstyle.Bold
		size = 10
	}

	line := row.New(7).Add(
		col.New(7),
		text.NewCol(3, label, props.Text{Size: size, Style: style, Align: align.Right, Top: 1}),
		text.NewCol(2, fmt.Sprintf("%s %.2f", doc.CurrencySymbol, amount), props.Text{
			Size: size, Style: style, Align: align.Right, Top: 1,
		}),
	)
	if emphasized {
		line.WithStyle(&props.Cell{BackgroundColor: &totalBg})
	}
	m.AddRows(line)
}

// addBankDetails renders the fixed five-row payment table.
func (r *Renderer) addBankDetails(m core.Maroto, company domain.CompanyBlock) {
	m.AddRow(8, text.NewCol(gridWidth, "Payment Details", props.Text{
		Size: 10, Style: fontstyle.Bold, Top: 2,
	}))

	rows := [][2]string{
		{"Bank Name", company.BankName},
		{"Account Holder", company.AccountHolder},
		{"Account Number", company.AccountNumber},
		{"IFSC Code", company.IFSCCode},
		{"PAN", company.PAN},
	}
	for i, entry := range rows {
		line := row.New(6).Add(
			text.NewCol(4, entry[0], props.Text{Size: 9, Style: fontstyle.Bold, Top: 1}),
			text.NewCol(8, entry[1], props.Text{Size: 9, Top: 1}),
		)
		if i%2 == 1 {
			line.WithStyle(&props.Cell{BackgroundColor: &stripedBg})
		}
		m.AddRows(line)
	}
}

func (r *Renderer) addTerms(m core.Maroto, doc appconfig.DocumentConfig) {
	m.AddRow(9, text.NewCol(gridWidth, doc.TermsHeading, props.Text{
		Size: 10, Style: fontstyle.Bold, Top: 3,
	}))
	for _, line := range doc.TermsLines {
		m.AddRow(5, text.NewCol(gridWidth, "• "+line, props.Text{Size: 8, Top: 0.5}))
	}
}

// addSignature places the signature and stamp images, when present,
// above the signatory label.
func (r *Renderer) addSignature(m core.Maroto, company domain.CompanyBlock, doc appconfig.DocumentConfig) {
	cols := []core.Col{col.New(6)}

	if path, ok := r.imagePath(company.SignaturePath); ok {
		cols = append(cols, image.NewFromFileCol(3, path, props.Rect{Center: true, Percent: 80}))
	} else {
		cols = append(cols, col.New(3))
	}
	if path, ok := r.imagePath(company.StampPath); ok {
		cols = append(cols, image.NewFromFileCol(3, path, props.Rect{Center: true, Percent: 80}))
	} else {
		cols = append(cols, col.New(3))
	}
	m.AddRow(22, cols...)

	m.AddRow(6,
		col.New(6),
		text.NewCol(6, doc.SignatureLabel, props.Text{Size: 9, Align: align.Center}),
	)
}

// imagePath resolves a stored image locator to a filesystem path,
// reporting false for empty, unresolvable or missing locators.
func (r *Renderer) imagePath(locator string) (string, bool) {
	if locator == "" || !r.store.Exists(locator) {
		return "", false
	}
	path, err := r.store.Resolve(locator)
	if err != nil {
		return "", false
	}
	return path, true
}

// columnWidths distributes the grid columns left after the serial
// column across the configured fields, honoring relative widths when
// given.
func columnWidths(columns []domain.ColumnSpec) []int {
	available := gridWidth - 1
	if len(columns) == 0 {
		return nil
	}

	totalWeight := 0
	for _, column := range columns {
		if column.Width > 0 {
			totalWeight += column.Width
		} else {
			totalWeight++
		}
	}

	widths := make([]int, len(columns))
	used := 0
	for i, column := range columns {
		weight := column.Width
		if weight <= 0 {
			weight = 1
		}
		w := available * weight / totalWeight
		if w < 1 {
			w = 1
		}
		widths[i] = w
		used += w
	}
	// Give rounding leftovers to the last column.
	if used < available {
		widths[len(widths)-1] += available - used
	}
	// Bumping zero-floor columns to one unit can oversubscribe the grid
	// when weights are skewed; shave the widest columns until it fits.
	for used > available {
		widest := 0
		for i := 1; i < len(widths); i++ {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= 1 {
			break
		}
		widths[widest]--
		used--
	}
	return widths
}

func isAmountField(name string) bool {
	return strings.Contains(strings.ToLower(name), "amount")
}

// formatCurrency renders a raw field value as a two-decimal currency
// string, leaving non-numeric values untouched.
func formatCurrency(symbol, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var value float64
	if _, err := fmt.Sscanf(raw, "%f", &value); err != nil {
		return raw
	}
	return fmt.Sprintf("%s %.2f", symbol, value)
}

func addressLines(address, city, state, pincode string) []string {
	var lines []string
	if address != "" {
		lines = append(lines, address)
	}
	locality := make([]string, 0, 3)
	for _, part := range []string{city, state, pincode} {
		if part != "" {
			locality = append(locality, part)
		}
	}
	if len(locality) > 0 {
		lines = append(lines, strings.Join(locality, ", "))
	}
	return lines
}
