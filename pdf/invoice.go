package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"freight-billing-backend/billing"
	"freight-billing-backend/models"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
)

const (
	DefaultIssuer   = "Freight Billing"
	DefaultCurrency = "INR"

	pageWidth = 190.0 // A4 minus 10mm margins
	lineH     = 7.0
)

// Renderer turns a stored invoice into a single-page A4 PDF. Output only
// depends on the invoice and the renderer settings.
type Renderer struct {
	Issuer   string
	Currency string
	Location *time.Location
}

func NewRenderer(issuer, currency string, loc *time.Location) *Renderer {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{Issuer: issuer, Currency: currency, Location: loc}
}

// Filename is the download name used for an invoice document.
func Filename(inv *models.Invoice) string {
	return "Invoice_" + inv.InvoiceNumber + ".pdf"
}

func (r *Renderer) Render(inv *models.Invoice) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.RenderTo(&buf, inv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) RenderTo(w io.Writer, inv *models.Invoice) error {
	if inv == nil {
		return fmt.Errorf("%w: nil invoice", billing.ErrRenderFailed)
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetCatalogSort(true)
	doc.SetCreationDate(inv.CreatedAt.UTC())
	doc.SetModificationDate(inv.CreatedAt.UTC())
	doc.SetTitle("Invoice "+inv.InvoiceNumber, true)
	doc.SetCreator(r.Issuer, true)
	doc.SetMargins(10, 12, 10)
	doc.SetAutoPageBreak(true, 15)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()
	r.header(doc, tr, inv)
	r.billTo(doc, tr, inv)
	r.lineItem(doc, tr, inv)
	r.notes(doc, tr, inv)

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("%w: %v", billing.ErrRenderFailed, err)
	}
	return nil
}

func (r *Renderer) header(doc *gofpdf.Fpdf, tr func(string) string, inv *models.Invoice) {
	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(pageWidth/2, 10, tr(r.Issuer), "", 0, "L", false, 0, "")
	doc.CellFormat(pageWidth/2, 10, "INVOICE", "", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(pageWidth, 6, "Invoice No: "+inv.InvoiceNumber, "", 1, "R", false, 0, "")
	doc.CellFormat(pageWidth, 6, "Date: "+inv.CreatedAt.In(r.Location).Format("02 Jan 2006"), "", 1, "R", false, 0, "")

	y := doc.GetY() + 2
	doc.SetDrawColor(120, 120, 120)
	doc.Line(10, y, 10+pageWidth, y)
	doc.Ln(6)
}

func (r *Renderer) billTo(doc *gofpdf.Fpdf, tr func(string) string, inv *models.Invoice) {
	doc.SetFont("Helvetica", "B", 11)
	doc.Cell(pageWidth, lineH, "Bill To")
	doc.Ln(lineH)

	doc.SetFont("Helvetica", "", 10)
	doc.Cell(pageWidth, 6, tr(inv.CompanyName))
	doc.Ln(6)
	if inv.CompanyPhone != "" {
		doc.Cell(pageWidth, 6, "Phone: "+tr(inv.CompanyPhone))
		doc.Ln(6)
	}
	if inv.CompanyAddress != "" {
		doc.MultiCell(pageWidth, 6, tr(inv.CompanyAddress), "", "L", false)
	}
	if inv.CompanyGst != "" {
		doc.Cell(pageWidth, 6, "GSTIN: "+tr(inv.CompanyGst))
		doc.Ln(6)
	}
	doc.Ln(4)
}

func (r *Renderer) lineItem(doc *gofpdf.Fpdf, tr func(string) string, inv *models.Invoice) {
	cols := []float64{70, 45, 30, 45}
	heads := []string{"Description", "Rate per ton (" + r.Currency + ")", "Trucks", "Amount (" + r.Currency + ")"}

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(235, 235, 235)
	for i, h := range heads {
		align := "R"
		if i == 0 {
			align = "L"
		}
		doc.CellFormat(cols[i], 8, tr(h), "1", 0, align, true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(cols[0], 8, "Freight charges", "1", 0, "L", false, 0, "")
	doc.CellFormat(cols[1], 8, money(inv.RatePerTon), "1", 0, "R", false, 0, "")
	doc.CellFormat(cols[2], 8, strconv.Itoa(inv.Trucks), "1", 0, "R", false, 0, "")
	doc.CellFormat(cols[3], 8, money(inv.Total), "1", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(cols[0]+cols[1]+cols[2], 9, "Total", "1", 0, "R", false, 0, "")
	doc.CellFormat(cols[3], 9, r.Currency+" "+money(inv.Total), "1", 1, "R", false, 0, "")
	doc.Ln(6)
}

func (r *Renderer) notes(doc *gofpdf.Fpdf, tr func(string) string, inv *models.Invoice) {
	if inv.Notes == "" {
		return
	}
	doc.SetFont("Helvetica", "B", 10)
	doc.Cell(pageWidth, 6, "Notes")
	doc.Ln(6)
	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(pageWidth, 5, tr(inv.Notes), "", "L", false)
}

// money formats an amount with two decimals and no grouping.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
