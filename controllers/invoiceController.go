package controllers

import (
	"context"
	"time"

	"freight-billing-backend/billing"
	"freight-billing-backend/middlewares"
	"freight-billing-backend/models"
	"freight-billing-backend/pdf"
	"freight-billing-backend/store"
	"freight-billing-backend/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// InvoiceStore is what the invoice endpoints need from the store.
type InvoiceStore interface {
	Create(ctx context.Context, draft billing.InvoiceDraft) (*models.Invoice, error)
	ListPage(ctx context.Context, page, limit int) (*store.Page, error)
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
}

// createInvoiceRequest is the create body. Rate and trucks are pointers so an
// omitted or null value is told apart from zero.
type createInvoiceRequest struct {
	CompanyName    string   `json:"companyName" validate:"required"`
	CompanyPhone   string   `json:"companyPhone"`
	CompanyAddress string   `json:"companyAddress"`
	CompanyGst     string   `json:"companyGst"`
	RatePerTon     *float64 `json:"ratePerTon" validate:"required,gte=0"`
	Trucks         *int     `json:"trucks" validate:"required,gte=1"`
	Notes          string   `json:"notes"`
}

func (r createInvoiceRequest) draft() billing.InvoiceDraft {
	return billing.InvoiceDraft{
		CompanyName:    r.CompanyName,
		CompanyPhone:   r.CompanyPhone,
		CompanyAddress: r.CompanyAddress,
		CompanyGst:     r.CompanyGst,
		RatePerTon:     *r.RatePerTon,
		Trucks:         *r.Trucks,
		Notes:          r.Notes,
	}
}

type InvoiceController struct {
	Store    InvoiceStore
	Renderer *pdf.Renderer
}

func (ic *InvoiceController) CreateInvoice(c *fiber.Ctx) error {
	var req createInvoiceRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	invoice, err := ic.Store.Create(c.UserContext(), req.draft())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// GetInvoices lists invoices newest first. Limit defaults to 20 and is capped at 100.
func (ic *InvoiceController) GetInvoices(c *fiber.Ctx) error {
	page, ok := utils.ParseIntDefault(c.Query("page"), 1)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "page must be an integer")
	}
	limit, ok := utils.ParseIntDefault(c.Query("limit"), DefaultPageLimit)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be an integer")
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	result, err := ic.Store.ListPage(c.UserContext(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (ic *InvoiceController) GetInvoice(c *fiber.Ctx) error {
	invoice, err := ic.Store.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(invoice)
}

// GetInvoicePDF streams the invoice document; ?inline=1 opens it in the browser.
func (ic *InvoiceController) GetInvoicePDF(c *fiber.Ctx) error {
	invoice, err := ic.Store.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	doc, err := ic.Renderer.Render(invoice)
	if err != nil {
		return err
	}

	disposition := "attachment"
	if c.QueryBool("inline") {
		disposition = "inline"
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, disposition+`; filename="`+pdf.Filename(invoice)+`"`)
	c.Set(fiber.HeaderLastModified, invoice.CreatedAt.UTC().Format(time.RFC1123))
	return c.Send(doc)
}
