package client

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"freight-billing-backend/auth"
	"freight-billing-backend/billing"
	"freight-billing-backend/models"
	"freight-billing-backend/reports"
	"freight-billing-backend/store"

	"github.com/gofiber/fiber/v2"
)

const DefaultTimeout = 15 * time.Second

// Config is passed explicitly at construction; the client reads nothing from
// the environment.
type Config struct {
	BaseURL string // e.g. http://localhost:4000/api
	Token   string
	Timeout time.Duration
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == fiber.StatusUnauthorized
}

type Client struct {
	cfg Config
}

func New(cfg Config) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: invalid base url %q", cfg.BaseURL)
	}
	cfg.BaseURL = u.String()
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{cfg: cfg}, nil
}

// WithToken returns a copy of the client that sends token.
func (c *Client) WithToken(token string) *Client {
	cfg := c.cfg
	cfg.Token = token
	return &Client{cfg: cfg}
}

// SignIn exchanges the access code and returns a client carrying the token.
func (c *Client) SignIn(accessCode string) (*Client, auth.Token, error) {
	var tok auth.Token
	err := c.do(fiber.MethodPost, "/auth/sign-in", nil, map[string]string{"accessCode": accessCode}, nil, &tok)
	if err != nil {
		return nil, auth.Token{}, err
	}
	return c.WithToken(tok.Token), tok, nil
}

func (c *Client) Health() error {
	return c.do(fiber.MethodGet, "/health", nil, nil, nil, nil)
}

// CreateInvoice posts the draft. A non-empty idempotencyKey makes retries safe.
func (c *Client) CreateInvoice(draft billing.InvoiceDraft, idempotencyKey string) (*models.Invoice, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	var inv models.Invoice
	if err := c.do(fiber.MethodPost, "/invoices", nil, draft, headers, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (c *Client) ListInvoices(page, limit int) (*store.Page, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var p store.Page
	if err := c.do(fiber.MethodGet, "/invoices", q, nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetInvoice(id string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := c.do(fiber.MethodGet, "/invoices/"+url.PathEscape(id), nil, nil, nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// InvoicePDF downloads the document bytes.
func (c *Client) InvoicePDF(id string, inline bool) ([]byte, error) {
	var q url.Values
	if inline {
		q = url.Values{"inline": {"1"}}
	}
	var raw []byte
	if err := c.do(fiber.MethodGet, "/invoices/"+url.PathEscape(id)+"/pdf", q, nil, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) Summary() (reports.Summary, error) {
	var s reports.Summary
	err := c.do(fiber.MethodGet, "/dashboard/summary", nil, nil, nil, &s)
	return s, err
}

// Daily fetches one day's report; an empty date means today on the server.
func (c *Client) Daily(date string) (reports.DailyReport, error) {
	var q url.Values
	if date != "" {
		q = url.Values{"date": {date}}
	}
	var r reports.DailyReport
	err := c.do(fiber.MethodGet, "/dashboard/daily", q, nil, nil, &r)
	return r, err
}

// Totals sources for DashboardTotals.
const (
	SourceOverall = "overall"
	SourceDaily   = "daily"
)

// DashboardTotals returns the overall summary, or the day's totals when the
// summary call fails. Authentication failures are not masked.
func (c *Client) DashboardTotals(date string) (reports.Summary, string, error) {
	s, err := c.Summary()
	if err == nil {
		return s, SourceOverall, nil
	}
	if IsUnauthorized(err) {
		return reports.Summary{}, "", err
	}
	daily, derr := c.Daily(date)
	if derr != nil {
		return reports.Summary{}, "", fmt.Errorf("summary: %v; daily: %w", err, derr)
	}
	return daily.Totals, SourceDaily, nil
}

// CacheKey identifies a response for consumer-side caching: endpoint,
// sorted params and the identity of the credential in use.
func (c *Client) CacheKey(endpoint string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(endpoint)
	for _, k := range keys {
		vals := append([]string(nil), params[k]...)
		sort.Strings(vals)
		b.WriteString("|" + k + "=" + strings.Join(vals, ","))
	}
	ident := "anonymous"
	if c.cfg.Token != "" {
		sum := sha256.Sum256([]byte(c.cfg.Token))
		ident = hex.EncodeToString(sum[:8])
	}
	return ident + "|" + b.String()
}

// do sends one request. out may be nil, a *[]byte for raw bodies, or a JSON target.
func (c *Client) do(method, path string, q url.Values, in any, headers map[string]string, out any) error {
	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	target := c.cfg.BaseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req.SetRequestURI(target)
	a.Timeout(c.cfg.Timeout)
	if c.cfg.Token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.cfg.Token)
	}
	for k, v := range headers {
		a.Set(k, v)
	}
	if in != nil {
		a.JSON(in)
	}

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("client: %s %s: %w", method, path, errors.Join(errs...))
	}

	if code < 200 || code >= 300 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &msg)
		if msg.Message == "" {
			msg.Message = strings.TrimSpace(string(body))
		}
		return &APIError{Status: code, Message: msg.Message}
	}

	switch dst := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*dst = append((*dst)[:0], body...)
		return nil
	default:
		if err := json.Unmarshal(body, dst); err != nil {
			return fmt.Errorf("client: decode %s: %w", path, err)
		}
		return nil
	}
}
