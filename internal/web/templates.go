package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/erazemk/armory/internal/auth"
	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/session"
	"github.com/erazemk/armory/internal/validate"
	webembed "github.com/erazemk/armory/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

var printer = message.NewPrinter(language.English)

// money formats an amount in rand with two decimals and digit grouping.
func money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("%v %v", currency.NarrowSymbol(currency.ZAR), number.Decimal(f, number.Scale(2)))
}

func date(t any) string {
	switch v := t.(type) {
	case time.Time:
		if v.IsZero() {
			return "-"
		}
		return v.Format("2006-01-02")
	case *time.Time:
		if v == nil || v.IsZero() {
			return "-"
		}
		return v.Format("2006-01-02")
	case string:
		if v == "" {
			return "-"
		}
		return v
	}
	return "-"
}

func ago(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return humanize.Time(*t)
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"roleAtLeast": model.RoleAtLeast,
		"roleName": func(role string) string {
			switch role {
			case model.RoleAdmin:
				return "Administrator"
			case model.RoleManager:
				return "Manager"
			case model.RoleStaff:
				return "Staff"
			default:
				return role
			}
		},
		"statusClass": func(s model.LoanStatus) string {
			return "status-" + strings.ToLower(strings.ReplaceAll(string(s), " ", "-"))
		},
		"money":    money,
		"date":     date,
		"ago":      ago,
		"bytes":    func(n int) string { return humanize.IBytes(uint64(n)) },
		"count":    func(n int) string { return printer.Sprint(number.Decimal(n)) },
		"statuses": func() []model.LoanStatus { return model.LoanStatuses },
		"roles":    func() []string { return model.Roles },
		"paymentTypes": func() []model.PaymentType {
			return []model.PaymentType{model.PaymentEFT, model.PaymentCash, model.PaymentCard}
		},
		"fieldError": func(errs validate.Errors, field string) string {
			return errs.Field(field)
		},
		"add": func(a, b int) int { return a + b },
	}
}

var pages = []string{
	"login.html",
	"set_password.html",
	"dashboard.html",
	"loans.html",
	"loan_detail.html",
	"loan_new.html",
	"clients.html",
	"client_detail.html",
	"firearms.html",
	"firearm_detail.html",
	"storage.html",
	"staff.html",
	"settings.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a template with an explicit status code.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	User    *auth.Claims
	Error   string
	Success string
	Fields  validate.Errors
}

// Server holds all dependencies for page handlers.
type Server struct {
	Sessions  *session.Manager
	Templates *Templates
	Secure    bool
}

// page builds the base data for the signed-in user, picking up a flash
// message left by a redirect.
func (s *Server) page(r *http.Request, title string) PageData {
	pd := PageData{Title: title}
	if sess := session.FromContext(r.Context()); sess != nil {
		pd.User = sess.Claims
	}
	q := r.URL.Query()
	pd.Success = q.Get("ok")
	pd.Error = q.Get("err")
	return pd
}
