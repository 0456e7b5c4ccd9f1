package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/finance"
	"github.com/erazemk/armory/internal/gateway"
	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/validate"
)

func pageNum(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func loanPath(id string) string {
	return "/loans/" + url.PathEscape(id)
}

// LoansPage handles GET /loans. A search field switches to the aggregated
// search; a status with a date order uses the filter endpoint.
func (s *Server) LoansPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	g := gw(r)

	criteria := gateway.Criteria{
		FullName:      q.Get("full_name"),
		IDNumber:      q.Get("id_number"),
		QuoteNumber:   q.Get("quote_number"),
		InvoiceNumber: q.Get("invoice_number"),
		SerialNumber:  q.Get("serial_number"),
		StockNumber:   q.Get("stock_number"),
	}
	var status model.LoanStatus
	if st := q.Get("status"); st != "" {
		status = model.ParseLoanStatus(st)
	}
	order := q.Get("order")

	var (
		page backend.Page[model.LoanData]
		err  error
	)
	switch {
	case criteria.Term() != "":
		var loans []model.LoanData
		loans, err = g.SearchLoans(r.Context(), criteria)
		page = backend.Page[model.LoanData]{
			Data:       loans,
			Pagination: backend.Pagination{Page: 1, Limit: len(loans), Total: len(loans), TotalPages: 1},
		}
	case status != "" && order != "":
		page, err = g.FilterLoans(r.Context(), gateway.FilterQuery{
			Status: status, Page: pageNum(r), DateOrder: order,
		})
	default:
		page, err = g.ListLoans(r.Context(), gateway.LoanQuery{
			Page: pageNum(r), Status: status, CustomerSearch: q.Get("search"),
		})
	}

	pd := s.page(r, "Loans")
	if err != nil {
		slog.Error("failed to list loans", "error", err)
		pd.Error = errorMessage(err)
	}

	s.Templates.Render(w, "loans.html", &struct {
		PageData
		Loans      []model.LoanData
		Pagination backend.Pagination
		Status     model.LoanStatus
		Order      string
		Search     string
		Criteria   gateway.Criteria
		Failed     bool
	}{
		PageData:   pd,
		Loans:      page.Data,
		Pagination: page.Pagination,
		Status:     status,
		Order:      order,
		Search:     q.Get("search"),
		Criteria:   criteria,
		Failed:     err != nil,
	})
}

// LoanDetailPage handles GET /loans/{id}.
func (s *Server) LoanDetailPage(w http.ResponseWriter, r *http.Request) {
	g := gw(r)
	loan, err := g.GetLoan(r.Context(), r.PathValue("id"))
	if backend.IsNotFound(err) {
		http.Error(w, "loan not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to get loan", "loan", r.PathValue("id"), "error", err)
		redirectErr(w, r, "/loans", err)
		return
	}

	pd := s.page(r, "Loan "+loan.QuoteNumber)

	payments, paymentsErr := g.LoanPayments(r.Context(), loan.LoanID)
	if paymentsErr != nil {
		slog.Error("failed to list loan payments", "loan", loan.LoanID, "error", paymentsErr)
	}
	assessment, err := g.AssessLoan(r.Context(), loan)
	if err != nil {
		slog.Warn("failed to assess loan", "loan", loan.LoanID, "error", err)
	}

	paid := finance.ProgressToPaidTime(loan.LoanProgress, loan.LoanDuration)
	remainingMonths, remainingDays := paid.Remaining()

	s.Templates.Render(w, "loan_detail.html", &struct {
		PageData
		Loan            model.LoanData
		Payments        []model.Payment
		PaymentsFailed  bool
		Assessment      finance.Assessment
		PaidTime        finance.PaidTime
		RemainingMonths int
		RemainingDays   int
		Next            []model.LoanStatus
		Settlement      finance.Settlement
		Today           string
	}{
		PageData:        pd,
		Loan:            loan,
		Payments:        payments,
		PaymentsFailed:  paymentsErr != nil,
		Assessment:      assessment,
		PaidTime:        paid,
		RemainingMonths: remainingMonths,
		RemainingDays:   remainingDays,
		Next:            loan.Status.Next(),
		Settlement:      g.Rules().CancellationSettlement(loan.DepositAmount),
		Today:           g.Now().Format("2006-01-02"),
	})
}

type loanNewData struct {
	PageData
	Form    validate.LoanForm
	Clients []model.ClientData
}

func (s *Server) renderLoanNew(w http.ResponseWriter, r *http.Request, status int, pd PageData, form validate.LoanForm) {
	clients, err := gw(r).ListClients(r.Context(), gateway.ClientQuery{Page: 1})
	if err != nil {
		slog.Warn("failed to list clients for loan form", "error", err)
	}
	s.Templates.RenderStatus(w, status, "loan_new.html", &loanNewData{
		PageData: pd,
		Form:     form,
		Clients:  clients.Data,
	})
}

// LoanNewPage handles GET /loans/new.
func (s *Server) LoanNewPage(w http.ResponseWriter, r *http.Request) {
	form := validate.LoanForm{
		StartDate:  gw(r).Now().Format("2006-01-02"),
		CustomerID: r.URL.Query().Get("customer_id"),
	}
	if form.CustomerID != "" {
		if c, err := gw(r).GetClient(r.Context(), form.CustomerID); err == nil {
			form.FullName = c.FullName
			form.Email = c.Email
			form.PhoneNumber = c.PhoneNumber
			form.IDNumber = c.IDNumber
		}
	}
	s.renderLoanNew(w, r, http.StatusOK, s.page(r, "New loan"), form)
}

// LoanCreateSubmit handles POST /loans/new.
func (s *Server) LoanCreateSubmit(w http.ResponseWriter, r *http.Request) {
	var form validate.LoanForm
	if !bindForm(w, r, &form) {
		return
	}
	if form.LoanAmount == "" {
		form.LoanAmount = finance.LoanAmount(form.FirearmCost, form.DepositAmount)
	}

	pd := s.page(r, "New loan")
	in, err := form.Input()
	if errs, ok := validate.AsErrors(err); ok {
		pd.Fields = errs
		pd.Error = "Please correct the highlighted fields."
		s.renderLoanNew(w, r, http.StatusBadRequest, pd, form)
		return
	}

	id, err := gw(r).CreateLoan(r.Context(), in)
	if err != nil {
		slog.Error("failed to create loan", "user", claims(r).Email, "error", err)
		pd.Error = errorMessage(err)
		s.renderLoanNew(w, r, http.StatusBadGateway, pd, form)
		return
	}

	slog.Info("loan created", "user", claims(r).Email, "loan", id, "customer", in.CustomerID, "amount", in.LoanAmount.String())
	if id == "" {
		redirectOK(w, r, "/loans", "Loan created.")
		return
	}
	redirectOK(w, r, loanPath(id), "Loan created.")
}

// LoanPaymentSubmit handles POST /loans/{id}/payment.
func (s *Server) LoanPaymentSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var form validate.PaymentForm
	if !bindForm(w, r, &form) {
		return
	}
	form.LoanID = id

	in, err := form.Input()
	if err != nil {
		redirectErr(w, r, loanPath(id), err)
		return
	}
	if err := gw(r).RecordLoanPayment(r.Context(), in); err != nil {
		slog.Error("failed to record payment", "loan", id, "error", err)
		redirectErr(w, r, loanPath(id), err)
		return
	}

	slog.Info("payment recorded", "user", claims(r).Email, "loan", id, "amount", in.Amount.String(), "type", in.Type)
	redirectOK(w, r, loanPath(id), "Payment of "+money(in.Amount)+" recorded.")
}

// LoanStatusSubmit handles POST /loans/{id}/status.
func (s *Server) LoanStatusSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	to := model.LoanStatus(r.FormValue("status"))
	if !to.Valid() {
		redirectErr(w, r, loanPath(id), fmt.Errorf("unknown status %q", to))
		return
	}

	g := gw(r)
	loan, err := g.GetLoan(r.Context(), id)
	if err != nil {
		redirectErr(w, r, loanPath(id), err)
		return
	}
	next, err := g.UpdateLoanStatus(r.Context(), id, loan.Status, to)
	if err != nil {
		slog.Warn("failed to update loan status", "loan", id, "from", loan.Status, "to", to, "error", err)
		redirectErr(w, r, loanPath(id), err)
		return
	}

	slog.Info("loan status changed", "user", claims(r).Email, "loan", id, "from", loan.Status, "to", next)
	redirectOK(w, r, loanPath(id), "Loan is now "+string(next)+".")
}

// LoanCancelSubmit handles POST /loans/{id}/cancel.
func (s *Server) LoanCancelSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	g := gw(r)
	loan, err := g.GetLoan(r.Context(), id)
	if err != nil {
		redirectErr(w, r, loanPath(id), err)
		return
	}
	settlement, err := g.CancelLoan(r.Context(), loan)
	if err != nil {
		slog.Warn("failed to cancel loan", "loan", id, "error", err)
		redirectErr(w, r, loanPath(id), err)
		return
	}

	slog.Info("loan cancelled", "user", claims(r).Email, "loan", id,
		"penalty", settlement.Penalty.String(), "refund", settlement.Refund.String())
	redirectOK(w, r, loanPath(id), fmt.Sprintf("Loan cancelled. Penalty %s, refund %s.",
		money(settlement.Penalty), money(settlement.Refund)))
}

// LoanAssessSubmit handles POST /loans/{id}/assess. It applies the status
// suggested by the lifecycle rules, if any.
func (s *Server) LoanAssessSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	g := gw(r)
	loan, err := g.GetLoan(r.Context(), id)
	if err != nil {
		redirectErr(w, r, loanPath(id), err)
		return
	}
	a, err := g.AssessLoan(r.Context(), loan)
	if err != nil {
		redirectErr(w, r, loanPath(id), err)
		return
	}
	if !a.Changed() {
		redirectOK(w, r, loanPath(id), "No status change needed.")
		return
	}

	next, err := g.UpdateLoanStatus(r.Context(), id, a.Current, a.Suggested)
	if err != nil {
		redirectErr(w, r, loanPath(id), err)
		return
	}
	slog.Info("loan status assessed", "user", claims(r).Email, "loan", id, "from", a.Current, "to", next, "reason", a.Reason)
	redirectOK(w, r, loanPath(id), fmt.Sprintf("Loan is now %s: %s.", next, a.Reason))
}
