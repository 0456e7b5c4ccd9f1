package model

import (
	"fmt"
	"strings"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

// Loan statuses.
const (
	StatusGrace          LoanStatus = "Grace"
	StatusPendingPayment LoanStatus = "Pending Payment"
	StatusPaid           LoanStatus = "Paid"
	StatusCancelled      LoanStatus = "Cancelled"
	StatusPenalty        LoanStatus = "Penalty"
)

// LoanStatuses lists every status in display order.
var LoanStatuses = []LoanStatus{
	StatusGrace,
	StatusPendingPayment,
	StatusPenalty,
	StatusPaid,
	StatusCancelled,
}

// transitions maps each status to the statuses it may move to.
var transitions = map[LoanStatus][]LoanStatus{
	StatusGrace:          {StatusPendingPayment, StatusCancelled, StatusPenalty},
	StatusPendingPayment: {StatusPaid, StatusCancelled, StatusPenalty},
	StatusPenalty:        {StatusPaid, StatusCancelled},
	StatusPaid:           nil,
	StatusCancelled:      nil,
}

// ParseLoanStatus narrows a backend value to a known status. Matching is
// case-insensitive; unknown or empty values fall back to Pending Payment.
func ParseLoanStatus(s string) LoanStatus {
	s = strings.TrimSpace(s)
	for _, st := range LoanStatuses {
		if strings.EqualFold(s, string(st)) {
			return st
		}
	}
	return StatusPendingPayment
}

// Valid reports whether s is one of the known statuses.
func (s LoanStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transitions are allowed from s.
func (s LoanStatus) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether a loan may move from s to next.
func (s LoanStatus) CanTransition(next LoanStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Next returns the statuses reachable from s.
func (s LoanStatus) Next() []LoanStatus {
	return append([]LoanStatus(nil), transitions[s]...)
}

// TransitionError is returned when a status change is not allowed.
type TransitionError struct {
	From LoanStatus
	To   LoanStatus
}

func (e *TransitionError) Error() string {
	if !e.From.Valid() || !e.To.Valid() {
		return fmt.Sprintf("unknown loan status transition %q -> %q", e.From, e.To)
	}
	if e.From.Terminal() {
		return fmt.Sprintf("loan is %s and can no longer change status", e.From)
	}
	return fmt.Sprintf("loan cannot move from %s to %s", e.From, e.To)
}

// Transition validates a status change and returns the new status.
func Transition(from, to LoanStatus) (LoanStatus, error) {
	if !from.CanTransition(to) {
		return from, &TransitionError{From: from, To: to}
	}
	return to, nil
}
