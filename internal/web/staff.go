package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/validate"
)

type staffData struct {
	PageData
	Staff  []model.Staff
	Invite validate.InviteForm
	Failed bool
}

// StaffPage handles GET /staff (admin only).
func (s *Server) StaffPage(w http.ResponseWriter, r *http.Request) {
	s.renderStaff(w, r, http.StatusOK, s.page(r, "Staff"), validate.InviteForm{Role: model.RoleStaff})
}

func (s *Server) renderStaff(w http.ResponseWriter, r *http.Request, status int, pd PageData, invite validate.InviteForm) {
	staff, err := gw(r).ListStaff(r.Context())
	if err != nil {
		slog.Error("failed to list staff", "error", err)
		if pd.Error == "" {
			pd.Error = errorMessage(err)
		}
	}
	s.Templates.RenderStatus(w, status, "staff.html", &staffData{
		PageData: pd,
		Staff:    staff,
		Invite:   invite,
		Failed:   err != nil,
	})
}

// StaffInviteSubmit handles POST /staff/invite (admin only).
func (s *Server) StaffInviteSubmit(w http.ResponseWriter, r *http.Request) {
	var form validate.InviteForm
	if !bindForm(w, r, &form) {
		return
	}

	in, err := form.Input()
	if errs, ok := validate.AsErrors(err); ok {
		pd := s.page(r, "Staff")
		pd.Fields = errs
		pd.Error = "Please correct the highlighted fields."
		s.renderStaff(w, r, http.StatusBadRequest, pd, form)
		return
	}

	if err := gw(r).InviteStaff(r.Context(), in); err != nil {
		slog.Error("failed to invite staff", "email", in.Email, "error", err)
		redirectErr(w, r, "/staff", err)
		return
	}

	slog.Info("staff invited", "user", claims(r).Email, "email", in.Email, "role", in.Profile.Role)
	redirectOK(w, r, "/staff", "Invitation sent to "+in.Email+".")
}

// StaffUpdateSubmit handles POST /staff/{id} (admin only).
func (s *Server) StaffUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var form validate.StaffForm
	if !bindForm(w, r, &form) {
		return
	}

	in, err := form.Input()
	if err != nil {
		redirectErr(w, r, "/staff", err)
		return
	}
	if err := gw(r).UpdateStaff(r.Context(), id, in); err != nil {
		slog.Error("failed to update staff", "staff", id, "error", err)
		redirectErr(w, r, "/staff", err)
		return
	}

	slog.Info("staff updated", "user", claims(r).Email, "staff", id, "role", in.Role)
	redirectOK(w, r, "/staff", "Staff member updated.")
}

// StaffBlockSubmit handles POST /staff/{id}/block (admin only).
func (s *Server) StaffBlockSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := gw(r).BlockStaff(r.Context(), id); err != nil {
		slog.Error("failed to block staff", "staff", id, "error", err)
		redirectErr(w, r, "/staff", err)
		return
	}
	slog.Info("staff blocked", "user", claims(r).Email, "staff", id)
	redirectOK(w, r, "/staff", "Staff member blocked.")
}

// StaffUnblockSubmit handles POST /staff/{id}/unblock (admin only).
func (s *Server) StaffUnblockSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := gw(r).UnblockStaff(r.Context(), id); err != nil {
		slog.Error("failed to unblock staff", "staff", id, "error", err)
		redirectErr(w, r, "/staff", err)
		return
	}
	slog.Info("staff unblocked", "user", claims(r).Email, "staff", id)
	redirectOK(w, r, "/staff", "Staff member unblocked.")
}
