package api

import (
	"net/http"

	"github.com/erazemk/armory/internal/session"
)

// StaffHandler exposes the staff directory to administrators.
type StaffHandler struct{}

// List handles GET /api/staff.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	g := session.FromContext(r.Context()).Gateway
	staff, err := g.ListStaff(r.Context())
	if err != nil {
		jsonFailure(w, err)
		return
	}
	jsonOK(w, staff)
}
