package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/mapper"
	"github.com/erazemk/armory/internal/model"
)

// ListStaff returns all staff members.
func (g *Gateway) ListStaff(ctx context.Context) ([]model.Staff, error) {
	rows, err := getList[mapper.StaffRow](ctx, g.client, "/admin/staff")
	if err != nil {
		return nil, fmt.Errorf("listing staff: %w", err)
	}
	out := make([]model.Staff, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapper.MapStaff(r))
	}
	return out, nil
}

// UpdateStaff changes a staff member's profile.
func (g *Gateway) UpdateStaff(ctx context.Context, id string, in model.StaffInput) error {
	if err := requireID("staff", id); err != nil {
		return err
	}
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if _, err := backend.Put[any](ctx, g.client, "/admin/staff/"+escape(id), in); err != nil {
		return fmt.Errorf("updating staff: %w", err)
	}
	return nil
}

// BlockStaff prevents a staff member from signing in.
func (g *Gateway) BlockStaff(ctx context.Context, id string) error {
	return g.staffAction(ctx, id, "block")
}

// UnblockStaff lifts a block.
func (g *Gateway) UnblockStaff(ctx context.Context, id string) error {
	return g.staffAction(ctx, id, "unblock")
}

func (g *Gateway) staffAction(ctx context.Context, id, action string) error {
	if err := requireID("staff", id); err != nil {
		return err
	}
	r := g.client.Do(ctx, http.MethodPut, "/admin/staff/"+escape(id)+"/"+action, nil)
	if err := r.Err(); err != nil {
		return fmt.Errorf("%s staff: %w", action, err)
	}
	return nil
}

// InviteStaff sends an invitation email. Without an explicit redirect the
// invitee lands on the site's set-password page.
func (g *Gateway) InviteStaff(ctx context.Context, in model.InviteInput) error {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" {
		return errors.New("email required")
	}
	if in.RedirectTo == "" {
		in.RedirectTo = strings.TrimRight(g.siteURL, "/") + "/auth/set-password"
	}
	in.Profile.Role = strings.ToLower(strings.TrimSpace(in.Profile.Role))
	if _, err := backend.Post[any](ctx, g.client, "/admin/invite-user", in); err != nil {
		return fmt.Errorf("inviting staff: %w", err)
	}
	return nil
}
