package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/imaging"
	"github.com/erazemk/armory/internal/mapper"
	"github.com/erazemk/armory/internal/model"
)

// GetSettings returns the company settings.
func (g *Gateway) GetSettings(ctx context.Context) (model.Settings, error) {
	s, err := backend.Get[model.Settings](ctx, g.client, "/admin/settings")
	if err != nil {
		return model.Settings{}, fmt.Errorf("getting settings: %w", err)
	}
	return s, nil
}

// SaveSettings stores the company settings and returns the stored record.
func (g *Gateway) SaveSettings(ctx context.Context, s model.Settings) (model.Settings, error) {
	out, err := backend.Post[model.Settings](ctx, g.client, "/admin/settings", s)
	if err != nil {
		return model.Settings{}, fmt.Errorf("saving settings: %w", err)
	}
	return out, nil
}

type uploaded struct {
	URL       mapper.Text `json:"url"`
	PublicURL mapper.Text `json:"publicUrl"`
}

// UploadLogo validates a PNG logo and uploads it, returning its public URL.
// Invalid images never reach the backend.
func (g *Gateway) UploadLogo(ctx context.Context, filename string, r io.Reader) (string, error) {
	logo, err := imaging.ProcessLogo(r)
	if err != nil {
		return "", fmt.Errorf("processing logo: %w", err)
	}
	if filename == "" {
		filename = "logo.png"
	}
	resp := g.client.Upload(ctx, "/admin/settings/upload", "file", filename, logo.MIME, logo.Data)
	if err := resp.Err(); err != nil {
		return "", fmt.Errorf("uploading logo: %w", err)
	}
	var out uploaded
	if err := resp.Decode(&out); err != nil {
		return "", fmt.Errorf("uploading logo: %w", err)
	}
	switch {
	case out.URL != "":
		return string(out.URL), nil
	case out.PublicURL != "":
		return string(out.PublicURL), nil
	}
	return "", errors.New("upload response carried no url")
}
