package backend

import (
	"context"
	"fmt"

	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/domain"
)

type VendorService struct {
	client *api.Client
}

func NewVendorService(client *api.Client) *VendorService {
	return &VendorService{client: client}
}

// Create registers a vendor profile authorized by token. Vendor signup
// calls it with a freshly issued token that is not the session token.
func (s *VendorService) Create(ctx context.Context, token string, vendor domain.Vendor) (*domain.Vendor, error) {
	var out domain.Vendor
	if _, err := s.client.Post(ctx, "/vendors/", vendor, &out, api.WithBearer(token)); err != nil {
		return nil, fmt.Errorf("create vendor profile: %w", err)
	}
	return &out, nil
}
