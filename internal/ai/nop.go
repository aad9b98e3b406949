package ai

import (
	"context"

	"github.com/amishk599/resumegen/internal/model"
)

// NopRegistry is used for providers without routing profiles. It never
// returns a profile, so capacity-restricted candidates are skipped.
type NopRegistry struct{}

// NewNopRegistry returns a NopRegistry.
func NewNopRegistry() *NopRegistry {
	return &NopRegistry{}
}

// ListProfiles returns no profiles.
func (NopRegistry) ListProfiles(_ context.Context) ([]model.RoutingProfile, error) {
	return nil, nil
}
