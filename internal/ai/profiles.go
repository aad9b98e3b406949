package ai

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrock/types"

	"github.com/amishk599/resumegen/internal/model"
)

// Ensure ProfileRegistry implements model.ProfileRegistry.
var _ model.ProfileRegistry = (*ProfileRegistry)(nil)

const defaultProfilePageSize = 100

// ProfileRegistry lists system-defined inference profiles from Bedrock.
// Caller-defined (application) profiles are never listed.
type ProfileRegistry struct {
	client   bedrock.ListInferenceProfilesAPIClient
	pageSize int32
}

// NewProfileRegistry creates a registry. pageSize <= 0 uses the default.
func NewProfileRegistry(client bedrock.ListInferenceProfilesAPIClient, pageSize int32) *ProfileRegistry {
	if pageSize <= 0 {
		pageSize = defaultProfilePageSize
	}
	return &ProfileRegistry{client: client, pageSize: pageSize}
}

// ListProfiles returns every system-defined profile in registry order.
// Failures wrap model.ErrRegistryUnavailable.
func (r *ProfileRegistry) ListProfiles(ctx context.Context) ([]model.RoutingProfile, error) {
	pager := bedrock.NewListInferenceProfilesPaginator(r.client, &bedrock.ListInferenceProfilesInput{
		TypeEquals: types.InferenceProfileTypeSystemDefined,
		MaxResults: aws.Int32(r.pageSize),
	})

	var profiles []model.RoutingProfile
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: list inference profiles: %w", model.ErrRegistryUnavailable, err)
		}
		for _, s := range page.InferenceProfileSummaries {
			p := model.RoutingProfile{ID: aws.ToString(s.InferenceProfileId)}
			for _, m := range s.Models {
				p.Models = append(p.Models, aws.ToString(m.ModelArn))
			}
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}
