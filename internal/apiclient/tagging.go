package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/itchan-dev/tunetag/shared/api"
	"github.com/itchan-dev/tunetag/shared/domain"
	internal_errors "github.com/itchan-dev/tunetag/shared/errors"
)

// RegisterTaggedResource creates the registry record for resource and
// returns its id.
func (c *APIClient) RegisterTaggedResource(ctx context.Context, resource domain.ResourceId, description string) (domain.RegistryId, error) {
	var resp api.RegisterTaggedResourceResponse
	data := api.RegisterTaggedResourceRequest{Resource: resource, Description: description}
	if err := c.post(ctx, api.RouteRegisterTaggedResource, data, &resp); err != nil {
		return "", err
	}
	if resp.Registry == "" {
		return "", fmt.Errorf("%s: response has no registry id", api.RouteRegisterTaggedResource)
	}
	return resp.Registry, nil
}

func (c *APIClient) AddTag(ctx context.Context, registry domain.RegistryId, tag domain.Tag) error {
	return c.post(ctx, api.RouteAddTag, api.AddTagRequest{Registry: registry, Tag: tag}, nil)
}

// GetRegistryByResource returns the registry record of resource. Tags are
// never nil.
func (c *APIClient) GetRegistryByResource(ctx context.Context, resource domain.ResourceId) (domain.Registry, error) {
	raw, err := c.postRaw(ctx, api.RouteGetRegistryByResource, api.ResourceRequest{Resource: resource})
	if err != nil {
		return domain.Registry{}, err
	}
	registry, found, err := decodeOne[domain.Registry](api.RouteGetRegistryByResource, raw, "registry")
	if err != nil {
		return domain.Registry{}, err
	}
	if !found {
		return domain.Registry{}, &internal_errors.APIError{Route: api.RouteGetRegistryByResource, StatusCode: http.StatusNotFound, Message: "registry not found"}
	}
	if registry.Tags == nil {
		registry.Tags = []domain.Tag{}
	}
	return registry, nil
}

// GetRegistriesByTags returns the registries carrying the given tags.
// Order is whatever the backend returns.
func (c *APIClient) GetRegistriesByTags(ctx context.Context, tags []domain.Tag) ([]domain.Registry, error) {
	raw, err := c.postRaw(ctx, api.RouteGetRegistriesByTags, api.RegistriesByTagsRequest{Tags: tags})
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Registry](api.RouteGetRegistriesByTags, raw, "registries")
}
