package api

import "github.com/itchan-dev/tunetag/shared/domain"

const (
	RouteRegisterTaggedResource = "/MusicTagging/registerResource"
	RouteAddTag                 = "/MusicTagging/addTag"
	RouteGetRegistryByResource  = "/MusicTagging/_getRegistryByResource"
	RouteGetRegistriesByTags    = "/MusicTagging/_getRegistriesByTags"
)

// Request DTOs

type RegisterTaggedResourceRequest struct {
	Resource    domain.ResourceId `json:"resource" validate:"required"`
	Description string            `json:"description"`
}

type AddTagRequest struct {
	Registry domain.RegistryId `json:"registry" validate:"required"`
	Tag      domain.Tag        `json:"tag" validate:"required"`
}

type RegistriesByTagsRequest struct {
	Tags []domain.Tag `json:"tags" validate:"required,min=1,dive,required"`
}

// Response DTOs

type RegisterTaggedResourceResponse struct {
	Registry domain.RegistryId `json:"registry"`
}
