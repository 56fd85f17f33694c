package apiclient

import (
	"context"
	"fmt"

	"github.com/itchan-dev/tunetag/shared/api"
	"github.com/itchan-dev/tunetag/shared/domain"
)

// RegisterCommentResource makes resource commentable. The backend answers
// with an "already registered" error for repeated calls.
func (c *APIClient) RegisterCommentResource(ctx context.Context, resource domain.ResourceId) error {
	return c.post(ctx, api.RouteCommentRegister, api.ResourceRequest{Resource: resource}, nil)
}

// GetCommentsByResource returns comments as the backend stores them, without tags.
func (c *APIClient) GetCommentsByResource(ctx context.Context, resource domain.ResourceId) ([]domain.Comment, error) {
	raw, err := c.postRaw(ctx, api.RouteGetCommentsByResource, api.ResourceRequest{Resource: resource})
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Comment](api.RouteGetCommentsByResource, raw, "comments")
}

func (c *APIClient) AddComment(ctx context.Context, data api.AddCommentRequest) (domain.CommentId, error) {
	var resp api.AddCommentResponse
	if err := c.post(ctx, api.RouteAddComment, data, &resp); err != nil {
		return "", err
	}
	if resp.Comment == "" {
		return "", fmt.Errorf("%s: response has no comment id", api.RouteAddComment)
	}
	return resp.Comment, nil
}

func (c *APIClient) RemoveComment(ctx context.Context, comment domain.CommentId, user domain.UserId) error {
	return c.post(ctx, api.RouteRemoveComment, api.RemoveCommentRequest{Comment: comment, User: user}, nil)
}
