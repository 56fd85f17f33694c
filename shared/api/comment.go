package api

import "github.com/itchan-dev/tunetag/shared/domain"

const (
	RouteCommentRegister       = "/Comment/register"
	RouteGetCommentsByResource = "/Comment/_getCommentsByResource"
	RouteAddComment            = "/Comment/addComment"
	RouteRemoveComment         = "/Comment/removeComment"
)

// Request DTOs

type ResourceRequest struct {
	Resource domain.ResourceId `json:"resource" validate:"required"`
}

type AddCommentRequest struct {
	Resource  domain.ResourceId `json:"resource" validate:"required"`
	Commenter domain.UserId     `json:"commenter" validate:"required"`
	Text      string            `json:"text" validate:"required"`
	Date      string            `json:"date" validate:"required"`
}

type RemoveCommentRequest struct {
	Comment domain.CommentId `json:"comment" validate:"required"`
	User    domain.UserId    `json:"user" validate:"required"`
}

// Response DTOs

// CommentListResponse is the wrapped form of _getCommentsByResource. Clients
// also accept a bare array.
type CommentListResponse struct {
	Comments []domain.Comment `json:"comments"`
}

type AddCommentResponse struct {
	Comment domain.CommentId `json:"comment"`
}
