// Package store holds the client-side state containers. Each store wraps one
// backend resource family, keeps a small piece of UI-facing state and records
// the outcome of its last action in an error string instead of returning
// errors: callers inspect State() after an action settles.
//
// Stores are safe for concurrent use, but two concurrent calls of the same
// action race at the state level and the last response wins.
package store

import (
	"context"
	"html/template"
	"io"
	"log/slog"

	"github.com/itchan-dev/tunetag/shared/api"
	"github.com/itchan-dev/tunetag/shared/domain"
)

const (
	errUploadNotLoggedIn      = "user not logged in"
	errCommentNotLoggedIn     = "user must be logged in to comment"
	errUncommentNotLoggedIn   = "user must be logged in to delete comments"
	errCompositionNotLoggedIn = "user must be logged in to create a composition"
	errMissingFileId          = "file ID is missing"
	errCompositionNotFound    = "composition not found"
)

type AuthAPI interface {
	Register(ctx context.Context, username domain.Username, password domain.Password) (domain.UserId, error)
	Login(ctx context.Context, username domain.Username, password domain.Password) (domain.UserId, error)
	DeleteUser(ctx context.Context, username domain.Username, password domain.Password) error
	ChangePassword(ctx context.Context, username domain.Username, oldPassword, newPassword domain.Password) error
	GetUserById(ctx context.Context, userId domain.UserId) (domain.Username, error)
}

type FileAPI interface {
	RequestUpload(ctx context.Context, fileName string, owner domain.UserId) (api.RequestUploadResponse, error)
	PutObject(ctx context.Context, uploadURL, contentType string, body io.Reader, size int64) error
	ConfirmUpload(ctx context.Context, fileName string, objectName domain.ObjectName, owner domain.UserId) (domain.FileId, error)
	GetFilesByUser(ctx context.Context, user domain.UserId) ([]domain.File, error)
	GetFileById(ctx context.Context, fileId domain.FileId) (domain.File, error)
	GetViewUrl(ctx context.Context, objectName domain.ObjectName) (string, error)
}

type CommentAPI interface {
	RegisterCommentResource(ctx context.Context, resource domain.ResourceId) error
	GetCommentsByResource(ctx context.Context, resource domain.ResourceId) ([]domain.Comment, error)
	AddComment(ctx context.Context, data api.AddCommentRequest) (domain.CommentId, error)
	RemoveComment(ctx context.Context, comment domain.CommentId, user domain.UserId) error
}

type TaggingAPI interface {
	RegisterTaggedResource(ctx context.Context, resource domain.ResourceId, description string) (domain.RegistryId, error)
	AddTag(ctx context.Context, registry domain.RegistryId, tag domain.Tag) error
	GetRegistryByResource(ctx context.Context, resource domain.ResourceId) (domain.Registry, error)
	GetRegistriesByTags(ctx context.Context, tags []domain.Tag) ([]domain.Registry, error)
}

// Session tells stores who is logged in. Implemented by *AuthStore.
type Session interface {
	CurrentUser() (domain.UserId, bool)
}

// FileSource is the part of *FileStore the composition store builds on.
type FileSource interface {
	GetFilesByUser(ctx context.Context, userId domain.UserId) []domain.File
	GetFileByID(ctx context.Context, fileId domain.FileId) *domain.File
	Err() string
}

// Renderer turns comment text into display HTML.
type Renderer interface {
	Render(text string) template.HTML
}

// registerTags registers resource in the tagging registry and attaches every
// tag one after another. Only the registration failure is returned; a tag
// that fails is logged and skipped.
func registerTags(ctx context.Context, tagging TaggingAPI, log *slog.Logger, resource domain.ResourceId, description string, tags []domain.Tag) (domain.RegistryId, error) {
	registry, err := tagging.RegisterTaggedResource(ctx, resource, description)
	if err != nil {
		return "", err
	}
	for _, tag := range tags {
		if err := tagging.AddTag(ctx, registry, tag); err != nil {
			log.Warn("failed to add tag", "registry", registry, "tag", tag, "error", err)
		}
	}
	return registry, nil
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
