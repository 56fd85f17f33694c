package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/itchan-dev/tunetag/shared/api"
	"github.com/itchan-dev/tunetag/shared/domain"
	internal_errors "github.com/itchan-dev/tunetag/shared/errors"
	"github.com/itchan-dev/tunetag/shared/logger"
	"golang.org/x/sync/errgroup"
)

const (
	// same layout as JavaScript's Date.toISOString
	commentDateLayout = "2006-01-02T15:04:05.000Z07:00"

	defaultTagLookupConcurrency = 8
)

type CommentState struct {
	Comments []domain.Comment
	Error    string
}

type CommentStore struct {
	comments    CommentAPI
	tagging     TaggingAPI
	session     Session
	renderer    Renderer
	concurrency int
	now         func() time.Time
	log         *slog.Logger

	mu    sync.RWMutex
	state CommentState
}

type CommentOption func(*CommentStore)

// WithRenderer fills Comment.HTML for every fetched comment.
func WithRenderer(r Renderer) CommentOption {
	return func(s *CommentStore) { s.renderer = r }
}

// WithTagLookupConcurrency bounds the parallel tag lookups of one fetch.
func WithTagLookupConcurrency(n int) CommentOption {
	return func(s *CommentStore) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock replaces time.Now for comment dates.
func WithClock(now func() time.Time) CommentOption {
	return func(s *CommentStore) { s.now = now }
}

func NewCommentStore(comments CommentAPI, tagging TaggingAPI, session Session, opts ...CommentOption) *CommentStore {
	s := &CommentStore{
		comments:    comments,
		tagging:     tagging,
		session:     session,
		concurrency: defaultTagLookupConcurrency,
		now:         time.Now,
		log:         logger.For("comments"),
		state:       CommentState{Comments: []domain.Comment{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CommentStore) State() CommentState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CommentState{Comments: append([]domain.Comment{}, s.state.Comments...), Error: s.state.Error}
}

func (s *CommentStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Error
}

func (s *CommentStore) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = msg
}

// RegisterResource makes resource commentable. Registering twice is fine:
// the backend's "already registered" answer counts as success.
func (s *CommentStore) RegisterResource(ctx context.Context, resource domain.ResourceId) bool {
	err := s.comments.RegisterCommentResource(ctx, resource)
	if err != nil && !internal_errors.IsAlreadyRegistered(err) {
		s.setError(err.Error())
		return false
	}
	if err != nil {
		s.log.Debug("resource already registered", "resource", resource)
	}
	s.setError("")
	return true
}

// FetchComments replaces Comments with the resource's comments, each one
// carrying its tags. Tags are looked up concurrently; a comment whose lookup
// fails gets an empty tag list.
func (s *CommentStore) FetchComments(ctx context.Context, resource domain.ResourceId) {
	list, err := s.comments.GetCommentsByResource(ctx, resource)
	if err != nil {
		s.log.Error("failed to fetch comments", "resource", resource, "error", err)
		s.setError(err.Error())
		return
	}

	enriched := make([]domain.Comment, len(list))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range list {
		i := i
		g.Go(func() error {
			c := list[i]
			c.Tags = s.GetCommentTags(ctx, c.Id)
			if s.renderer != nil {
				c.HTML = s.renderer.Render(c.Text)
			}
			enriched[i] = c
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		s.setError(err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = CommentState{Comments: enriched}
}

// GetCommentTags returns the tags of a comment, or an empty list when the
// comment has no registry record or the lookup fails.
func (s *CommentStore) GetCommentTags(ctx context.Context, commentId domain.CommentId) []domain.Tag {
	registry, err := s.tagging.GetRegistryByResource(ctx, commentId)
	if err != nil {
		s.log.Debug("no tags for comment", "comment", commentId, "error", err)
		return []domain.Tag{}
	}
	if registry.Tags == nil {
		return []domain.Tag{}
	}
	return registry.Tags
}

// AddComment posts text as the current user. Non-blank tags are attached by
// registering the new comment in the tagging registry; tagging failures are
// logged and do not fail the comment. The list is re-fetched afterwards.
func (s *CommentStore) AddComment(ctx context.Context, resource domain.ResourceId, text string, tags []domain.Tag) (domain.CommentId, bool) {
	user, ok := s.session.CurrentUser()
	if !ok {
		s.setError(errCommentNotLoggedIn)
		return "", false
	}

	commentId, err := s.comments.AddComment(ctx, api.AddCommentRequest{
		Resource:  resource,
		Commenter: user,
		Text:      text,
		Date:      s.now().UTC().Format(commentDateLayout),
	})
	if err != nil {
		s.setError(err.Error())
		return "", false
	}

	if cleaned := domain.CleanTags(tags); len(cleaned) > 0 {
		if _, err := registerTags(ctx, s.tagging, s.log, commentId, text, cleaned); err != nil {
			s.log.Warn("failed to register comment for tagging", "comment", commentId, "error", err)
		}
	}

	s.setError("")
	s.FetchComments(ctx, resource)
	return commentId, true
}

// RemoveComment deletes a comment of the current user and re-fetches the
// list of resource.
func (s *CommentStore) RemoveComment(ctx context.Context, commentId domain.CommentId, resource domain.ResourceId) bool {
	user, ok := s.session.CurrentUser()
	if !ok {
		s.setError(errUncommentNotLoggedIn)
		return false
	}

	if err := s.comments.RemoveComment(ctx, commentId, user); err != nil {
		s.setError(err.Error())
		return false
	}

	s.setError("")
	s.FetchComments(ctx, resource)
	return true
}
