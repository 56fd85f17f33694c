package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/itchan-dev/tunetag/shared/domain"
	"github.com/itchan-dev/tunetag/shared/logger"
)

// NewComposition describes an uploaded file to be published as a composition.
type NewComposition struct {
	FileID      domain.FileId
	Description string
	Tags        []domain.Tag
}

type CompositionState struct {
	Compositions  []domain.Composition // the user's compositions
	SearchResults []domain.Registry
	Current       *domain.Composition
	Error         string
}

type CompositionStore struct {
	tagging TaggingAPI
	files   FileSource
	session Session
	log     *slog.Logger

	mu    sync.RWMutex
	state CompositionState
}

func NewCompositionStore(tagging TaggingAPI, files FileSource, session Session) *CompositionStore {
	return &CompositionStore{
		tagging: tagging,
		files:   files,
		session: session,
		log:     logger.For("compositions"),
		state: CompositionState{
			Compositions:  []domain.Composition{},
			SearchResults: []domain.Registry{},
		},
	}
}

func (s *CompositionStore) State() CompositionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := CompositionState{
		Compositions:  append([]domain.Composition{}, s.state.Compositions...),
		SearchResults: append([]domain.Registry{}, s.state.SearchResults...),
		Error:         s.state.Error,
	}
	if s.state.Current != nil {
		current := *s.state.Current
		st.Current = &current
	}
	return st
}

func (s *CompositionStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Error
}

func (s *CompositionStore) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = msg
}

// SearchCompositions finds the registries tagged with tags. Results come back
// in backend order.
func (s *CompositionStore) SearchCompositions(ctx context.Context, tags []domain.Tag) []domain.Registry {
	results, err := s.tagging.GetRegistriesByTags(ctx, domain.CleanTags(tags))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.Error = err.Error()
		return []domain.Registry{}
	}
	s.state.SearchResults = results
	s.state.Error = ""
	return append([]domain.Registry{}, results...)
}

// CreateComposition registers an uploaded file in the tagging registry and
// attaches its tags in order. Whether every tag made it is not checked.
func (s *CompositionStore) CreateComposition(ctx context.Context, data NewComposition) (domain.RegistryId, bool) {
	if _, ok := s.session.CurrentUser(); !ok {
		s.setError(errCompositionNotLoggedIn)
		return "", false
	}
	if data.FileID == "" {
		s.setError(errMissingFileId)
		return "", false
	}

	registry, err := registerTags(ctx, s.tagging, s.log, data.FileID, data.Description, domain.CleanTags(data.Tags))
	if err != nil {
		s.setError(err.Error())
		return "", false
	}
	s.setError("")
	return registry, true
}

// GetCompositionsByUser rebuilds Compositions from the user's files, one
// registry lookup per file. A file whose lookup fails is left out.
func (s *CompositionStore) GetCompositionsByUser(ctx context.Context, userId domain.UserId) []domain.Composition {
	files := s.files.GetFilesByUser(ctx, userId)
	if msg := s.files.Err(); msg != "" {
		s.setError(msg)
		return []domain.Composition{}
	}

	compositions := make([]domain.Composition, 0, len(files))
	for _, file := range files {
		registry, err := s.tagging.GetRegistryByResource(ctx, file.Id)
		if err != nil {
			s.log.Warn("failed to get composition details", "file", file.Id, "error", err)
			continue
		}
		compositions = append(compositions, domain.NewComposition(file, registry))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Compositions = compositions
	s.state.Error = ""
	return append([]domain.Composition{}, compositions...)
}

// FetchComposition makes the composition with id Current. The user's
// compositions are loaded first when empty; a cached entry wins over the
// backend. Otherwise the file and its registry record are fetched directly.
func (s *CompositionStore) FetchComposition(ctx context.Context, id domain.FileId) *domain.Composition {
	s.mu.RLock()
	empty := len(s.state.Compositions) == 0
	s.mu.RUnlock()
	if user, ok := s.session.CurrentUser(); empty && ok {
		s.GetCompositionsByUser(ctx, user)
	}

	composition := s.cached(id)
	if composition == nil {
		composition = s.fetchDirect(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Current = composition
	if composition == nil {
		s.state.Error = errCompositionNotFound
		return nil
	}
	s.state.Error = ""
	current := *composition
	return &current
}

func (s *CompositionStore) cached(id domain.FileId) *domain.Composition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.state.Compositions {
		if c.Id == id {
			return &c
		}
	}
	return nil
}

func (s *CompositionStore) fetchDirect(ctx context.Context, id domain.FileId) *domain.Composition {
	file := s.files.GetFileByID(ctx, id)
	if file == nil {
		return nil
	}

	registry, err := s.tagging.GetRegistryByResource(ctx, id)
	if err != nil {
		s.log.Warn("failed to fetch composition registry", "file", id, "error", err)
		registry = domain.Registry{}
	}
	if registry.Description == "" {
		registry.Description = domain.NoDescription
	}

	composition := domain.NewComposition(*file, registry)
	return &composition
}
