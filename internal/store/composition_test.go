package store

import (
	"context"
	"testing"

	"github.com/itchan-dev/tunetag/shared/domain"
	internal_errors "github.com/itchan-dev/tunetag/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockFileSource stands in for *FileStore.
type MockFileSource struct {
	GetFilesByUserFunc func(userId domain.UserId) []domain.File
	GetFileByIDFunc    func(fileId domain.FileId) *domain.File
	Error              string
}

func (m *MockFileSource) GetFilesByUser(ctx context.Context, userId domain.UserId) []domain.File {
	if m.GetFilesByUserFunc != nil {
		return m.GetFilesByUserFunc(userId)
	}
	return []domain.File{}
}

func (m *MockFileSource) GetFileByID(ctx context.Context, fileId domain.FileId) *domain.File {
	if m.GetFileByIDFunc != nil {
		return m.GetFileByIDFunc(fileId)
	}
	return nil
}

func (m *MockFileSource) Err() string { return m.Error }

func twoFiles() []domain.File {
	return []domain.File{
		{Id: "f1", Owner: "u1", FileName: "a.mp3", GcsObjectName: "u1/a.mp3", Url: "http://storage/u1/a.mp3"},
		{Id: "f2", Owner: "u1", FileName: "b.mid", GcsObjectName: "u1/b.mid", Url: "http://storage/u1/b.mid"},
	}
}

func TestCompositionStore_SearchCompositions(t *testing.T) {
	found := []domain.Registry{{Id: "r1", Resource: "f1", Tags: []domain.Tag{"jazz"}}}
	tagging := &MockTaggingAPI{GetRegistriesByTagsFunc: func(tags []domain.Tag) ([]domain.Registry, error) {
		assert.Equal(t, []domain.Tag{"jazz", "piano"}, tags)
		return found, nil
	}}
	s := NewCompositionStore(tagging, &MockFileSource{}, MockSession{})

	assert.Equal(t, found, s.SearchCompositions(context.Background(), []domain.Tag{" jazz", "piano ", ""}))
	assert.Equal(t, found, s.State().SearchResults)

	tagging.GetRegistriesByTagsFunc = func([]domain.Tag) ([]domain.Registry, error) {
		return nil, &internal_errors.APIError{Message: "search failed"}
	}
	got := s.SearchCompositions(context.Background(), []domain.Tag{"rock"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
	state := s.State()
	assert.Equal(t, "search failed", state.Error)
	assert.Equal(t, found, state.SearchResults, "earlier results survive a failed search")
}

func TestCompositionStore_CreateComposition(t *testing.T) {
	var added []domain.Tag
	tagging := &MockTaggingAPI{
		RegisterTaggedResourceFunc: func(resource domain.ResourceId, description string) (domain.RegistryId, error) {
			assert.Equal(t, "f1", resource)
			assert.Equal(t, "late night take", description)
			return "r1", nil
		},
		AddTagFunc: func(registry domain.RegistryId, tag domain.Tag) error {
			added = append(added, tag)
			if tag == "broken" {
				return &internal_errors.APIError{Message: "tag rejected"}
			}
			return nil
		},
	}
	s := NewCompositionStore(tagging, &MockFileSource{}, MockSession{User: "u1"})

	id, ok := s.CreateComposition(context.Background(), NewComposition{
		FileID:      "f1",
		Description: "late night take",
		Tags:        []domain.Tag{"jazz", " broken ", "", "trio"},
	})

	require.True(t, ok)
	assert.Equal(t, "r1", id)
	assert.Equal(t, []domain.Tag{"jazz", "broken", "trio"}, added, "every tag attempted in order")
	assert.Empty(t, s.Err())
}

func TestCompositionStore_CreateComposition_Errors(t *testing.T) {
	failing := &MockTaggingAPI{RegisterTaggedResourceFunc: func(domain.ResourceId, string) (domain.RegistryId, error) {
		return "", &internal_errors.APIError{StatusCode: 409, Message: "resource already registered"}
	}}

	tests := []struct {
		name          string
		session       Session
		data          NewComposition
		expectedError string
	}{
		{
			name:          "not logged in",
			session:       MockSession{},
			data:          NewComposition{FileID: "f1"},
			expectedError: "user must be logged in to create a composition",
		},
		{
			name:          "missing file id",
			session:       MockSession{User: "u1"},
			data:          NewComposition{Description: "x"},
			expectedError: "file ID is missing",
		},
		{
			name:          "registration fails",
			session:       MockSession{User: "u1"},
			data:          NewComposition{FileID: "f1"},
			expectedError: "resource already registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewCompositionStore(failing, &MockFileSource{}, tt.session)

			id, ok := s.CreateComposition(context.Background(), tt.data)

			assert.False(t, ok)
			assert.Empty(t, id)
			assert.Equal(t, tt.expectedError, s.Err())
		})
	}
}

func TestCompositionStore_GetCompositionsByUser(t *testing.T) {
	files := &MockFileSource{GetFilesByUserFunc: func(userId domain.UserId) []domain.File {
		assert.Equal(t, "u1", userId)
		return twoFiles()
	}}
	tagging := &MockTaggingAPI{GetRegistryByResourceFunc: func(resource domain.ResourceId) (domain.Registry, error) {
		if resource == "f2" {
			return domain.Registry{}, &internal_errors.APIError{StatusCode: 404, Message: "registry not found"}
		}
		return domain.Registry{Resource: resource, Description: "first", Tags: []domain.Tag{"jazz"}}, nil
	}}
	s := NewCompositionStore(tagging, files, MockSession{User: "u1"})

	got := s.GetCompositionsByUser(context.Background(), "u1")

	expected := []domain.Composition{{
		Id:            "f1",
		Url:           "http://storage/u1/a.mp3",
		Owner:         "u1",
		FileName:      "a.mp3",
		GcsObjectName: "u1/a.mp3",
		Description:   "first",
		Tags:          []domain.Tag{"jazz"},
	}}
	assert.Equal(t, expected, got, "file without registry record is left out")
	assert.Equal(t, expected, s.State().Compositions)
	assert.Empty(t, s.Err())
}

func TestCompositionStore_GetCompositionsByUser_FileError(t *testing.T) {
	files := &MockFileSource{Error: "backend unavailable"}
	s := NewCompositionStore(&MockTaggingAPI{}, files, MockSession{User: "u1"})

	got := s.GetCompositionsByUser(context.Background(), "u1")

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, "backend unavailable", s.Err())
}

func TestCompositionStore_FetchComposition(t *testing.T) {
	t.Run("cold start loads the user's compositions and uses the cache", func(t *testing.T) {
		files := &MockFileSource{
			GetFilesByUserFunc: func(domain.UserId) []domain.File { return twoFiles() },
			GetFileByIDFunc: func(domain.FileId) *domain.File {
				t.Fatal("cached composition must not be fetched directly")
				return nil
			},
		}
		s := NewCompositionStore(&MockTaggingAPI{}, files, MockSession{User: "u1"})

		got := s.FetchComposition(context.Background(), "f2")

		require.NotNil(t, got)
		assert.Equal(t, "b.mid", got.FileName)
		assert.Len(t, s.State().Compositions, 2)
		require.NotNil(t, s.State().Current)
		assert.Equal(t, "f2", s.State().Current.Id)
	})

	t.Run("falls back to a direct fetch", func(t *testing.T) {
		files := &MockFileSource{GetFileByIDFunc: func(id domain.FileId) *domain.File {
			return &domain.File{Id: id, Owner: "u9", FileName: "c.wav"}
		}}
		tagging := &MockTaggingAPI{GetRegistryByResourceFunc: func(domain.ResourceId) (domain.Registry, error) {
			return domain.Registry{}, &internal_errors.APIError{StatusCode: 404, Message: "registry not found"}
		}}
		s := NewCompositionStore(tagging, files, MockSession{})

		got := s.FetchComposition(context.Background(), "f3")

		require.NotNil(t, got)
		assert.Equal(t, domain.Composition{
			Id:          "f3",
			Owner:       "u9",
			FileName:    "c.wav",
			Description: "No description",
			Tags:        []domain.Tag{},
		}, *got)
		assert.Empty(t, s.Err())
	})

	t.Run("not found", func(t *testing.T) {
		s := NewCompositionStore(&MockTaggingAPI{}, &MockFileSource{}, MockSession{})

		assert.Nil(t, s.FetchComposition(context.Background(), "missing"))
		state := s.State()
		assert.Nil(t, state.Current)
		assert.Equal(t, "composition not found", state.Error)
	})
}
