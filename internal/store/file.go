package store

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"
	"sync"

	"github.com/itchan-dev/tunetag/shared/domain"
	"github.com/itchan-dev/tunetag/shared/logger"
)

const defaultContentType = "application/octet-stream"

// score and audio formats people upload; most are missing from the builtin
// mime table
var compositionTypes = map[string]string{
	".mp3":      "audio/mpeg",
	".wav":      "audio/wav",
	".ogg":      "audio/ogg",
	".flac":     "audio/flac",
	".m4a":      "audio/mp4",
	".mid":      "audio/midi",
	".midi":     "audio/midi",
	".musicxml": "application/vnd.recordare.musicxml+xml",
	".mxl":      "application/vnd.recordare.musicxml",
}

func init() {
	for ext, typ := range compositionTypes {
		mime.AddExtensionType(ext, typ)
	}
}

// Upload is a local file about to be sent to storage.
type Upload struct {
	Name        string
	ContentType string // detected from Name when empty
	Body        io.Reader
	Size        int64 // -1 when unknown
}

func (u Upload) contentType() string {
	if u.ContentType != "" {
		return u.ContentType
	}
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(u.Name))); ct != "" {
		return ct
	}
	return defaultContentType
}

type FileState struct {
	Files []domain.File
	Error string
}

type FileStore struct {
	api     FileAPI
	session Session
	log     *slog.Logger

	mu    sync.RWMutex
	state FileState
}

func NewFileStore(api FileAPI, session Session) *FileStore {
	return &FileStore{
		api:     api,
		session: session,
		log:     logger.For("files"),
		state:   FileState{Files: []domain.File{}},
	}
}

func (s *FileStore) State() FileState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FileState{Files: append([]domain.File{}, s.state.Files...), Error: s.state.Error}
}

func (s *FileStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Error
}

func (s *FileStore) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = msg
}

// UploadFile runs the three-step upload: request a signed URL, PUT the bytes
// there, confirm. The first failing step ends the upload; an object already
// PUT is left in storage.
func (s *FileStore) UploadFile(ctx context.Context, upload Upload) (domain.FileId, bool) {
	s.setError("")

	owner, ok := s.session.CurrentUser()
	if !ok {
		s.setError(errUploadNotLoggedIn)
		return "", false
	}

	target, err := s.api.RequestUpload(ctx, upload.Name, owner)
	if err != nil {
		s.setError(err.Error())
		return "", false
	}
	s.log.Debug("received upload URL", "object", target.GcsObjectName)

	if err := s.api.PutObject(ctx, target.UploadUrl, upload.contentType(), upload.Body, upload.Size); err != nil {
		s.setError(err.Error())
		return "", false
	}

	fileId, err := s.api.ConfirmUpload(ctx, upload.Name, target.GcsObjectName, owner)
	if err != nil {
		s.setError(err.Error())
		return "", false
	}
	return fileId, true
}

// GetFilesByUser replaces Files with the user's files. On failure Files is
// kept and an empty list is returned.
func (s *FileStore) GetFilesByUser(ctx context.Context, userId domain.UserId) []domain.File {
	files, err := s.api.GetFilesByUser(ctx, userId)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.Error = err.Error()
		return []domain.File{}
	}
	s.state.Files = files
	s.state.Error = ""
	return append([]domain.File{}, files...)
}

func (s *FileStore) GetFileByID(ctx context.Context, fileId domain.FileId) *domain.File {
	file, err := s.api.GetFileById(ctx, fileId)
	if err != nil {
		s.setError(err.Error())
		return nil
	}
	s.setError("")
	return &file
}

func (s *FileStore) GetViewURL(ctx context.Context, objectName domain.ObjectName) (string, bool) {
	viewUrl, err := s.api.GetViewUrl(ctx, objectName)
	if err != nil {
		s.setError(err.Error())
		return "", false
	}
	s.setError("")
	return viewUrl, true
}
