package mockapi

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/tunetag/shared/api"
	"github.com/itchan-dev/tunetag/shared/logger"
	"github.com/itchan-dev/tunetag/shared/utils"
)

const maxObjectSize = 200 << 20

type Handler struct {
	backend *Backend
}

func NewHandler(backend *Backend) *Handler {
	return &Handler{backend: backend}
}

type empty struct{}

// decode reads a validated request body, answering 400 on failure.
func decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var body T
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return body, false
	}
	return body, true
}

func reply(w http.ResponseWriter, v any, err error) {
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, v)
}

// storageURL builds an absolute URL to an object as seen by the caller.
func storageURL(r *http.Request, objectName string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	segments := strings.Split(objectName, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return scheme + "://" + r.Host + "/storage/" + strings.Join(segments, "/")
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// === UserAuthentication ===

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.CredentialsRequest](w, r)
	if !ok {
		return
	}
	id, err := h.backend.Register(body.Username, body.Password)
	reply(w, api.UserResponse{User: id}, err)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.CredentialsRequest](w, r)
	if !ok {
		return
	}
	id, err := h.backend.Login(body.Username, body.Password)
	reply(w, api.UserResponse{User: id}, err)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.CredentialsRequest](w, r)
	if !ok {
		return
	}
	reply(w, empty{}, h.backend.DeleteUser(body.Username, body.Password))
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.ChangePasswordRequest](w, r)
	if !ok {
		return
	}
	reply(w, empty{}, h.backend.ChangePassword(body.Username, body.OldPassword, body.NewPassword))
}

func (h *Handler) GetUserById(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.GetUserByIdRequest](w, r)
	if !ok {
		return
	}
	username, err := h.backend.Username(body.UserId)
	reply(w, api.UsernameResponse{Username: username}, err)
}

// === FileUrl ===

func (h *Handler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.RequestUploadRequest](w, r)
	if !ok {
		return
	}
	objectName, token, err := h.backend.RequestUpload(body.FileName, body.Owner)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.RequestUploadResponse{
		UploadUrl:     storageURL(r, objectName) + "?token=" + url.QueryEscape(token),
		GcsObjectName: objectName,
	})
}

func (h *Handler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.ConfirmUploadRequest](w, r)
	if !ok {
		return
	}
	id, err := h.backend.ConfirmUpload(body.FileName, body.GcsObjectName, body.Owner, storageURL(r, body.GcsObjectName))
	reply(w, api.ConfirmUploadResponse{File: id}, err)
}

func (h *Handler) GetFilesByUser(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.GetFilesByUserRequest](w, r)
	if !ok {
		return
	}
	reply(w, api.FileListResponse{Files: h.backend.FilesByUser(body.User)}, nil)
}

func (h *Handler) GetFileById(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.GetFileByIdRequest](w, r)
	if !ok {
		return
	}
	file, err := h.backend.File(body.FileId)
	reply(w, api.FileResponse{File: &file}, err)
}

func (h *Handler) GetViewUrl(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.GetViewUrlRequest](w, r)
	if !ok {
		return
	}
	rc, _, err := h.backend.Object(body.GcsObjectName)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	rc.Close()
	utils.WriteJSON(w, http.StatusOK, api.ViewUrlResponse{ViewUrl: storageURL(r, body.GcsObjectName)})
}

// === Object storage ===

func (h *Handler) PutObject(w http.ResponseWriter, r *http.Request) {
	objectName := chi.URLParam(r, "*")
	body := http.MaxBytesReader(w, r.Body, maxObjectSize)
	err := h.backend.PutObject(objectName, r.URL.Query().Get("token"), r.Header.Get("Content-Type"), body)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) GetObject(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := h.backend.Object(chi.URLParam(r, "*"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	defer rc.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, rc); err != nil {
		logger.Log.Error("failed to stream object", "error", err)
	}
}

// === Comment ===

func (h *Handler) RegisterCommentResource(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.ResourceRequest](w, r)
	if !ok {
		return
	}
	reply(w, empty{}, h.backend.RegisterCommentResource(body.Resource))
}

func (h *Handler) GetCommentsByResource(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.ResourceRequest](w, r)
	if !ok {
		return
	}
	reply(w, api.CommentListResponse{Comments: h.backend.CommentsByResource(body.Resource)}, nil)
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.AddCommentRequest](w, r)
	if !ok {
		return
	}
	id, err := h.backend.AddComment(body.Resource, body.Commenter, body.Text, body.Date)
	reply(w, api.AddCommentResponse{Comment: id}, err)
}

func (h *Handler) RemoveComment(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.RemoveCommentRequest](w, r)
	if !ok {
		return
	}
	reply(w, empty{}, h.backend.RemoveComment(body.Comment, body.User))
}

// === MusicTagging ===

func (h *Handler) RegisterTaggedResource(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.RegisterTaggedResourceRequest](w, r)
	if !ok {
		return
	}
	id, err := h.backend.RegisterTaggedResource(body.Resource, body.Description)
	reply(w, api.RegisterTaggedResourceResponse{Registry: id}, err)
}

func (h *Handler) AddTag(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.AddTagRequest](w, r)
	if !ok {
		return
	}
	reply(w, empty{}, h.backend.AddTag(body.Registry, body.Tag))
}

// GetRegistryByResource answers with the bare registry record.
func (h *Handler) GetRegistryByResource(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.ResourceRequest](w, r)
	if !ok {
		return
	}
	registry, err := h.backend.RegistryByResource(body.Resource)
	reply(w, registry, err)
}

// GetRegistriesByTags answers with a bare array.
func (h *Handler) GetRegistriesByTags(w http.ResponseWriter, r *http.Request) {
	body, ok := decode[api.RegistriesByTagsRequest](w, r)
	if !ok {
		return
	}
	reply(w, h.backend.RegistriesByTags(body.Tags), nil)
}
