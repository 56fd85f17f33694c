package api

import "github.com/itchan-dev/tunetag/shared/domain"

const (
	RouteRequestUpload  = "/FileUrl/requestUpload"
	RouteConfirmUpload  = "/FileUrl/confirmUpload"
	RouteGetFilesByUser = "/FileUrl/_getFilesByUser"
	RouteGetFileById    = "/FileUrl/_getFileById"
	RouteGetViewUrl     = "/FileUrl/getViewUrl"
)

// Request DTOs

type RequestUploadRequest struct {
	FileName string        `json:"fileName" validate:"required"`
	Owner    domain.UserId `json:"owner" validate:"required"`
}

type ConfirmUploadRequest struct {
	FileName      string            `json:"fileName" validate:"required"`
	GcsObjectName domain.ObjectName `json:"gcsObjectName" validate:"required"`
	Owner         domain.UserId     `json:"owner" validate:"required"`
}

type GetFilesByUserRequest struct {
	User domain.UserId `json:"user" validate:"required"`
}

type GetFileByIdRequest struct {
	FileId domain.FileId `json:"fileId" validate:"required"`
}

type GetViewUrlRequest struct {
	GcsObjectName domain.ObjectName `json:"gcsObjectName" validate:"required"`
}

// Response DTOs

type RequestUploadResponse struct {
	UploadUrl     string            `json:"uploadUrl"`
	GcsObjectName domain.ObjectName `json:"gcsObjectName"`
}

type ConfirmUploadResponse struct {
	File domain.FileId `json:"file"`
}

// FileListResponse is the wrapped form of _getFilesByUser. Clients also
// accept a bare array.
type FileListResponse struct {
	Files []domain.File `json:"files"`
}

type FileResponse struct {
	File *domain.File `json:"file"`
}

type ViewUrlResponse struct {
	ViewUrl string `json:"viewUrl"`
}
