package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/itchan-dev/tunetag/shared/api"
	"github.com/itchan-dev/tunetag/shared/domain"
	internal_errors "github.com/itchan-dev/tunetag/shared/errors"
	"github.com/itchan-dev/tunetag/shared/metrics"
)

const routeObjectStorage = "object-storage"

// RequestUpload asks the backend for a pre-signed URL the bytes can be PUT to.
func (c *APIClient) RequestUpload(ctx context.Context, fileName string, owner domain.UserId) (api.RequestUploadResponse, error) {
	var resp api.RequestUploadResponse
	err := c.post(ctx, api.RouteRequestUpload, api.RequestUploadRequest{FileName: fileName, Owner: owner}, &resp)
	if err == nil && resp.UploadUrl == "" {
		err = fmt.Errorf("%s: response has no upload URL", api.RouteRequestUpload)
	}
	return resp, err
}

// PutObject sends the raw bytes to a pre-signed storage URL. The content type
// is the only header: signed URLs are usually bound to it.
func (c *APIClient) PutObject(ctx context.Context, uploadURL, contentType string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(metrics.WithRoute(ctx, routeObjectStorage), http.MethodPut, uploadURL, body)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if size >= 0 {
		req.ContentLength = size
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage unavailable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &internal_errors.APIError{
			Route:      routeObjectStorage,
			StatusCode: resp.StatusCode,
			Message:    "failed to upload file to storage",
		}
	}
	return nil
}

// ConfirmUpload records an uploaded object as a file and returns its id.
func (c *APIClient) ConfirmUpload(ctx context.Context, fileName string, objectName domain.ObjectName, owner domain.UserId) (domain.FileId, error) {
	var resp api.ConfirmUploadResponse
	data := api.ConfirmUploadRequest{FileName: fileName, GcsObjectName: objectName, Owner: owner}
	if err := c.post(ctx, api.RouteConfirmUpload, data, &resp); err != nil {
		return "", err
	}
	if resp.File == "" {
		return "", fmt.Errorf("%s: response has no file id", api.RouteConfirmUpload)
	}
	return resp.File, nil
}

func (c *APIClient) GetFilesByUser(ctx context.Context, user domain.UserId) ([]domain.File, error) {
	raw, err := c.postRaw(ctx, api.RouteGetFilesByUser, api.GetFilesByUserRequest{User: user})
	if err != nil {
		return nil, err
	}
	return decodeList[domain.File](api.RouteGetFilesByUser, raw, "files")
}

func (c *APIClient) GetFileById(ctx context.Context, fileId domain.FileId) (domain.File, error) {
	raw, err := c.postRaw(ctx, api.RouteGetFileById, api.GetFileByIdRequest{FileId: fileId})
	if err != nil {
		return domain.File{}, err
	}
	file, found, err := decodeOne[domain.File](api.RouteGetFileById, raw, "file")
	if err != nil {
		return domain.File{}, err
	}
	if !found {
		return domain.File{}, &internal_errors.APIError{Route: api.RouteGetFileById, StatusCode: http.StatusNotFound, Message: "file not found"}
	}
	return file, nil
}

func (c *APIClient) GetViewUrl(ctx context.Context, objectName domain.ObjectName) (string, error) {
	var resp api.ViewUrlResponse
	err := c.post(ctx, api.RouteGetViewUrl, api.GetViewUrlRequest{GcsObjectName: objectName}, &resp)
	return resp.ViewUrl, err
}
