package mockapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/itchan-dev/tunetag/shared/api"
	"github.com/itchan-dev/tunetag/shared/domain"
	"github.com/itchan-dev/tunetag/shared/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger.InitializeTo(io.Discard, "error", false)
	t.Cleanup(func() { logger.Initialize("info", false) })

	objects, err := NewObjects(t.TempDir())
	require.NoError(t, err)
	backend := NewBackend(objects, WithPasswordCost(bcrypt.MinCost))
	srv := httptest.NewServer(NewRouter(NewHandler(backend), []string{"http://localhost:5173"}))
	t.Cleanup(srv.Close)
	return srv
}

// call posts body to route and decodes the answer into out when given.
func call(t *testing.T, srv *httptest.Server, route string, body any, out any) int {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api"+route, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func register(t *testing.T, srv *httptest.Server, username string) domain.UserId {
	t.Helper()
	var resp api.UserResponse
	require.Equal(t, http.StatusOK, call(t, srv, api.RouteRegister, api.CredentialsRequest{Username: username, Password: "pw"}, &resp))
	require.NotEmpty(t, resp.User)
	return resp.User
}

func TestUserAuthentication(t *testing.T) {
	srv := setupTestServer(t)
	id := register(t, srv, "alice")

	var errBody struct{ Error string }
	status := call(t, srv, api.RouteRegister, api.CredentialsRequest{Username: "alice", Password: "x"}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "username already taken", errBody.Error)

	var login api.UserResponse
	assert.Equal(t, http.StatusOK, call(t, srv, api.RouteLogin, api.CredentialsRequest{Username: "alice", Password: "pw"}, &login))
	assert.Equal(t, id, login.User)

	status = call(t, srv, api.RouteLogin, api.CredentialsRequest{Username: "alice", Password: "wrong"}, &errBody)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid username or password", errBody.Error)

	assert.Equal(t, http.StatusOK, call(t, srv, api.RouteChangePassword, api.ChangePasswordRequest{Username: "alice", OldPassword: "pw", NewPassword: "pw2"}, nil))
	assert.Equal(t, http.StatusUnauthorized, call(t, srv, api.RouteLogin, api.CredentialsRequest{Username: "alice", Password: "pw"}, nil))

	var name api.UsernameResponse
	assert.Equal(t, http.StatusOK, call(t, srv, api.RouteGetUserById, api.GetUserByIdRequest{UserId: id}, &name))
	assert.Equal(t, "alice", name.Username)

	assert.Equal(t, http.StatusOK, call(t, srv, api.RouteDeleteUser, api.CredentialsRequest{Username: "alice", Password: "pw2"}, nil))
	assert.Equal(t, http.StatusNotFound, call(t, srv, api.RouteGetUserById, api.GetUserByIdRequest{UserId: id}, nil))
}

func TestValidation(t *testing.T) {
	srv := setupTestServer(t)

	var errBody struct{ Error string }
	status := call(t, srv, api.RouteLogin, map[string]string{"username": "alice"}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Required fields missing", errBody.Error)

	status = call(t, srv, api.RouteGetRegistriesByTags, api.RegistriesByTagsRequest{Tags: []string{}}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUploadFlow(t *testing.T) {
	srv := setupTestServer(t)
	owner := register(t, srv, "alice")

	var upload api.RequestUploadResponse
	require.Equal(t, http.StatusOK, call(t, srv, api.RouteRequestUpload, api.RequestUploadRequest{FileName: "song.mp3", Owner: owner}, &upload))
	require.True(t, strings.HasPrefix(upload.UploadUrl, srv.URL+"/storage/"))

	// confirming before the bytes arrive fails
	assert.Equal(t, http.StatusConflict, call(t, srv, api.RouteConfirmUpload, api.ConfirmUploadRequest{FileName: "song.mp3", GcsObjectName: upload.GcsObjectName, Owner: owner}, nil))

	put := func(target string) int {
		req, err := http.NewRequest(http.MethodPut, target, strings.NewReader("ID3 data"))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "audio/mpeg")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	u, err := url.Parse(upload.UploadUrl)
	require.NoError(t, err)
	u.RawQuery = "token=forged"
	assert.Equal(t, http.StatusForbidden, put(u.String()))
	assert.Equal(t, http.StatusOK, put(upload.UploadUrl))
	assert.Equal(t, http.StatusForbidden, put(upload.UploadUrl), "tokens are one-shot")

	var confirmed api.ConfirmUploadResponse
	require.Equal(t, http.StatusOK, call(t, srv, api.RouteConfirmUpload, api.ConfirmUploadRequest{FileName: "song.mp3", GcsObjectName: upload.GcsObjectName, Owner: owner}, &confirmed))

	var files api.FileListResponse
	require.Equal(t, http.StatusOK, call(t, srv, api.RouteGetFilesByUser, api.GetFilesByUserRequest{User: owner}, &files))
	require.Len(t, files.Files, 1)
	assert.Equal(t, confirmed.File, files.Files[0].Id)
	assert.Equal(t, "song.mp3", files.Files[0].FileName)

	var view api.ViewUrlResponse
	require.Equal(t, http.StatusOK, call(t, srv, api.RouteGetViewUrl, api.GetViewUrlRequest{GcsObjectName: upload.GcsObjectName}, &view))
	resp, err := http.Get(view.ViewUrl)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ID3 data", string(data))
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, objectCSP, resp.Header.Get("Content-Security-Policy"))
}

func TestComments(t *testing.T) {
	srv := setupTestServer(t)
	alice := register(t, srv, "alice")
	bob := register(t, srv, "bob")

	add := api.AddCommentRequest{Resource: "f1", Commenter: alice, Text: "nice", Date: "2024-01-01T00:00:00.000Z"}
	var errBody struct{ Error string }
	assert.Equal(t, http.StatusNotFound, call(t, srv, api.RouteAddComment, add, &errBody))
	assert.Equal(t, "resource not registered", errBody.Error)

	assert.Equal(t, http.StatusOK, call(t, srv, api.RouteCommentRegister, api.ResourceRequest{Resource: "f1"}, nil))
	assert.Equal(t, http.StatusConflict, call(t, srv, api.RouteCommentRegister, api.ResourceRequest{Resource: "f1"}, &errBody))
	assert.Contains(t, errBody.Error, "already registered")

	var added api.AddCommentResponse
	require.Equal(t, http.StatusOK, call(t, srv, api.RouteAddComment, add, &added))

	var list api.CommentListResponse
	require.Equal(t, http.StatusOK, call(t, srv, api.RouteGetCommentsByResource, api.ResourceRequest{Resource: "f1"}, &list))
	require.Len(t, list.Comments, 1)
	assert.Equal(t, "nice", list.Comments[0].Text)

	assert.Equal(t, http.StatusForbidden, call(t, srv, api.RouteRemoveComment, api.RemoveCommentRequest{Comment: added.Comment, User: bob}, nil))
	assert.Equal(t, http.StatusOK, call(t, srv, api.RouteRemoveComment, api.RemoveCommentRequest{Comment: added.Comment, User: alice}, nil))
	require.Equal(t, http.StatusOK, call(t, srv, api.RouteGetCommentsByResource, api.ResourceRequest{Resource: "f1"}, &list))
	assert.Empty(t, list.Comments)
}

func TestTagging(t *testing.T) {
	srv := setupTestServer(t)

	newRegistry := func(resource string, tags ...string) domain.RegistryId {
		var resp api.RegisterTaggedResourceResponse
		require.Equal(t, http.StatusOK, call(t, srv, api.RouteRegisterTaggedResource, api.RegisterTaggedResourceRequest{Resource: resource, Description: resource + " desc"}, &resp))
		for _, tag := range tags {
			require.Equal(t, http.StatusOK, call(t, srv, api.RouteAddTag, api.AddTagRequest{Registry: resp.Registry, Tag: tag}, nil))
		}
		return resp.Registry
	}
	r1 := newRegistry("f1", "jazz", "piano")
	newRegistry("f2", "jazz")

	assert.Equal(t, http.StatusConflict, call(t, srv, api.RouteAddTag, api.AddTagRequest{Registry: r1, Tag: "jazz"}, nil))
	assert.Equal(t, http.StatusConflict, call(t, srv, api.RouteRegisterTaggedResource, api.RegisterTaggedResourceRequest{Resource: "f1"}, nil))

	var registry domain.Registry
	require.Equal(t, http.StatusOK, call(t, srv, api.RouteGetRegistryByResource, api.ResourceRequest{Resource: "f1"}, &registry))
	assert.Equal(t, domain.Registry{Id: r1, Resource: "f1", Description: "f1 desc", Tags: []string{"jazz", "piano"}}, registry)
	assert.Equal(t, http.StatusNotFound, call(t, srv, api.RouteGetRegistryByResource, api.ResourceRequest{Resource: "nope"}, nil))

	var matches []domain.Registry
	require.Equal(t, http.StatusOK, call(t, srv, api.RouteGetRegistriesByTags, api.RegistriesByTagsRequest{Tags: []string{"jazz"}}, &matches))
	assert.Len(t, matches, 2)
	require.Equal(t, http.StatusOK, call(t, srv, api.RouteGetRegistriesByTags, api.RegistriesByTagsRequest{Tags: []string{"jazz", "piano"}}, &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "f1", matches[0].Resource)
}

func TestCORSAndHealth(t *testing.T) {
	srv := setupTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/UserAuthentication/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Empty(t, resp.Header.Get("Content-Security-Policy"))
}

func TestObjects_Traversal(t *testing.T) {
	objects, err := NewObjects(t.TempDir())
	require.NoError(t, err)

	_, err = objects.Save("../escape", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = objects.Open("u1/missing.mp3")
	assert.ErrorContains(t, err, "object not found")

	n, err := objects.Save("u1/a.mp3", strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	rc, err := objects.Open("u1/a.mp3")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "abc", string(data))
}
