package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	internal_errors "github.com/itchan-dev/tunetag/shared/errors"
	"github.com/itchan-dev/tunetag/shared/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValidate(t *testing.T) {
	type TestStruct struct {
		Field1 string `json:"field1" validate:"required"`
		Field2 int    `json:"field2"`
	}

	tests := []struct {
		name        string
		requestBody string
		expectedErr *internal_errors.ErrorWithStatusCode
	}{
		{
			name:        "Valid JSON and Validation",
			requestBody: `{"field1": "value", "field2": 123}`,
		},
		{
			name:        "Optional field omitted",
			requestBody: `{"field1": "value"}`,
		},
		{
			name:        "Invalid JSON",
			requestBody: `{"field1": "value", "field2": 123`,
			expectedErr: &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400},
		},
		{
			name:        "Missing Required Field",
			requestBody: `{"field2": 123}`,
			expectedErr: &internal_errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: 400},
		},
		{
			name:        "Empty Body",
			requestBody: "",
			expectedErr: &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400},
		},
	}

	logger.InitializeTo(io.Discard, "error", false)
	defer logger.Initialize("info", false)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", bytes.NewReader([]byte(tt.requestBody)))

			err := DecodeValidate(req.Body, &TestStruct{})

			if tt.expectedErr == nil {
				assert.NoError(t, err)
				return
			}
			e, ok := err.(*internal_errors.ErrorWithStatusCode)
			require.True(t, ok, "Error should be ErrorWithStatusCode")
			assert.Equal(t, tt.expectedErr.Message, e.Message)
			assert.Equal(t, tt.expectedErr.StatusCode, e.StatusCode)
		})
	}
}

func TestWriteErrorAndStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "status code error",
			err:            &internal_errors.ErrorWithStatusCode{Message: "already registered", StatusCode: http.StatusConflict},
			expectedStatus: http.StatusConflict,
			expectedBody:   "already registered",
		},
		{
			name:           "plain error defaults to 500",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteErrorAndStatusCode(rr, tt.err)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			var body ErrorBody
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.expectedBody, body.Error)
		})
	}
}

func TestNewObjectName(t *testing.T) {
	a := NewObjectName("u1", "My Song.MP3")
	b := NewObjectName("u1", "My Song.MP3")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "u1/"))
	assert.True(t, strings.HasSuffix(a, ".mp3"))
	assert.NotContains(t, a, " ")
}

func TestGenerateUploadToken(t *testing.T) {
	token := GenerateUploadToken()
	assert.Len(t, token, 32)
	assert.NotEqual(t, token, GenerateUploadToken())
}
