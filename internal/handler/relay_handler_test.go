package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"mediarelay/internal/config"
	"mediarelay/internal/domain"
	"mediarelay/internal/handler"
	"mediarelay/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRelayHandler(t *testing.T, svc *mocks.MockRelayService) *handler.RelayHandler {
	return handler.NewRelayHandler(svc, &config.UploadConfig{MaxMemoryMB: 1}, zaptest.NewLogger(t))
}

func multipartBody(t *testing.T, field string, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, n := range names {
		part, err := writer.CreateFormFile(field, n)
		require.NoError(t, err)
		_, _ = part.Write([]byte("content of " + n))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handler.ErrorResponseBody {
	t.Helper()
	var resp handler.ErrorResponseBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRelayHandler_Upload_Success(t *testing.T) {
	svc := new(mocks.MockRelayService)
	h := newRelayHandler(t, svc)

	assets := []domain.StoredAsset{
		{URL: "https://cdn/uploads/a.jpg", PublicID: "uploads/a"},
		{URL: "https://cdn/uploads/b.jpg", PublicID: "uploads/b"},
	}
	svc.On("Upload", mock.Anything, mock.MatchedBy(func(files []*multipart.FileHeader) bool {
		return len(files) == 2 && files[0].Filename == "a.jpg" && files[1].Filename == "b.jpg"
	})).Return(assets, nil)

	body, contentType := multipartBody(t, "files", "a.jpg", "b.jpg")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/upload", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []domain.StoredAsset
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, assets, got)
	assert.JSONEq(t,
		`[{"url":"https://cdn/uploads/a.jpg","public_id":"uploads/a"},{"url":"https://cdn/uploads/b.jpg","public_id":"uploads/b"}]`,
		w.Body.String())
	svc.AssertExpectations(t)
}

func TestRelayHandler_Upload_NotMultipart(t *testing.T) {
	svc := new(mocks.MockRelayService)
	h := newRelayHandler(t, svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/upload", nil)

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No files uploaded", decodeError(t, w).Error)
	svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestRelayHandler_Upload_OtherFieldOnly(t *testing.T) {
	svc := new(mocks.MockRelayService)
	h := newRelayHandler(t, svc)

	svc.On("Upload", mock.Anything, mock.MatchedBy(func(files []*multipart.FileHeader) bool {
		return len(files) == 0
	})).Return(nil, domain.ErrNoFilesProvided)

	body, contentType := multipartBody(t, "attachment", "a.jpg")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/upload", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, handler.ErrorResponseBody{Error: "No files uploaded"}, decodeError(t, w))
}

func TestRelayHandler_Upload_StoreFailure(t *testing.T) {
	svc := new(mocks.MockRelayService)
	h := newRelayHandler(t, svc)

	svc.On("Upload", mock.Anything, mock.Anything).
		Return(nil, domain.NewStoreError(domain.ErrUploadFailed, errors.New("Invalid image file")))

	body, contentType := multipartBody(t, "files", "a.jpg")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/upload", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Upload failed","details":"Invalid image file"}`, w.Body.String())
}

func TestRelayHandler_Upload_FileTooLarge(t *testing.T) {
	svc := new(mocks.MockRelayService)
	h := newRelayHandler(t, svc)

	svc.On("Upload", mock.Anything, mock.Anything).
		Return(nil, domain.ErrFileTooLarge)

	body, contentType := multipartBody(t, "files", "a.jpg")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/upload", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "File too large", decodeError(t, w).Error)
}

func TestRelayHandler_Upload_RequestBodyOverLimit(t *testing.T) {
	svc := new(mocks.MockRelayService)
	h := handler.NewRelayHandler(svc, &config.UploadConfig{MaxMemoryMB: 1, MaxRequestSizeMB: 1}, zaptest.NewLogger(t))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "huge.bin")
	require.NoError(t, err)
	_, _ = part.Write(bytes.Repeat([]byte("x"), 2<<20))
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/upload", body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())

	h.Upload(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "File too large", resp.Error)
	assert.Contains(t, resp.Details, "request body exceeds")
	svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestRelayHandler_Delete_PassesResultThrough(t *testing.T) {
	svc := new(mocks.MockRelayService)
	h := newRelayHandler(t, svc)

	result := &domain.DestroyResult{Result: "not found"}
	svc.On("Delete", mock.Anything, "https://host/folder/name.jpg").Return(result, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/delete",
		strings.NewReader(`{"url":"https://host/folder/name.jpg"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	expected, _ := json.Marshal(result)
	assert.JSONEq(t, string(expected), w.Body.String())
	svc.AssertExpectations(t)
}

func TestRelayHandler_Delete_EmptyBody(t *testing.T) {
	svc := new(mocks.MockRelayService)
	h := newRelayHandler(t, svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/delete", http.NoBody)
	c.Request.Header.Set("Content-Type", "application/json")

	h.Delete(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"No URL provided"}`, w.Body.String())
	svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRelayHandler_Delete_MissingURL(t *testing.T) {
	svc := new(mocks.MockRelayService)
	h := newRelayHandler(t, svc)

	svc.On("Delete", mock.Anything, "").Return(nil, domain.ErrNoURLProvided)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/delete", strings.NewReader(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Delete(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No URL provided", decodeError(t, w).Error)
}

func TestRelayHandler_Delete_StoreFailure(t *testing.T) {
	svc := new(mocks.MockRelayService)
	h := newRelayHandler(t, svc)

	svc.On("Delete", mock.Anything, "https://host/folder/name.jpg").
		Return(nil, domain.NewStoreError(domain.ErrDeleteFailed, errors.New("Must supply api_key")))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/delete",
		strings.NewReader(`{"url":"https://host/folder/name.jpg"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Delete(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Delete failed","details":"Must supply api_key"}`, w.Body.String())
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{domain.ErrNoFilesProvided, http.StatusBadRequest, "No files uploaded"},
		{domain.ErrNoURLProvided, http.StatusBadRequest, "No URL provided"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "File too large"},
		{domain.NewStoreError(domain.ErrUploadFailed, errors.New("x")), http.StatusInternalServerError, "Upload failed"},
		{domain.NewStoreError(domain.ErrDeleteFailed, errors.New("x")), http.StatusInternalServerError, "Delete failed"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		status, msg := handler.MapDomainError(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.msg, msg, tt.err.Error())
	}
}
