package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-fileservice/pkg/fileservice"
	"github.com/tendant/simple-fileservice/pkg/fileservice/repo/memory"
	fsstorage "github.com/tendant/simple-fileservice/pkg/fileservice/storage/fs"
	"github.com/tendant/simple-fileservice/pkg/fileservice/transform"
)

// setupRouter mounts all handlers over a filesystem-backed service
func setupRouter(t *testing.T, opts ...fileservice.StoreOption) (http.Handler, fileservice.Service, string) {
	t.Helper()
	dir := t.TempDir()
	blob, err := fsstorage.New(fsstorage.Config{BaseDir: dir})
	require.NoError(t, err)
	store, err := fileservice.NewContentStore(blob, opts...)
	require.NoError(t, err)

	svc, err := fileservice.New(
		fileservice.WithContentStore(store),
		fileservice.WithUserRegistry(memory.New()),
		fileservice.WithPipeline(transform.New()),
	)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/files", NewFilesHandler(svc).Routes())
	r.Mount("/users", NewUsersHandler(svc).Routes())
	r.Mount("/rules", NewRulesHandler(svc).Routes())
	return r, svc, dir
}

func do(t *testing.T, h http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if strings.HasPrefix(body, "{") {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestFilesHandler_WriteReadDelete(t *testing.T) {
	h, _, dir := setupRouter(t)

	w := do(t, h, http.MethodPut, "/files/notes.txt", "hello api")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var written WriteFileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &written))
	assert.Equal(t, WriteFileResponse{Name: "notes.txt", Size: 9}, written)

	onDisk, err := os.ReadFile(filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello api", string(onDisk))

	w = do(t, h, http.MethodGet, "/files/notes.txt", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello api", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	w = do(t, h, http.MethodDelete, "/files/notes.txt", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodDelete, "/files/notes.txt", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, fileservice.KindNotFound, decodeError(t, w).Kind)
}

func TestFilesHandler_ErrorStatuses(t *testing.T) {
	h, _, dir := setupRouter(t, fileservice.WithMaxFileSize(8))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.txt"), []byte("0123456789"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin.dat"), []byte{0xff, 0xfe}, 0644))

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		kind   fileservice.ErrorKind
	}{
		{"missing", http.MethodGet, "/files/missing.txt", "", http.StatusNotFound, fileservice.KindNotFound},
		{"too large", http.MethodGet, "/files/big.txt", "", http.StatusRequestEntityTooLarge, fileservice.KindTooLarge},
		{"invalid encoding", http.MethodGet, "/files/bin.dat", "", http.StatusUnprocessableEntity, fileservice.KindInvalidEncoding},
		{"traversal", http.MethodGet, "/files/..%2Fetc%2Fpasswd", "", http.StatusForbidden, fileservice.KindPermissionDenied},
		{"invalid upload", http.MethodPut, "/files/x.txt", "\xff\xfe", http.StatusUnprocessableEntity, fileservice.KindInvalidEncoding},
		{"bad glob", http.MethodGet, "/files/?match=%5B", "", http.StatusBadRequest, kindInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.kind, decodeError(t, w).Kind)
		})
	}
}

func TestFilesHandler_ListAndMatch(t *testing.T) {
	h, svc, _ := setupRouter(t)
	ctx := context.Background()
	for _, name := range []string{"b.txt", "a.txt", "c.md"} {
		require.NoError(t, svc.WriteFile(ctx, name, "x"))
	}

	w := do(t, h, http.MethodGet, "/files/", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list ListFilesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []string{"a.txt", "b.txt", "c.md"}, list.Files)

	w = do(t, h, http.MethodGet, "/files/?match=*.md", "")
	require.Equal(t, http.StatusOK, w.Code)
	var matched ListFilesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &matched))
	assert.Equal(t, []string{"c.md"}, matched.Files)
}

func TestFilesHandler_TransformAndBatch(t *testing.T) {
	h, svc, _ := setupRouter(t)
	ctx := context.Background()
	require.NoError(t, svc.WriteFile(ctx, "a.txt", "hello world"))
	require.NoError(t, svc.WriteFile(ctx, "b.txt", "goodbye world"))

	w := do(t, h, http.MethodPost, "/rules/", `{"pattern":"world","replacement":"gopher"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/files/a.txt/transformed", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello gopher", w.Body.String())

	w = do(t, h, http.MethodPost, "/files/batch", `{"names":["a.txt","missing.txt","b.txt"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var batch BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
	assert.NotEmpty(t, batch.BatchID)
	assert.Equal(t, 2, batch.Succeeded)
	assert.Equal(t, 1, batch.Failed)
	require.Len(t, batch.Results, 3)
	assert.Equal(t, "hello gopher", batch.Results[0].Content)
	assert.Equal(t, fileservice.KindNotFound, batch.Results[1].Kind)
	assert.Equal(t, "goodbye gopher", batch.Results[2].Content)

	w = do(t, h, http.MethodPost, "/files/batch", `{"match":"a.*"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var matched BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &matched))
	require.Len(t, matched.Results, 1)
	assert.Equal(t, "a.txt", matched.Results[0].Name)

	w = do(t, h, http.MethodPost, "/files/batch", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, h, http.MethodPost, "/files/batch", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsersHandler(t *testing.T) {
	h, _, _ := setupRouter(t)

	w := do(t, h, http.MethodPost, "/users/", `{"name":"Alice","email":"Alice@Example.com","profile":"admin"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user fileservice.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, fileservice.User{ID: 1, Name: "Alice", Email: "alice@example.com", Profile: "admin"}, user)

	w = do(t, h, http.MethodPost, "/users/", `{"name":"Again","email":"alice@example.com"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, fileservice.KindDuplicateEmail, decodeError(t, w).Kind)

	w = do(t, h, http.MethodPost, "/users/", `{"name":"Bad","email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, fileservice.KindInvalidEmail, decodeError(t, w).Kind)

	w = do(t, h, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPut, "/users/1", `{"name":"Alice B","email":"aliceb@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "Alice B", user.Name)

	w = do(t, h, http.MethodGet, "/users/?email=aliceb@example.com", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, int64(1), user.ID)

	w = do(t, h, http.MethodGet, "/users/", "")
	require.Equal(t, http.StatusOK, w.Code)
	var users []fileservice.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 1)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/users/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/users/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/users/?email=ghost@example.com", "").Code)
}

func TestRulesHandler(t *testing.T) {
	h, _, _ := setupRouter(t)

	w := do(t, h, http.MethodGet, "/rules/", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rules RulesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
	assert.Empty(t, rules.Rules)

	assert.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/rules/", `{"pattern":"a","replacement":"b"}`).Code)
	assert.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/rules/", `{"pattern":"c","replacement":"d"}`).Code)
	w = do(t, h, http.MethodPost, "/rules/", `{"pattern":"a","replacement":"z"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
	assert.Equal(t, []transform.Rule{{Pattern: "a", Replacement: "z"}, {Pattern: "c", Replacement: "d"}}, rules.Rules)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/rules/", `{"replacement":"x"}`).Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor(&fileservice.IOError{Op: "read", Err: bytes.ErrTooLarge}))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(context.Canceled))
	assert.Equal(t, http.StatusForbidden, StatusFor(fileservice.ValidateName("..")))
}
