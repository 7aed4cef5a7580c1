package membership

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsoniter "github.com/json-iterator/go"
)

func newTestServer(t *testing.T) (*httptest.Server, Service) {
	t.Helper()
	svc := NewService(newFakeStore(), testLogger())
	r := chi.NewRouter()
	NewHandler(svc).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHandler_CreateReader(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/readers",
		`{"library_card_number":"LIB-2026-001","first_name":"Анна","last_name":"Иванова"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// a duplicate card number is rejected
	resp = postJSON(t, srv.URL+"/readers",
		`{"library_card_number":"LIB-2026-001","first_name":"Пётр","last_name":"Смирнов"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_GetReader_StatusCodes(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/readers/" + uuid.NewString())
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/readers/not-a-uuid")
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestHandler_Login(t *testing.T) {
	srv, svc := newTestServer(t)

	_, err := svc.CreateLibrarian(context.Background(), CreateLibrarianParams{
		EmployeeNumber: "EMP-001",
		FirstName:      "Мария",
		LastName:       "Петрова",
		Password:       "s3cret-pass",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/librarians/login",
			`{"employee_number":"EMP-001","password":"s3cret-pass"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// the password hash never leaves the server
		var body map[string]any
		require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&body))
		assert.NotContains(t, body, "password_hash")
		assert.NotContains(t, body, "salt")
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/librarians/login",
			`{"employee_number":"EMP-001","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown employee number", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/librarians/login",
			`{"employee_number":"EMP-999","password":"s3cret-pass"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
