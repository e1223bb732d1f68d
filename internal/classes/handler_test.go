package classes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/hamzamohiuddin1/msaconnect/internal/auth"
	"github.com/hamzamohiuddin1/msaconnect/internal/classes"
	"github.com/hamzamohiuddin1/msaconnect/internal/config"
	"github.com/hamzamohiuddin1/msaconnect/internal/metrics"
	"github.com/hamzamohiuddin1/msaconnect/internal/user/usertest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupAPI wires the auth and class handlers onto one router the way the
// application does, with an in-memory repository and a recording publisher.
func setupAPI(t *testing.T) (chi.Router, *fakePublisher) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing")

	repo := usertest.NewRepository()
	publisher := &fakePublisher{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	m := metrics.NewMock()

	cfg := config.AuthConfig{EmailDomain: "@ucsd.edu"}
	authService := auth.NewService(repo, nil, cfg, logger, m)
	authHandler := auth.NewHandler(authService, logger)
	classHandler := classes.NewHandler(classes.NewService(repo, publisher, logger, m), logger)

	router := chi.NewRouter()
	authHandler.RegisterRoutes(router)
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(logger))
		authHandler.RegisterProtectedRoutes(r)
		classHandler.RegisterRoutes(r)
	})

	return router, publisher
}

func doJSON(router chi.Router, method, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// registerUser creates a confirmed account through the public endpoint and
// returns its session token.
func registerUser(t *testing.T, router chi.Router, name, email, gender string) string {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/auth/register", map[string]interface{}{
		"name":        name,
		"email":       email,
		"password":    "password123",
		"phoneNumber": "8581234567",
		"major":       "Computer Science",
		"year":        "Junior",
		"gender":      gender,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp auth.AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func putClasses(t *testing.T, router chi.Router, token string, entries ...map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(router, http.MethodPut, "/classes", map[string]interface{}{"classes": entries}, token)
}

func TestClassEndpoints_RequireAuth(t *testing.T) {
	router, _ := setupAPI(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/classes"},
		{http.MethodPut, "/classes"},
		{http.MethodGet, "/classes/classmates/CSE101/A00"},
		{http.MethodPost, "/classes/send-new-classmate-email"},
	} {
		t.Run(fmt.Sprintf("%s %s", tc.method, tc.path), func(t *testing.T) {
			w := doJSON(router, tc.method, tc.path, nil, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestGetClasses_EmptyForNewUser(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "Solo", "solo@ucsd.edu", "Brother")

	w := doJSON(router, http.MethodGet, "/classes", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Classes []map[string]string `json:"classes"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotNil(t, resp.Classes)
	assert.Empty(t, resp.Classes)
}

func TestUpdateClasses_NormalizesInput(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "Solo", "solo@ucsd.edu", "Brother")

	w := putClasses(t, router, token,
		map[string]string{"courseId": "cse 101", "sectionCode": "a00", "discussionCode": "a01"},
	)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Message string `json:"message"`
		Classes []struct {
			CourseID       string `json:"courseId"`
			SectionCode    string `json:"sectionCode"`
			DiscussionCode string `json:"discussionCode"`
		} `json:"classes"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Classes, 1)
	assert.Equal(t, "CSE101", resp.Classes[0].CourseID)
	assert.Equal(t, "A00", resp.Classes[0].SectionCode)
	assert.Equal(t, "A01", resp.Classes[0].DiscussionCode)
}

func TestUpdateClasses_RejectsBlankCourse(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "Solo", "solo@ucsd.edu", "Brother")

	w := putClasses(t, router, token,
		map[string]string{"courseId": "  ", "sectionCode": "A00"},
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFindClassmates_EndToEnd(t *testing.T) {
	router, _ := setupAPI(t)

	tokenA := registerUser(t, router, "Aisha", "aisha@ucsd.edu", "Sister")
	tokenB := registerUser(t, router, "Bilal", "bilal@ucsd.edu", "Brother")

	// Two different spellings of the same course must land in one bucket.
	require.Equal(t, http.StatusOK, putClasses(t, router, tokenA,
		map[string]string{"courseId": "CSE101", "sectionCode": "A00"},
	).Code)
	require.Equal(t, http.StatusOK, putClasses(t, router, tokenB,
		map[string]string{"courseId": "cse 101", "sectionCode": "A00"},
	).Code)

	w := doJSON(router, http.MethodGet, "/classes/classmates/CSE101/A00", nil, tokenA)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp classes.ClassmatesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "CSE101", resp.CourseID)
	assert.Equal(t, "A00", resp.SectionCode)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "bilal@ucsd.edu", resp.Classmates[0].Email)
	assert.Equal(t, "A00", resp.Classmates[0].SectionCode)

	// The raw response must never leak credentials.
	assert.NotContains(t, w.Body.String(), "password")
}

func TestFindClassmates_GenderPreference(t *testing.T) {
	router, _ := setupAPI(t)

	tokenA := registerUser(t, router, "Aisha", "aisha@ucsd.edu", "Sister")
	tokenB := registerUser(t, router, "Bilal", "bilal@ucsd.edu", "Brother")

	// Aisha opts into same-gender visibility.
	w := doJSON(router, http.MethodPut, "/auth/profile", map[string]interface{}{
		"genderPreference": true,
	}, tokenA)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Equal(t, http.StatusOK, putClasses(t, router, tokenA,
		map[string]string{"courseId": "CSE101", "sectionCode": "A00"},
	).Code)
	require.Equal(t, http.StatusOK, putClasses(t, router, tokenB,
		map[string]string{"courseId": "CSE101", "sectionCode": "A00"},
	).Code)

	// Aisha sees no Brothers.
	w = doJSON(router, http.MethodGet, "/classes/classmates/CSE101/A00", nil, tokenA)
	require.Equal(t, http.StatusOK, w.Code)
	var respA classes.ClassmatesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&respA))
	assert.Equal(t, 0, respA.Count)

	// Bilal does not see Aisha either, her preference shields her.
	w = doJSON(router, http.MethodGet, "/classes/classmates/CSE101/A00", nil, tokenB)
	require.Equal(t, http.StatusOK, w.Code)
	var respB classes.ClassmatesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&respB))
	assert.Equal(t, 0, respB.Count)
}

func TestSendNewClassmateEmail(t *testing.T) {
	router, publisher := setupAPI(t)

	tokenA := registerUser(t, router, "Aisha", "aisha@ucsd.edu", "Sister")
	tokenB := registerUser(t, router, "Bushra", "bushra@ucsd.edu", "Sister")

	require.Equal(t, http.StatusOK, putClasses(t, router, tokenA,
		map[string]string{"courseId": "CSE101", "sectionCode": "A00"},
	).Code)
	require.Equal(t, http.StatusOK, putClasses(t, router, tokenB,
		map[string]string{"courseId": "CSE101", "sectionCode": "B00"},
	).Code)

	w := doJSON(router, http.MethodPost, "/classes/send-new-classmate-email", map[string]string{
		"courseId":    "cse 101",
		"sectionCode": "A00",
	}, tokenA)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Message string `json:"message"`
		Count   int    `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)

	events := publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "bushra@ucsd.edu", events[0].RecipientEmail)
	assert.Equal(t, "Bushra", events[0].RecipientName)
	assert.Equal(t, "Aisha", events[0].ClassmateName)
	assert.Equal(t, "CSE101", events[0].CourseID)
	assert.Equal(t, "A00", events[0].SectionCode)
}

func TestSendNewClassmateEmail_MissingFields(t *testing.T) {
	router, _ := setupAPI(t)
	token := registerUser(t, router, "Solo", "solo@ucsd.edu", "Brother")

	w := doJSON(router, http.MethodPost, "/classes/send-new-classmate-email", map[string]string{
		"courseId": "CSE101",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
