package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/test", nil)
	handler(c)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return resp
}

func TestSuccess(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Success(c, map[string]string{"name": "test"})
	})

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	resp := parseResponse(t, w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
	if resp.Message != "ok" {
		t.Errorf("expected message 'ok', got %q", resp.Message)
	}
}

func TestCreated(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Created(c, map[string]int{"id": 1})
	})

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	resp := parseResponse(t, w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestBadRequest(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		BadRequest(c, "invalid input")
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	resp := parseResponse(t, w)
	if resp.Kind != KindValidation {
		t.Errorf("expected kind %q, got %q", KindValidation, resp.Kind)
	}
	if resp.Message != "invalid input" {
		t.Errorf("expected message 'invalid input', got %q", resp.Message)
	}
}

func TestError_StatusPerKind(t *testing.T) {
	cases := []struct {
		err        *AppError
		wantStatus int
		wantKind   string
	}{
		{NewValidation("bad date"), http.StatusBadRequest, KindValidation},
		{NewNotFound("no such sprint"), http.StatusNotFound, KindNotFound},
		{NewConflict("email taken"), http.StatusConflict, KindConflict},
		{NewGeneration("provider down"), http.StatusBadGateway, KindGeneration},
		{NewCredential("wrong password"), http.StatusUnauthorized, KindCredential},
	}

	for _, tc := range cases {
		w := performRequest(func(c *gin.Context) {
			Error(c, tc.err)
		})
		if w.Code != tc.wantStatus {
			t.Errorf("%s: expected status %d, got %d", tc.wantKind, tc.wantStatus, w.Code)
		}
		resp := parseResponse(t, w)
		if resp.Kind != tc.wantKind {
			t.Errorf("expected kind %q, got %q", tc.wantKind, resp.Kind)
		}
		if resp.Message != tc.err.Message {
			t.Errorf("expected message %q, got %q", tc.err.Message, resp.Message)
		}
	}
}

func TestError_WithGenericError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, errors.New("sql: connection refused"))
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	resp := parseResponse(t, w)
	if resp.Kind != KindInternal {
		t.Errorf("expected kind %q, got %q", KindInternal, resp.Kind)
	}
	if resp.Message != "internal server error" {
		t.Errorf("internal details leaked: %q", resp.Message)
	}
}

func TestError_WrappedAppError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		wrapped := errorWrapper{NewNotFound("task not found")}
		Error(c, wrapped)
	})

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

type errorWrapper struct{ inner error }

func (w errorWrapper) Error() string { return "wrapped: " + w.inner.Error() }
func (w errorWrapper) Unwrap() error { return w.inner }

func TestAppError_ErrorInterface(t *testing.T) {
	err := NewNotFound("user not found")
	if err.Error() != "user not found" {
		t.Errorf("expected 'user not found', got %q", err.Error())
	}
}
