package http

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"provd/internal/config"
	"provd/internal/domain"
	"provd/internal/infra/blobfs"
	"provd/internal/infra/signer"
	"provd/internal/infra/store"
	"provd/internal/usecase"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, cfg config.Config, limiter domain.RateLimiter) http.Handler {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signingSvc, err := signer.New(key, nil)
	if err != nil {
		t.Fatalf("init signer: %v", err)
	}
	blobs, err := blobfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("init blob store: %v", err)
	}
	if cfg.ClaimGenerator == "" {
		cfg.ClaimGenerator = "provd"
	}
	svc := &usecase.ManifestService{
		Builder: usecase.NewManifestBuilder(cfg.ClaimGenerator, nil),
		Signer:  signingSvc,
		Records: store.NewMemory(),
		Blobs:   blobs,
	}
	return NewServerWithDeps(cfg, ServerDeps{Service: svc, RateLimiter: limiter}).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func manifestBody(fileData string) string {
	body, _ := json.Marshal(map[string]any{
		"fileData": fileData,
		"contentCredentials": map[string]any{
			"format": "image/jpeg",
			"title":  "Sunset",
		},
	})
	return string(body)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestCreateManifestEndpoint(t *testing.T) {
	handler := newTestServer(t, config.Config{}, nil)
	fileData := base64.StdEncoding.EncodeToString([]byte("jpeg bytes"))

	w := doJSON(t, handler, http.MethodPost, "/manifests", manifestBody(fileData))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp manifestResponse
	decodeBody(t, w, &resp)
	if len(resp.ManifestID) != 36 {
		t.Errorf("manifestId = %q", resp.ManifestID)
	}
	if _, err := base64.StdEncoding.DecodeString(resp.SignedAsset); err != nil {
		t.Errorf("signedAsset is not base64: %v", err)
	}

	// Record is retrievable and re-validates clean.
	w = doJSON(t, handler, http.MethodGet, "/manifests/"+resp.ManifestID+"/validate", "")
	if w.Code != http.StatusOK {
		t.Fatalf("validate status = %d, body %s", w.Code, w.Body.String())
	}
	var record struct {
		ManifestID string             `json:"manifestId"`
		Signed     bool               `json:"signed"`
		Validation validationResponse `json:"validation"`
	}
	decodeBody(t, w, &record)
	if record.ManifestID != resp.ManifestID {
		t.Errorf("record manifestId = %q", record.ManifestID)
	}
	if record.Signed {
		t.Error("freshly created record reports signed=true")
	}
	if !record.Validation.IsValid {
		t.Errorf("validation = %+v", record.Validation)
	}
}

func TestUpdateManifestEndpoint(t *testing.T) {
	handler := newTestServer(t, config.Config{}, nil)
	fileData := base64.StdEncoding.EncodeToString([]byte("edited bytes"))

	w := doJSON(t, handler, http.MethodPost, "/manifests/update", manifestBody(fileData))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp manifestResponse
	decodeBody(t, w, &resp)

	w = doJSON(t, handler, http.MethodGet, "/manifests/"+resp.ManifestID+"/validate", "")
	var record struct {
		Signed     bool               `json:"signed"`
		Validation validationResponse `json:"validation"`
	}
	decodeBody(t, w, &record)
	if !record.Signed {
		t.Error("update record reports signed=false")
	}
	if !record.Validation.IsValid {
		t.Errorf("validation = %+v", record.Validation)
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	handler := newTestServer(t, config.Config{}, nil)
	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"missing body", "", "Request body is missing"},
		{"missing fileData", `{"contentCredentials":{"format":"image/jpeg"}}`, "fileData is required"},
		{"missing credentials", `{"fileData":"aGk="}`, "contentCredentials is required"},
		{"missing format", `{"fileData":"aGk=","contentCredentials":{"title":"x"}}`, "format is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, handler, http.MethodPost, "/manifests", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}
			var resp errorResponse
			decodeBody(t, w, &resp)
			if resp.Code != "INVALID_INPUT" {
				t.Errorf("code = %q", resp.Code)
			}
			if resp.Message != tc.message {
				t.Errorf("message = %q, want %q", resp.Message, tc.message)
			}
		})
	}
}

func TestCreateRejectsMalformedJSON(t *testing.T) {
	handler := newTestServer(t, config.Config{}, nil)
	w := doJSON(t, handler, http.MethodPost, "/manifests", `{"fileData": `)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var resp errorResponse
	decodeBody(t, w, &resp)
	if resp.Code != "INVALID_JSON" {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestCreateRejectsOversizedBody(t *testing.T) {
	handler := newTestServer(t, config.Config{MaxBodyBytes: 64}, nil)
	big := manifestBody(base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("a"), 256)))
	w := doJSON(t, handler, http.MethodPost, "/manifests", big)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp errorResponse
	decodeBody(t, w, &resp)
	if resp.Code != "BODY_TOO_LARGE" {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestValidateByIDUnknownManifest(t *testing.T) {
	handler := newTestServer(t, config.Config{}, nil)
	w := doJSON(t, handler, http.MethodGet, "/manifests/2c6f5f3a-0000-0000-0000-000000000000/validate", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp errorResponse
	decodeBody(t, w, &resp)
	if resp.Code != "NOT_FOUND" {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestValidateByFileEndpoint(t *testing.T) {
	handler := newTestServer(t, config.Config{}, nil)

	// Unsigned bytes report no claim, not an error.
	body, _ := json.Marshal(map[string]string{
		"fileData": base64.StdEncoding.EncodeToString([]byte("plain")),
		"format":   "image/jpeg",
	})
	w := doJSON(t, handler, http.MethodPost, "/manifests/validate", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp validationResponse
	decodeBody(t, w, &resp)
	if resp.IsValid {
		t.Error("unsigned bytes reported valid")
	}
	if resp.Message != "No claim found" {
		t.Errorf("message = %v", resp.Message)
	}
}

func TestValidateByFileRoundTrip(t *testing.T) {
	handler := newTestServer(t, config.Config{}, nil)
	fileData := base64.StdEncoding.EncodeToString([]byte("jpeg bytes"))

	w := doJSON(t, handler, http.MethodPost, "/manifests", manifestBody(fileData))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	var created manifestResponse
	decodeBody(t, w, &created)

	body, _ := json.Marshal(map[string]string{
		"fileData": created.SignedAsset,
		"format":   "image/jpeg",
	})
	w = doJSON(t, handler, http.MethodPost, "/manifests/validate", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("validate status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		IsValid bool `json:"isValid"`
		Message struct {
			Title string `json:"title"`
		} `json:"message"`
	}
	decodeBody(t, w, &resp)
	if !resp.IsValid {
		t.Fatalf("signed bytes reported invalid: %s", w.Body.String())
	}
	if resp.Message.Title != "Sunset" {
		t.Errorf("active manifest title = %q", resp.Message.Title)
	}
}

func TestValidateByFileMissingFormat(t *testing.T) {
	handler := newTestServer(t, config.Config{}, nil)
	w := doJSON(t, handler, http.MethodPost, "/manifests/validate", `{"fileData":"aGk="}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var resp errorResponse
	decodeBody(t, w, &resp)
	if resp.Message != "format is required" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestUnknownRoute(t *testing.T) {
	handler := newTestServer(t, config.Config{}, nil)
	w := doJSON(t, handler, http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestServer(t, config.Config{}, nil)
	w := doJSON(t, handler, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string, int, time.Duration) (domain.RateLimitDecision, error) {
	return domain.RateLimitDecision{
		Allowed:   false,
		Limit:     1,
		Remaining: 0,
		ResetAt:   time.Now().Add(30 * time.Second),
	}, nil
}

func TestRateLimitedRequestGets429(t *testing.T) {
	cfg := config.Config{RateLimitRequests: 1, RateLimitWindowSeconds: 60}
	handler := newTestServer(t, cfg, denyLimiter{})

	w := doJSON(t, handler, http.MethodPost, "/manifests", manifestBody("aGk="))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if w.Header().Get("RateLimit-Limit") != "1" {
		t.Errorf("RateLimit-Limit = %q", w.Header().Get("RateLimit-Limit"))
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
	var resp errorResponse
	decodeBody(t, w, &resp)
	if resp.Code != "RATE_LIMITED" {
		t.Errorf("code = %q", resp.Code)
	}
}
