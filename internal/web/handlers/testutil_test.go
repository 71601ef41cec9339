package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	databasemock "github.com/kozaktomas/face-attendance/internal/database/mock"
	visionmock "github.com/kozaktomas/face-attendance/internal/vision/mock"
)

// testEnv bundles the mocks behind a fully wired handler set.
type testEnv struct {
	provider   *visionmock.Provider
	identities *databasemock.IdentityStore
	attendance *databasemock.AttendanceStore
	recognizer *attendance.Recognizer
	enroller   *attendance.Enroller
}

// newTestEnv wires mock stores and a mock provider with the default threshold.
func newTestEnv() *testEnv {
	provider := visionmock.NewProvider()
	identities := databasemock.NewIdentityStore()
	att := databasemock.NewAttendanceStore()
	return &testEnv{
		provider:   provider,
		identities: identities,
		attendance: att,
		recognizer: attendance.NewRecognizer(provider, identities, att, 75),
		enroller:   attendance.NewEnroller(provider, identities),
	}
}

// testImagePNG returns a small encoded PNG for upload tests.
func testImagePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(4 * x), G: uint8(5 * y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// newMultipartRequest builds a multipart POST with the given form fields and
// file parts (field name → file contents, one part per entry).
func newMultipartRequest(t *testing.T, path string, fields map[string]string, files map[string][][]byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("failed to write form field %s: %v", name, err)
		}
	}
	for name, contents := range files {
		for i, data := range contents {
			part, err := writer.CreateFormFile(name, fmt.Sprintf("file%d.png", i))
			if err != nil {
				t.Fatalf("failed to create form file %s: %v", name, err)
			}
			if _, err := part.Write(data); err != nil {
				t.Fatalf("failed to write file part: %v", err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error payload
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] == "" {
		t.Errorf("expected error message in response, got: %s", recorder.Body.String())
	}
}
