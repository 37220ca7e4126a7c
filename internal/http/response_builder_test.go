package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wedplan/internal/core"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusCreated).
		BodyHTML("<p>test</p>").
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Body.String() != "<p>test</p>" {
		t.Errorf("Body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerChanged("guests").
		TriggerFormReset().
		TriggerSuccessNotification("Guest added").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("HX-Trigger header not set")
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(trigger), &decoded); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	for _, key := range []string{"guests:changed", "form:reset", "show-notification"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("HX-Trigger missing %q: %s", key, trigger)
		}
	}
	if !strings.Contains(trigger, `"type":"success"`) {
		t.Errorf("notification type missing: %s", trigger)
	}
}

func TestHTMXResponseBuilder_RedirectAndHeader(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().Redirect("/login").Header("X-Custom", "v").Write(w)

	if got := w.Header().Get("HX-Redirect"); got != "/login" {
		t.Errorf("HX-Redirect = %q", got)
	}
	if got := w.Header().Get("X-Custom"); got != "v" {
		t.Errorf("X-Custom = %q", got)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *HTMXResponseBuilder
		code    int
	}{
		{"bad request", BadRequestError("bad"), http.StatusBadRequest},
		{"not found", NotFoundError("missing"), http.StatusNotFound},
		{"server error", InternalServerError("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.code {
				t.Errorf("Status = %d, want %d", w.Code, tt.code)
			}
			if !strings.Contains(w.Body.String(), `class="error"`) {
				t.Errorf("Body = %q", w.Body.String())
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(http.StatusBadRequest, "<script>alert(1)</script>").Write(w)
	if strings.Contains(w.Body.String(), "<script>") {
		t.Errorf("message not escaped: %s", w.Body.String())
	}
}

func TestValidationResponses(t *testing.T) {
	errs := core.ValidationErrors{"name": "is required", "side": "must be bride or groom"}

	w := httptest.NewRecorder()
	UnprocessableEntityError(errs).Write(w)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Status = %d", w.Code)
	}
	body := w.Body.String()
	if strings.Index(body, `data-field="name"`) > strings.Index(body, `data-field="side"`) {
		t.Errorf("fields should be sorted: %s", body)
	}

	w = httptest.NewRecorder()
	JSONValidationError(errs).Write(w)
	var decoded struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Message != "The given data was invalid." || decoded.Errors["side"] != "must be bride or groom" {
		t.Fatalf("unexpected body %+v", decoded)
	}
}

func TestJSONErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	JSONErrorResponse(http.StatusUnauthorized, "Unauthenticated.").Write(w)
	if w.Code != http.StatusUnauthorized || w.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("status=%d content-type=%q", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), `"message":"Unauthenticated."`) {
		t.Errorf("Body = %s", w.Body.String())
	}
}

func TestFormatMoney(t *testing.T) {
	tests := map[int64]string{
		0:        "€0.00",
		123450:   "€1,234.50",
		-5000:    "-€50.00",
		20000000: "€200,000.00",
	}
	for cents, want := range tests {
		if got := formatMoney(core.Money{Cents: cents}); got != want {
			t.Errorf("formatMoney(%d) = %q, want %q", cents, got, want)
		}
	}
}
