package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/loandesk/loandesk/internal/config"
	"github.com/loandesk/loandesk/internal/logging"
)

func testConfig() config.Config {
	return config.Config{
		AppName:          "LoanDesk",
		AppEnv:           "test",
		Port:             "5001",
		LogLevel:         "error",
		CORSAllowOrigins: "*",
		ShutdownPeriod:   time.Second,
		IdempotencyTTL:   time.Minute,
		OTP:              config.OTPConfig{Code: "0000", Length: 6},
	}
}

func newTestApp(t *testing.T, cache *redis.Client) *fiber.App {
	t.Helper()
	srv, err := New(testConfig(), nil, cache, logging.Discard())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv.App()
}

type response struct {
	status int
	body   map[string]any
}

func call(t *testing.T, app *fiber.App, method, path, token, body string, headers ...string) response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	out := response{status: resp.StatusCode, body: map[string]any{}}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out.body); err != nil {
			t.Fatalf("%s %s: invalid json %q: %v", method, path, raw, err)
		}
	}
	return out
}

func login(t *testing.T, app *fiber.App, phone string) string {
	t.Helper()
	res := call(t, app, fiber.MethodPost, "/api/auth/request-otp", "", `{"phone_number":"`+phone+`"}`)
	if res.status != fiber.StatusOK || res.body["message"] != "OTP sent successfully" || res.body["phone_number"] != phone {
		t.Fatalf("request otp: %d %v", res.status, res.body)
	}
	res = call(t, app, fiber.MethodPost, "/api/auth/verify-otp", "", `{"phone_number":"`+phone+`","otp":"0000"}`)
	if res.status != fiber.StatusOK || res.body["message"] != "Authentication successful" {
		t.Fatalf("verify otp: %d %v", res.status, res.body)
	}
	token, _ := res.body["session_token"].(string)
	if token == "" {
		t.Fatalf("missing session token: %v", res.body)
	}
	return token
}

func applicationBody(dob, amount string) string {
	return `{"full_name":"John Doe","national_id":"CM12345","email":"john@example.com",` +
		`"date_of_birth":"` + dob + `","loan_amount":` + amount + `,"loan_term":30,"purpose":"business"}`
}

func TestWelcomeAndHealth(t *testing.T) {
	app := newTestApp(t, nil)

	res := call(t, app, fiber.MethodGet, "/", "", "")
	if res.status != fiber.StatusOK || res.body["message"] != "Welcome to the Loan Application API" || res.body["version"] != "1.0.0" {
		t.Fatalf("unexpected welcome: %d %v", res.status, res.body)
	}

	res = call(t, app, fiber.MethodGet, "/api/health", "", "")
	if res.status != fiber.StatusOK || res.body["status"] != "healthy" || res.body["timestamp"] == "" {
		t.Fatalf("unexpected health: %d %v", res.status, res.body)
	}
}

func TestLoanApplicationFlow(t *testing.T) {
	app := newTestApp(t, nil)
	token := login(t, app, "+256700000001")

	res := call(t, app, fiber.MethodGet, "/api/application/status", token, "")
	if res.status != fiber.StatusOK || res.body["has_application"] != false {
		t.Fatalf("expected no application: %d %v", res.status, res.body)
	}

	res = call(t, app, fiber.MethodPost, "/api/application/submit", token, applicationBody("1990-01-01", "45000"))
	if res.status != fiber.StatusCreated || res.body["message"] != "Application submitted successfully" {
		t.Fatalf("submit: %d %v", res.status, res.body)
	}
	submitted, _ := res.body["application"].(map[string]any)
	if submitted["status"] != "approved" || submitted["phone_number"] != "+256700000001" || submitted["loan_amount"] != float64(45000) {
		t.Fatalf("unexpected application: %v", submitted)
	}
	if submitted["decision_reason"] != "Automated decision based on initial criteria" {
		t.Fatalf("unexpected reason: %v", submitted["decision_reason"])
	}

	res = call(t, app, fiber.MethodGet, "/api/application/status", token, "")
	if res.status != fiber.StatusOK || res.body["has_application"] != true {
		t.Fatalf("expected stored application: %d %v", res.status, res.body)
	}
	stored, _ := res.body["application"].(map[string]any)
	if stored["id"] != submitted["id"] || stored["status"] != "approved" {
		t.Fatalf("status mismatch: %v vs %v", stored, submitted)
	}

	res = call(t, app, fiber.MethodPost, "/api/application/submit", token, applicationBody("1990-01-01", "45000"))
	if res.status != fiber.StatusBadRequest || res.body["error"] != "Application already exists" {
		t.Fatalf("expected duplicate rejection: %d %v", res.status, res.body)
	}

	res = call(t, app, fiber.MethodGet, "/api/me", token, "")
	if res.status != fiber.StatusOK || res.body["phone_number"] != "+256700000001" {
		t.Fatalf("unexpected profile: %d %v", res.status, res.body)
	}
}

func TestDecisionOutcomes(t *testing.T) {
	app := newTestApp(t, nil)
	cases := []struct {
		phone  string
		dob    string
		amount string
		want   string
	}{
		{"+256700000011", "1990-01-01", "1500000", "pending"},
		{"+256700000012", "1960-01-01", "45000", "pending"},
		{"+256700000013", "1990-01-01", "45000", "approved"},
		{"+256700000014", "1990-01-01", "60000", "approved"},
	}
	for _, tc := range cases {
		token := login(t, app, tc.phone)
		res := call(t, app, fiber.MethodPost, "/api/application/submit", token, applicationBody(tc.dob, tc.amount))
		if res.status != fiber.StatusCreated {
			t.Fatalf("%s: submit %d %v", tc.phone, res.status, res.body)
		}
		got, _ := res.body["application"].(map[string]any)
		if got["status"] != tc.want {
			t.Fatalf("%s: expected %s got %v", tc.phone, tc.want, got["status"])
		}
	}
}

func TestAuthFailures(t *testing.T) {
	app := newTestApp(t, nil)

	res := call(t, app, fiber.MethodPost, "/api/auth/request-otp", "", `{"phone_number":"invalid"}`)
	if res.status != fiber.StatusBadRequest || res.body["error"] != "Invalid phone number format" {
		t.Fatalf("expected invalid phone: %d %v", res.status, res.body)
	}

	res = call(t, app, fiber.MethodPost, "/api/auth/verify-otp", "", `{"phone_number":"+256700000099","otp":"0000"}`)
	if res.status != fiber.StatusUnauthorized || res.body["error"] != "Invalid OTP" {
		t.Fatalf("expected invalid otp without challenge: %d %v", res.status, res.body)
	}

	call(t, app, fiber.MethodPost, "/api/auth/request-otp", "", `{"phone_number":"+256700000099"}`)
	res = call(t, app, fiber.MethodPost, "/api/auth/verify-otp", "", `{"phone_number":"+256700000099","otp":"1234"}`)
	if res.status != fiber.StatusUnauthorized {
		t.Fatalf("expected wrong code rejected: %d %v", res.status, res.body)
	}

	for _, path := range []string{"/api/application/status", "/api/me"} {
		res = call(t, app, fiber.MethodGet, path, "", "")
		if res.status != fiber.StatusUnauthorized || res.body["error"] != "Unauthorized" {
			t.Fatalf("%s: expected 401: %d %v", path, res.status, res.body)
		}
		res = call(t, app, fiber.MethodGet, path, "made-up-token", "")
		if res.status != fiber.StatusUnauthorized {
			t.Fatalf("%s: expected 401 for unknown token: %d %v", path, res.status, res.body)
		}
	}
	res = call(t, app, fiber.MethodPost, "/api/application/submit", "", applicationBody("1990-01-01", "45000"))
	if res.status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 on submit: %d %v", res.status, res.body)
	}
}

func TestSubmitValidationErrors(t *testing.T) {
	app := newTestApp(t, nil)
	token := login(t, app, "+256700000021")

	body := `{"full_name":"J","national_id":"CM12345","email":"invalid-email","date_of_birth":"2015-01-01",` +
		`"loan_amount":500,"loan_term":20,"purpose":"business"}`
	res := call(t, app, fiber.MethodPost, "/api/application/submit", token, body)
	if res.status != fiber.StatusBadRequest {
		t.Fatalf("expected 400: %d %v", res.status, res.body)
	}
	errs, _ := res.body["errors"].(map[string]any)
	for _, field := range []string{"full_name", "email", "date_of_birth", "loan_amount", "loan_term"} {
		if _, ok := errs[field]; !ok {
			t.Fatalf("expected error for %s: %v", field, errs)
		}
	}
	if _, ok := errs["national_id"]; ok {
		t.Fatalf("national_id should be valid: %v", errs)
	}

	res = call(t, app, fiber.MethodGet, "/api/application/status", token, "")
	if res.body["has_application"] != false {
		t.Fatalf("invalid submission must not be stored: %v", res.body)
	}

	res = call(t, app, fiber.MethodPost, "/api/application/submit", token, `{not json`)
	if res.status != fiber.StatusBadRequest || res.body["error"] != "Invalid request body" {
		t.Fatalf("expected malformed body rejection: %d %v", res.status, res.body)
	}
}

func TestRedisBackedFlowWithIdempotency(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := newTestApp(t, cache)
	token := login(t, app, "+256700000031")

	first := call(t, app, fiber.MethodPost, "/api/application/submit", token, applicationBody("1990-01-01", "45000"), "Idempotency-Key", "sub-1")
	if first.status != fiber.StatusCreated {
		t.Fatalf("submit: %d %v", first.status, first.body)
	}
	replay := call(t, app, fiber.MethodPost, "/api/application/submit", token, applicationBody("1990-01-01", "45000"), "Idempotency-Key", "sub-1")
	if replay.status != fiber.StatusCreated {
		t.Fatalf("expected replayed 201: %d %v", replay.status, replay.body)
	}
	a, _ := first.body["application"].(map[string]any)
	b, _ := replay.body["application"].(map[string]any)
	if a["id"] != b["id"] {
		t.Fatalf("expected identical replay, got %v and %v", a["id"], b["id"])
	}

	res := call(t, app, fiber.MethodPost, "/api/application/submit", token, applicationBody("1990-01-01", "45000"))
	if res.status != fiber.StatusBadRequest || res.body["error"] != "Application already exists" {
		t.Fatalf("expected duplicate without key: %d %v", res.status, res.body)
	}
}

func TestRejectsMissingBackendsOutsideDev(t *testing.T) {
	cfg := testConfig()
	cfg.AppEnv = "production"
	if _, err := New(cfg, nil, nil, logging.Discard()); err == nil {
		t.Fatalf("expected error without backends in production")
	}
}
