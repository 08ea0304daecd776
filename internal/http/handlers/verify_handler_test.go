package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/truescan/go-verify-backend/internal/domain"
	"github.com/truescan/go-verify-backend/internal/services"
)

// ---------- service stubs ----------

// stubVerifySvc scripts Verify and records the input it received.
type stubVerifySvc struct {
	verify func(context.Context, services.VerifyInput) (*services.VerifyResult, error)
	gotIn  *services.VerifyInput
}

func (s *stubVerifySvc) Verify(ctx context.Context, in services.VerifyInput) (*services.VerifyResult, error) {
	s.gotIn = &in
	if s.verify != nil {
		return s.verify(ctx, in)
	}
	return &services.VerifyResult{
		CodeValue:     in.Code,
		State:         domain.StateGenuine,
		TrustDecision: domain.DecisionSafeToUse,
		RiskLevel:     domain.RiskLevelLow,
		SafetyTips:    []string{"tip"},
		Timestamp:     time.Now().UTC(),
	}, nil
}

type stubHistorySvc struct {
	listPage func(context.Context, string, int, int) ([]domain.VerificationLog, int64, error)
}

func (s *stubHistorySvc) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.VerificationLog, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, userID, page, pageSize)
	}
	return nil, 0, nil
}

func newVerifyRouter(vs VerificationService, hs HistoryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(vs, hs)
	r := gin.New()
	r.POST("/verify", h.Verify)
	r.POST("/verify/qr", h.VerifyQR)
	r.GET("/verify/history", h.History)
	return r
}

// ---------- helpers-only tests ----------

func Test_userID_Fallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rc := gin.CreateTestContextOnly(httptest.NewRecorder(), gin.New())
	if got := userID(rc); got != "anonymous" {
		t.Fatalf("fallback userID = %q", got)
	}
	rc.Set("userID", "u1")
	if got := userID(rc); got != "u1" {
		t.Fatalf("ctx userID = %q", got)
	}
	rc.Set("userID", 123) // wrong type → fallback
	if got := userID(rc); got != "anonymous" {
		t.Fatalf("wrong-type fallback userID = %q", got)
	}

	cH, _ := gin.CreateTestContext(httptest.NewRecorder())
	reqH := httptest.NewRequest("GET", "/", nil)
	reqH.Header.Set("X-User-ID", "u-123")
	cH.Request = reqH
	if got := userID(cH); got != "u-123" {
		t.Fatalf("header fallback userID = %q", got)
	}
}

// ---------- POST /verify ----------

func TestVerify_BadJSON_EmptyCode_Internal(t *testing.T) {
	// Bad JSON -> 400
	{
		r := newVerifyRouter(&stubVerifySvc{}, &stubHistorySvc{})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewBufferString("{bad"))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad json -> %d", w.Code)
		}
	}

	// Missing code field fails binding -> 400
	{
		r := newVerifyRouter(&stubVerifySvc{}, &stubHistorySvc{})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewBufferString(`{"lat":6.5}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("missing code -> %d", w.Code)
		}
	}

	// Whitespace code passes binding but the service rejects it -> 400
	{
		svc := &stubVerifySvc{
			verify: func(context.Context, services.VerifyInput) (*services.VerifyResult, error) {
				return nil, services.ErrEmptyCode
			},
		}
		r := newVerifyRouter(svc, &stubHistorySvc{})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewBufferString(`{"code":"   "}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("empty code -> %d", w.Code)
		}
		var out ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.Code != ErrCodeBadRequest {
			t.Fatalf("error code = %q", out.Code)
		}
	}

	// Infrastructure failure -> 500
	{
		svc := &stubVerifySvc{
			verify: func(context.Context, services.VerifyInput) (*services.VerifyResult, error) {
				return nil, errors.New("store down")
			},
		}
		r := newVerifyRouter(svc, &stubHistorySvc{})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewBufferString(`{"code":"LUM-AAA1"}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("internal -> %d", w.Code)
		}
		var out ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.Code != ErrCodeVerifyFailed {
			t.Fatalf("error code = %q", out.Code)
		}
	}
}

func TestVerify_Success_ComposedBody(t *testing.T) {
	usedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &stubVerifySvc{
		verify: func(_ context.Context, in services.VerifyInput) (*services.VerifyResult, error) {
			return &services.VerifyResult{
				CodeValue: "LUM-AAA1",
				Product: &domain.Product{
					Name:        "Lumorex 500mg",
					Category:    "Pharmaceutical",
					Description: "Antimalarial tablets",
				},
				Batch: &domain.Batch{
					BatchNumber:    "B-2025-01",
					ExpirationDate: usedAt.AddDate(1, 0, 0),
				},
				Manufacturer:    &domain.Manufacturer{Name: "Lumora Pharma"},
				IsUsed:          true,
				UsedCount:       1,
				UsedAt:          &usedAt,
				FirstVerifiedAt: &usedAt,
				State:           domain.StateGenuine,
				RiskScore:       10,
				TrustDecision:   domain.DecisionSafeToUse,
				RiskLevel:       domain.RiskLevelLow,
				SafetyTips:      []string{"a", "b"},
				Guide:           "take as prescribed",
				Timestamp:       usedAt,
			}, nil
		},
	}
	r := newVerifyRouter(svc, &stubHistorySvc{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewBufferString(`{"code":"lum-aaa1","lat":6.5244,"lng":3.3792,"location_consent":true}`))
	req.Header.Set("X-User-ID", "u1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("verify -> %d body=%s", w.Code, w.Body.String())
	}

	var out VerifyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.CodeValue != "LUM-AAA1" {
		t.Fatalf("code_value = %q", out.CodeValue)
	}
	if out.Product == nil || out.Product.Name != "Lumorex 500mg" || out.Product.Manufacturer != "Lumora Pharma" {
		t.Fatalf("product block: %#v", out.Product)
	}
	if out.Product.Guide != "take as prescribed" {
		t.Fatalf("guide = %q", out.Product.Guide)
	}
	if out.Batch == nil || out.Batch.BatchNumber != "B-2025-01" {
		t.Fatalf("batch block: %#v", out.Batch)
	}
	if !out.Code.IsUsed || out.Code.UsedCount != 1 || out.Code.UsedAt == nil {
		t.Fatalf("code status: %#v", out.Code)
	}
	if out.Verification.State != domain.StateGenuine || out.Verification.TrustDecision != domain.DecisionSafeToUse {
		t.Fatalf("verdict block: %#v", out.Verification)
	}

	// Handler forwarded coordinates, consent, and the user identity.
	if svc.gotIn == nil || svc.gotIn.UserID != "u1" || !svc.gotIn.LocationConsent {
		t.Fatalf("service input: %#v", svc.gotIn)
	}
	if svc.gotIn.Latitude == nil || *svc.gotIn.Latitude != 6.5244 {
		t.Fatalf("latitude not forwarded: %#v", svc.gotIn.Latitude)
	}
}

func TestVerify_UnregisteredVerdict_IsHTTP200(t *testing.T) {
	svc := &stubVerifySvc{
		verify: func(context.Context, services.VerifyInput) (*services.VerifyResult, error) {
			return &services.VerifyResult{
				CodeValue:     "LUM-XXX9",
				State:         domain.StateUnregisteredProduct,
				RiskScore:     65,
				TrustDecision: domain.DecisionDoNotUse,
				RiskLevel:     domain.RiskLevelHigh,
				SafetyTips:    []string{"a"},
				Timestamp:     time.Now().UTC(),
			}, nil
		},
	}
	r := newVerifyRouter(svc, &stubHistorySvc{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewBufferString(`{"code":"LUM-XXX9"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("business verdict must be 200, got %d", w.Code)
	}

	var out VerifyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Product != nil || out.Batch != nil {
		t.Fatalf("unregistered response must carry null catalog blocks: %s", w.Body.String())
	}
	if out.Verification.TrustDecision != domain.DecisionDoNotUse {
		t.Fatalf("decision = %s", out.Verification.TrustDecision)
	}
}

// ---------- POST /verify/qr ----------

func TestVerifyQR_DecodeAndDelegate(t *testing.T) {
	// Bad payload -> 400 with the QR-specific code
	{
		r := newVerifyRouter(&stubVerifySvc{}, &stubHistorySvc{})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/verify/qr", bytes.NewBufferString(`{"payload":"???!!!"}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad payload -> %d", w.Code)
		}
		var out ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.Code != ErrCodeInvalidQR {
			t.Fatalf("error code = %q", out.Code)
		}
	}

	// URL payload decodes to the embedded code -> 200
	{
		svc := &stubVerifySvc{}
		r := newVerifyRouter(svc, &stubHistorySvc{})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/verify/qr",
			bytes.NewBufferString(`{"payload":"https://verify.example.com/verify?code=lum-aaa1"}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("qr verify -> %d body=%s", w.Code, w.Body.String())
		}
		if svc.gotIn == nil || svc.gotIn.Code != "LUM-AAA1" {
			t.Fatalf("decoded code not forwarded: %#v", svc.gotIn)
		}
	}

	// Missing payload field -> 400
	{
		r := newVerifyRouter(&stubVerifySvc{}, &stubHistorySvc{})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/verify/qr", bytes.NewBufferString(`{}`))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("missing payload -> %d", w.Code)
		}
	}
}
