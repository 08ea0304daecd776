// Verification HTTP handlers.
//
// This file exposes the consumer-facing verification endpoints:
//   - POST /verify        (typed code)
//   - POST /verify/qr     (scanned QR payload)
//
// Handlers are transport-thin: they validate input, call the verification
// service, and translate results into HTTP responses. Authenticity verdicts
// are always HTTP 200; the outcome lives in the response body.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/truescan/go-verify-backend/internal/domain"
	"github.com/truescan/go-verify-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// VerificationService defines the verification operation consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type VerificationService interface {
	// Verify runs one code through the full verification pipeline.
	Verify(ctx context.Context, in services.VerifyInput) (*services.VerifyResult, error)
}

// HistoryService defines the paginated history view consumed by HTTP
// handlers.
type HistoryService interface {
	// ListPage returns a page of the user's verification attempts and the
	// total count.
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.VerificationLog, int64, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for verification and history. It
// depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	verifySvc  VerificationService
	historySvc HistoryService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(verifySvc VerificationService, historySvc HistoryService) *Handlers {
	return &Handlers{verifySvc: verifySvc, historySvc: historySvc}
}

// userID extracts the authenticated user id from Gin context (set by
// upstream middleware). If absent, it falls back to "X-User-ID" header
// (tests use it), and finally to "anonymous". It never touches c.Request
// if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "anonymous"
}

//
// DTOs
//

// VerifyRequest is the JSON payload for a typed-code verification.
type VerifyRequest struct {
	// Code is the printed authentication token.
	Code string `json:"code" binding:"required" example:"LUM-AAA1"`
	// Lat/Lng are optional scan coordinates, honored only with consent.
	Lat *float64 `json:"lat,omitempty" example:"6.5244"`
	Lng *float64 `json:"lng,omitempty" example:"3.3792"`
	// LocationConsent grants use of the coordinates for risk assessment.
	LocationConsent bool `json:"location_consent" example:"true"`
}

// VerifyQRRequest is the JSON payload for a scanned-QR verification.
type VerifyQRRequest struct {
	// Payload is the raw string decoded from the QR image on the client.
	Payload string `json:"payload" binding:"required" example:"https://verify.example.com/verify?code=LUM-AAA1"`
	// Lat/Lng are optional scan coordinates, honored only with consent.
	Lat *float64 `json:"lat,omitempty" example:"6.5244"`
	Lng *float64 `json:"lng,omitempty" example:"3.3792"`
	// LocationConsent grants use of the coordinates for risk assessment.
	LocationConsent bool `json:"location_consent" example:"true"`
}

// ProductInfo is the catalog block of a verification response. It is null
// when the code is not registered.
type ProductInfo struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Manufacturer string `json:"manufacturer"`
	Guide        string `json:"guide"`
}

// BatchInfo is the batch block of a verification response. It is null when
// the code is not registered.
type BatchInfo struct {
	BatchNumber       string    `json:"batch_number"`
	ExpirationDate    time.Time `json:"expiration_date"`
	ManufacturingDate time.Time `json:"manufacturing_date"`
	Quantity          int       `json:"quantity"`
}

// CodeStatus is the usage block of a verification response. For
// unregistered codes it carries zero values.
type CodeStatus struct {
	IsUsed          bool       `json:"is_used"`
	UsedCount       int        `json:"used_count"`
	UsedAt          *time.Time `json:"used_at,omitempty"`
	FirstVerifiedAt *time.Time `json:"first_verified_at,omitempty"`
}

// VerificationInfo is the verdict block of a verification response.
type VerificationInfo struct {
	State         domain.VerificationState `json:"state"`
	RiskScore     float64                  `json:"risk_score"`
	Advisory      string                   `json:"advisory,omitempty"`
	TrustDecision domain.TrustDecision     `json:"trust_decision"`
	SafetyTips    []string                 `json:"safety_tips"`
	RiskLevel     domain.RiskLevel         `json:"risk_level"`
	Timestamp     time.Time                `json:"timestamp"`
}

// VerifyResponse is the composed verification response. Product and Batch
// are null for unregistered codes; the verdict block is always present.
type VerifyResponse struct {
	CodeValue    string           `json:"code_value"`
	Product      *ProductInfo     `json:"product"`
	Batch        *BatchInfo       `json:"batch"`
	Code         CodeStatus       `json:"code"`
	Verification VerificationInfo `json:"verification"`
}

// toVerifyResponse maps a service result onto the wire shape.
func toVerifyResponse(r *services.VerifyResult) VerifyResponse {
	resp := VerifyResponse{
		CodeValue: r.CodeValue,
		Code: CodeStatus{
			IsUsed:          r.IsUsed,
			UsedCount:       r.UsedCount,
			UsedAt:          r.UsedAt,
			FirstVerifiedAt: r.FirstVerifiedAt,
		},
		Verification: VerificationInfo{
			State:         r.State,
			RiskScore:     r.RiskScore,
			Advisory:      r.Advisory,
			TrustDecision: r.TrustDecision,
			SafetyTips:    r.SafetyTips,
			RiskLevel:     r.RiskLevel,
			Timestamp:     r.Timestamp,
		},
	}
	if r.Product != nil {
		resp.Product = &ProductInfo{
			Name:        r.Product.Name,
			Description: r.Product.Description,
			Category:    r.Product.Category,
			Guide:       r.Guide,
		}
		if r.Manufacturer != nil {
			resp.Product.Manufacturer = r.Manufacturer.Name
		}
	}
	if r.Batch != nil {
		resp.Batch = &BatchInfo{
			BatchNumber:       r.Batch.BatchNumber,
			ExpirationDate:    r.Batch.ExpirationDate,
			ManufacturingDate: r.Batch.ManufacturingDate,
			Quantity:          r.Batch.Quantity,
		}
	}
	return resp
}

//
// Handlers
//

// Verify godoc
// @ID          verifyCode
// @Summary     Verify a typed product code
// @Description Classifies the code, assesses risk, applies the usage transition, and returns the composed verdict. Business outcomes (unregistered, suspicious, already used) are HTTP 200.
// @Tags        Verification
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.VerifyRequest  true  "Verification payload"
//
// @Success     200  {object}  handlers.VerifyResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Empty or malformed code"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limit exceeded"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /verify [post]
func (h *Handlers) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	h.runVerification(c, services.VerifyInput{
		Code:            req.Code,
		Latitude:        req.Lat,
		Longitude:       req.Lng,
		LocationConsent: req.LocationConsent,
		UserID:          userID(c),
	})
}

// VerifyQR godoc
// @ID          verifyQR
// @Summary     Verify a scanned QR payload
// @Description Decodes the raw QR payload to a code value, then runs the same pipeline as /verify.
// @Tags        Verification
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.VerifyQRRequest  true  "Scanned payload"
//
// @Success     200  {object}  handlers.VerifyResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Payload does not contain a code"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limit exceeded"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /verify/qr [post]
func (h *Handlers) VerifyQR(c *gin.Context) {
	var req VerifyQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	code, err := services.DecodeQRPayload(req.Payload)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidQR, "payload does not contain a verification code")
		return
	}
	h.runVerification(c, services.VerifyInput{
		Code:            code,
		Latitude:        req.Lat,
		Longitude:       req.Lng,
		LocationConsent: req.LocationConsent,
		UserID:          userID(c),
	})
}

// runVerification invokes the pipeline and writes the composed response.
// Validation errors map to 400; everything else that escapes the service is
// an infrastructure failure.
func (h *Handlers) runVerification(c *gin.Context, in services.VerifyInput) {
	res, err := h.verifySvc.Verify(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCode) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "code must not be empty")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeVerifyFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, toVerifyResponse(res))
}
