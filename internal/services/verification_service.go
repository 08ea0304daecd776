// Package services – VerificationService.
//
// This file implements the verification orchestrator, the one component
// callers invoke directly. A request moves through a fixed pipeline:
//
//	received -> classified -> risk-assessed (may escalate) -> logged
//	  -> usage-mutated -> decided -> incident-checked -> advised -> returned
//
// Only failures before classification (empty input, store lookup failure)
// abort the request. Every later step is best effort: audit log, usage
// mutation, and incident writes are caught and logged locally, and the risk
// assessor degrades fail-open so a slow or down model never blocks a
// verdict.
//
// Observability: Verify is OpenTelemetry-instrumented; spans carry the
// normalized code value and final state.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/truescan/go-verify-backend/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// VerificationStore defines the persistence contract required by the
// orchestrator. Implementations are responsible for the atomicity of the
// usage mutations (single conditional UPDATE, reported via the bool).
type VerificationStore interface {
	// GetCodeByValue fetches a code row with batch, product, and
	// manufacturer preloaded, or repo.ErrNotFound.
	GetCodeByValue(ctx context.Context, db *gorm.DB, codeValue string) (*domain.VerificationCode, error)

	// GetCodeByID reloads a code row by primary key (post-mutation truth).
	GetCodeByID(ctx context.Context, db *gorm.DB, id string) (*domain.VerificationCode, error)

	// MarkCodeUsed atomically transitions unused -> used, returning whether
	// this call won the transition.
	MarkCodeUsed(ctx context.Context, db *gorm.DB, id string, now time.Time) (bool, error)

	// IncrementUsedCount bumps used_count on an already-used code.
	IncrementUsedCount(ctx context.Context, db *gorm.DB, id string) (bool, error)

	// CreateVerificationLog appends one audit row.
	CreateVerificationLog(ctx context.Context, db *gorm.DB, entry *domain.VerificationLog) error

	// CreateIncident opens an investigative incident in OPEN status.
	CreateIncident(ctx context.Context, db *gorm.DB, codeValue string, state domain.VerificationState, riskScore float64, decision domain.TrustDecision) (*domain.Incident, error)
}

// VerifyInput is one verification attempt as submitted by a consumer.
// Coordinates are honored only when LocationConsent is set.
type VerifyInput struct {
	Code            string
	Latitude        *float64
	Longitude       *float64
	LocationConsent bool
	UserID          string
}

// VerifyResult is the composed outcome of one verification. Usage figures
// reflect what the store persisted whenever the post-mutation reload
// succeeds; on bookkeeping failure they fall back to the attempted values.
type VerifyResult struct {
	CodeValue string

	// Catalog context; nil for unregistered codes.
	Product      *domain.Product
	Batch        *domain.Batch
	Manufacturer *domain.Manufacturer

	// Code usage snapshot.
	IsUsed          bool
	UsedCount       int
	UsedAt          *time.Time
	FirstVerifiedAt *time.Time

	// Verdict.
	State         domain.VerificationState
	RiskScore     float64
	Advisory      string
	TrustDecision domain.TrustDecision
	RiskLevel     domain.RiskLevel
	SafetyTips    []string
	Guide         string
	Timestamp     time.Time
}

// VerificationService composes the classifier, risk assessor, usage
// tracker, trust engine, incident recorder, and advisory generator into one
// request/response cycle. There is no in-process shared mutable state;
// concurrency correctness rests on the store's conditional updates.
type VerificationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store is the persistence contract used by this service.
	Store VerificationStore
	// Risk scores each attempt; degraded fail-open on error.
	Risk RiskAssessor
	// Guide writes the product guide; FallbackGuide covers its failures.
	Guide GuideGenerator

	// RiskTimeout bounds one assessor call.
	RiskTimeout time.Duration
	// GuideTimeout bounds one guide generation call.
	GuideTimeout time.Duration

	// Now returns the current time; defaults to time.Now (UTC) when nil.
	Now func() time.Time
}

// NewVerificationService constructs a VerificationService with sane default
// timeouts for the external model calls.
func NewVerificationService(db *gorm.DB, store VerificationStore, risk RiskAssessor, guide GuideGenerator) *VerificationService {
	return &VerificationService{
		DB:           db,
		Store:        store,
		Risk:         risk,
		Guide:        guide,
		RiskTimeout:  5 * time.Second,
		GuideTimeout: 8 * time.Second,
	}
}

// now returns the injected clock or UTC wall time.
func (s *VerificationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Verify runs one code through the full pipeline and returns the composed
// verdict. The only errors it returns are ErrEmptyCode and a failed store
// lookup; every downstream failure degrades instead of aborting.
func (s *VerificationService) Verify(ctx context.Context, in VerifyInput) (*VerifyResult, error) {
	tr := otel.Tracer("services/VerificationService")
	ctx, span := tr.Start(ctx, "Verify",
		trace.WithAttributes(attribute.String("user.id", in.UserID)),
	)
	defer span.End()

	code := NormalizeCode(in.Code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	span.SetAttributes(attribute.String("code.value", code))
	now := s.now()

	// Lookup. Absence is a classification outcome, not an error; any other
	// store failure happens before classification and is fatal.
	rec, err := s.Store.GetCodeByValue(ctx, s.DB, code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Base classification from store data.
	state := ClassifyState(rec, now)

	// Risk assessment, bounded and fail-open.
	score, advisory := 0.0, ""
	riskCtx, cancel := context.WithTimeout(ctx, s.riskTimeout())
	assessment, err := s.Risk.Assess(riskCtx, RiskInput{
		Code:      code,
		Latitude:  consentCoord(in.Latitude, in.LocationConsent),
		Longitude: consentCoord(in.Longitude, in.LocationConsent),
		State:     state,
	})
	cancel()
	if err != nil {
		riskAssessorFailures.Inc()
		log.Warn().Err(err).Str("code_value", code).Msg("risk assessor unavailable, continuing fail-open")
	} else {
		score = ClampRiskScore(assessment.Score)
		advisory = assessment.Advisory
		if assessment.SuspiciousPattern {
			state = domain.StateSuspiciousPattern
		}
	}

	// Audit log, fire-and-forget.
	s.writeAuditLog(ctx, code, rec, in, state, score)

	// Usage mutation, best effort. A lost unused->used race flips the final
	// state to what the store actually holds.
	usage := s.trackUsage(ctx, rec, &state, now)

	// Trust decision from the final state.
	decision := DecideTrust(state, score)

	// Incident recording, best effort; the decision is the sole gate.
	s.recordIncident(ctx, code, state, score, decision)

	verificationsTotal.WithLabelValues(string(state), string(decision)).Inc()
	span.SetAttributes(
		attribute.String("verification.state", string(state)),
		attribute.String("verification.decision", string(decision)),
	)

	res := &VerifyResult{
		CodeValue:       code,
		IsUsed:          usage.isUsed,
		UsedCount:       usage.usedCount,
		UsedAt:          usage.usedAt,
		FirstVerifiedAt: usage.firstVerifiedAt,
		State:           state,
		RiskScore:       score,
		Advisory:        advisory,
		TrustDecision:   decision,
		RiskLevel:       RiskLevelFor(score),
		SafetyTips:      SafetyTips(state, score),
		Timestamp:       now,
	}

	if rec != nil {
		product := rec.Batch.Product
		manufacturer := product.Manufacturer
		batch := rec.Batch
		res.Product = &product
		res.Batch = &batch
		res.Manufacturer = &manufacturer
		res.Guide = s.productGuide(ctx, product, state, score)
	}

	return res, nil
}

// usageSnapshot is the post-mutation view of the code's usage fields.
type usageSnapshot struct {
	isUsed          bool
	usedCount       int
	usedAt          *time.Time
	firstVerifiedAt *time.Time
}

// trackUsage applies the conditional usage mutation for the attempt and
// returns the usage figures to report. When the atomic mark loses the race
// it rewrites *state to CODE_ALREADY_USED so the verdict matches what the
// store recorded. Mutation and reload failures are logged, never surfaced;
// the snapshot then carries the attempted values.
func (s *VerificationService) trackUsage(ctx context.Context, rec *domain.VerificationCode, state *domain.VerificationState, now time.Time) usageSnapshot {
	if rec == nil {
		return usageSnapshot{}
	}

	// Attempted figures, used when persistence fails mid-flight.
	attempted := usageSnapshot{
		isUsed:          rec.IsUsed,
		usedCount:       rec.UsedCount,
		usedAt:          rec.UsedAt,
		firstVerifiedAt: rec.FirstVerifiedAt,
	}

	switch {
	case *state == domain.StateGenuine:
		won, err := s.Store.MarkCodeUsed(ctx, s.DB, rec.ID, now)
		if err != nil {
			log.Warn().Err(err).Str("code_id", rec.ID).Msg("mark-used failed, reporting attempted figures")
			attempted.isUsed = true
			attempted.usedCount++
			attempted.usedAt = &now
			if attempted.firstVerifiedAt == nil {
				attempted.firstVerifiedAt = &now
			}
			return attempted
		}
		if !won {
			// A concurrent scan marked the code first; this attempt is a
			// repeat scan of a used code.
			*state = domain.StateCodeAlreadyUsed
			if _, err := s.Store.IncrementUsedCount(ctx, s.DB, rec.ID); err != nil {
				log.Warn().Err(err).Str("code_id", rec.ID).Msg("used-count increment failed after lost race")
			}
		}
		return s.reload(ctx, rec.ID, attempted)

	case rec.IsUsed:
		if _, err := s.Store.IncrementUsedCount(ctx, s.DB, rec.ID); err != nil {
			log.Warn().Err(err).Str("code_id", rec.ID).Msg("used-count increment failed, reporting attempted figures")
			attempted.usedCount++
			return attempted
		}
		return s.reload(ctx, rec.ID, attempted)

	default:
		// Expired or suspicious with an unused underlying code: no mutation.
		return attempted
	}
}

// reload fetches the store's post-mutation usage figures, falling back to
// the provided snapshot when the read fails.
func (s *VerificationService) reload(ctx context.Context, id string, fallback usageSnapshot) usageSnapshot {
	fresh, err := s.Store.GetCodeByID(ctx, s.DB, id)
	if err != nil {
		log.Warn().Err(err).Str("code_id", id).Msg("post-mutation reload failed")
		return fallback
	}
	return usageSnapshot{
		isUsed:          fresh.IsUsed,
		usedCount:       fresh.UsedCount,
		usedAt:          fresh.UsedAt,
		firstVerifiedAt: fresh.FirstVerifiedAt,
	}
}

// writeAuditLog appends the attempt to the verification log. Failures are
// logged and swallowed; the audit trail is fire-and-forget.
func (s *VerificationService) writeAuditLog(ctx context.Context, code string, rec *domain.VerificationCode, in VerifyInput, state domain.VerificationState, score float64) {
	entry := &domain.VerificationLog{
		CodeValue: code,
		UserID:    in.UserID,
		State:     state,
		RiskScore: score,
		Latitude:  consentCoord(in.Latitude, in.LocationConsent),
		Longitude: consentCoord(in.Longitude, in.LocationConsent),
	}
	if rec != nil {
		entry.CodeID = &rec.ID
		entry.BatchID = &rec.BatchID
		entry.ManufacturerID = &rec.ManufacturerID
	}
	if err := s.Store.CreateVerificationLog(ctx, s.DB, entry); err != nil {
		log.Warn().Err(err).Str("code_value", code).Msg("verification log write failed")
	}
}

// recordIncident opens an incident when the trust decision warrants one.
// Failures are logged and swallowed.
func (s *VerificationService) recordIncident(ctx context.Context, code string, state domain.VerificationState, score float64, decision domain.TrustDecision) {
	if !ShouldOpenIncident(decision) {
		return
	}
	if _, err := s.Store.CreateIncident(ctx, s.DB, code, state, score, decision); err != nil {
		log.Warn().Err(err).Str("code_value", code).Msg("incident creation failed")
		return
	}
	incidentsOpenedTotal.Inc()
}

// productGuide generates the product guide, falling back deterministically
// on any generator failure so guidance is never absent.
func (s *VerificationService) productGuide(ctx context.Context, product domain.Product, state domain.VerificationState, score float64) string {
	in := GuideInput{
		ProductName: product.Name,
		Category:    product.Category,
		Description: product.Description,
		RiskScore:   score,
		State:       state,
	}
	if s.Guide != nil {
		gctx, cancel := context.WithTimeout(ctx, s.guideTimeout())
		text, err := s.Guide.Generate(gctx, in)
		cancel()
		if err == nil && text != "" {
			return text
		}
		log.Debug().Err(err).Str("product", product.Name).Msg("guide generator fell back to template")
	}
	guideFallbacks.Inc()
	return FallbackGuide(in)
}

// riskTimeout returns the configured assessor bound or a default.
func (s *VerificationService) riskTimeout() time.Duration {
	if s.RiskTimeout > 0 {
		return s.RiskTimeout
	}
	return 5 * time.Second
}

// guideTimeout returns the configured generator bound or a default.
func (s *VerificationService) guideTimeout() time.Duration {
	if s.GuideTimeout > 0 {
		return s.GuideTimeout
	}
	return 8 * time.Second
}

// consentCoord returns the coordinate only when consent was granted.
func consentCoord(v *float64, consent bool) *float64 {
	if !consent {
		return nil
	}
	return v
}
