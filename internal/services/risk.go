// Package services – risk assessor.
//
// The risk assessor is a capability interface: the orchestrator only knows
// that something can turn (code, location, base state) into a score, an
// advisory, and a suspicious-pattern flag. Two implementations exist:
//
//   - OpenAIRiskAssessor calls a chat model with a strict JSON tool schema,
//     mirroring how the platform's other AI integrations are wired.
//   - HeuristicRiskAssessor is fully deterministic and serves as the default
//     when no API key is configured, and as the reproducible implementation
//     for tests.
//
// Failure policy lives in the orchestrator, not here: if Assess returns an
// error (network, timeout, unparsable output), verification proceeds
// fail-open with score 0 and the unmodified base state.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/truescan/go-verify-backend/internal/domain"
)

// RiskInput carries everything the assessor may consider for one attempt.
// Coordinates are nil unless the caller granted location consent.
type RiskInput struct {
	Code      string
	Latitude  *float64
	Longitude *float64
	State     domain.VerificationState
}

// RiskAssessment is the assessor verdict. Score is on the 0-100 scale
// (clamped at the boundary by the orchestrator). SuspiciousPattern forces
// the final state to SUSPICIOUS_PATTERN regardless of the base state.
type RiskAssessment struct {
	Score             float64 `json:"risk_score"`
	Advisory          string  `json:"advisory"`
	SuspiciousPattern bool    `json:"suspicious_pattern"`
}

// RiskAssessor scores one verification attempt. Implementations must be
// safe for concurrent use and honor the context for cancellation.
type RiskAssessor interface {
	Assess(ctx context.Context, in RiskInput) (RiskAssessment, error)
}

// ---- Model-backed implementation ----

// OpenAIRiskAssessor scores attempts with a chat model through a strict
// JSON tool call. A nil client (empty API key) makes Assess fail, which the
// orchestrator absorbs fail-open; construction sites should prefer the
// heuristic assessor when no key is configured.
type OpenAIRiskAssessor struct {
	client *openai.Client
	model  shared.ChatModel
}

// NewOpenAIRiskAssessor creates the assessor. An empty apiKey disables the
// client entirely.
func NewOpenAIRiskAssessor(apiKey string) *OpenAIRiskAssessor {
	if apiKey == "" {
		return &OpenAIRiskAssessor{}
	}
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIRiskAssessor{client: &c, model: shared.ChatModelGPT4oMini}
}

// Assess sends the attempt to the model and parses the structured verdict.
func (a *OpenAIRiskAssessor) Assess(ctx context.Context, in RiskInput) (RiskAssessment, error) {
	if a.client == nil {
		return RiskAssessment{}, fmt.Errorf("risk assessor: no client configured")
	}

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"risk_score":         map[string]string{"type": "number"},
			"advisory":           map[string]string{"type": "string"},
			"suspicious_pattern": map[string]string{"type": "boolean"},
		},
		"required":             []string{"risk_score", "advisory", "suspicious_pattern"},
		"additionalProperties": false,
	}

	fn := shared.FunctionDefinitionParam{
		Name:        "assess_code_risk",
		Description: openai.String("Return a 0-100 counterfeit risk score, a short advisory, and whether the scan fits a suspicious pattern."),
		Strict:      openai.Bool(true),
		Parameters:  schema,
	}

	loc := "location withheld"
	if in.Latitude != nil && in.Longitude != nil {
		loc = fmt.Sprintf("lat %.4f, lng %.4f", *in.Latitude, *in.Longitude)
	}

	req := openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(fmt.Sprintf(`Assess the counterfeit risk of one product code scan.

Code: %q
Current classification: %s
Scan location: %s

Call assess_code_risk(strict). risk_score must be 0-100. Set
suspicious_pattern=true only for scan patterns consistent with code
cloning or resale of used packaging.`, in.Code, in.State, loc)),
		},
		Tools: []openai.ChatCompletionToolParam{{Function: fn}},
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{
					Name: "assess_code_risk",
				},
			},
		},
	}

	resp, err := a.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return RiskAssessment{}, fmt.Errorf("risk assessor: %w", err)
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return RiskAssessment{}, fmt.Errorf("risk assessor: no function call returned")
	}

	var out RiskAssessment
	raw := resp.Choices[0].Message.ToolCalls[0].Function.Arguments
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return RiskAssessment{}, fmt.Errorf("risk assessor: malformed verdict: %w", err)
	}
	out.Score = ClampRiskScore(out.Score)
	return out, nil
}

// ---- Deterministic implementation ----

// HeuristicRiskAssessor scores attempts from the base state and simple code
// shape rules. It never errors and produces identical output for identical
// input, which keeps the trust engine reproducible without network access.
type HeuristicRiskAssessor struct{}

// Base scores per classified state, chosen so that state-driven decisions
// (already used, suspicious) dominate and genuine codes sit well below the
// safe ceiling.
const (
	heuristicGenuine      = 10.0
	heuristicExpired      = 40.0
	heuristicAlreadyUsed  = 55.0
	heuristicUnregistered = 65.0
)

// Assess derives a deterministic verdict. A code made of one repeated
// character (e.g. "AAAAAAA") is treated as a probe and flagged suspicious.
func (HeuristicRiskAssessor) Assess(_ context.Context, in RiskInput) (RiskAssessment, error) {
	var out RiskAssessment

	switch in.State {
	case domain.StateUnregisteredProduct:
		out.Score = heuristicUnregistered
		out.Advisory = "This code is not registered with any manufacturer on record."
	case domain.StateCodeAlreadyUsed:
		out.Score = heuristicAlreadyUsed
		out.Advisory = "This code has been verified before. The product may be repackaged."
	case domain.StateProductExpired:
		out.Score = heuristicExpired
		out.Advisory = "The product batch for this code has passed its expiration date."
	default:
		out.Score = heuristicGenuine
		out.Advisory = ""
	}

	if looksLikeProbe(in.Code) {
		out.SuspiciousPattern = true
		out.Score = ClampRiskScore(out.Score + 30)
		out.Advisory = "The submitted code matches a known probing pattern."
	}
	return out, nil
}

// looksLikeProbe reports whether a normalized code is a single repeated
// character, the cheapest enumeration pattern seen against code spaces.
func looksLikeProbe(code string) bool {
	if len(code) < 4 {
		return false
	}
	return strings.Count(code, code[:1]) == len(code)
}
