// Package services – advisory generator.
//
// Two composed parts produce the guidance attached to every verification:
//
//   - SafetyTips: a deterministic tip list keyed by (state, riskScore) with
//     fixed thresholds, always 1-4 short strings.
//   - The product guide: normally written by a chat model from the product's
//     name, category, and description, with a mandatory deterministic
//     fallback selected by category keyword matching and risk tier. The
//     fallback is the contractual guarantee that a verification never
//     returns without guidance, whatever the model does.
package services

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/truescan/go-verify-backend/internal/domain"
)

// ---- Safety tips ----

// Tip thresholds on the 0-100 risk scale.
const (
	tipGenuineLow    = 20.0 // genuine, fully reassuring below this
	tipGenuineMid    = 50.0 // genuine, cautious up to this
	tipUnregHigh     = 70.0 // unregistered, urgent wording at or above
	tipUnregElevated = 50.0 // unregistered, firm wording at or above
)

// SafetyTips returns 1-4 short advisory strings for the final state and
// risk score. Deterministic; wording escalates with the score.
func SafetyTips(state domain.VerificationState, riskScore float64) []string {
	switch state {
	case domain.StateGenuine:
		switch {
		case riskScore <= tipGenuineLow:
			return []string{
				"This product verified as genuine.",
				"Check that the packaging seal is intact before use.",
			}
		case riskScore <= tipGenuineMid:
			return []string{
				"This product verified as genuine, but the scan raised a moderate risk signal.",
				"Inspect the packaging for tampering or unusual printing.",
				"If anything looks off, confirm with a licensed pharmacist.",
			}
		default:
			return []string{
				"The code is registered, but this scan carries a high risk signal.",
				"Do not use the product before a pharmacist has examined it.",
				"Keep the packaging; it may be needed for follow-up.",
			}
		}

	case domain.StateCodeAlreadyUsed:
		return []string{
			"This code was already verified on another occasion.",
			"Genuine codes are used once; a repeat usually means repackaging or cloning.",
			"Do not use the product.",
			"Report where you bought it to NAFDAC.",
		}

	case domain.StateProductExpired:
		return []string{
			"This product's batch has expired.",
			"Expired products can be ineffective or harmful; do not use them.",
			"Return the product to the point of purchase.",
		}

	case domain.StateUnregisteredProduct:
		switch {
		case riskScore >= tipUnregHigh:
			return []string{
				"This code is not registered and the risk signal is very high.",
				"Treat the product as counterfeit; do not use it.",
				"Report the seller to NAFDAC immediately.",
			}
		case riskScore >= tipUnregElevated:
			return []string{
				"This code is not in the manufacturer registry.",
				"Do not use the product before verifying it with a pharmacist.",
				"Keep the receipt and packaging.",
			}
		default:
			return []string{
				"This code could not be matched to a registered product.",
				"The code may be mistyped; re-check it against the label.",
				"If it still fails, have a pharmacist verify the product.",
			}
		}

	case domain.StateSuspiciousPattern:
		return []string{
			"This scan matches a pattern associated with counterfeit distribution.",
			"Do not use the product.",
			"Report the product and seller to NAFDAC.",
			"Keep the packaging and code intact as evidence.",
		}

	default: // INVALID_CODE and anything unmatched
		return []string{
			"The submitted code is not valid.",
			"Re-enter the code exactly as printed, or rescan the QR label.",
		}
	}
}

// ---- Product guide ----

// GuideInput feeds the guide generator. Fields mirror what the catalog
// knows about the verified product.
type GuideInput struct {
	ProductName string
	Category    string
	Description string
	RiskScore   float64
	State       domain.VerificationState
}

// GuideGenerator produces usage/safety/storage guidance for a verified
// product. Implementations must be safe for concurrent use.
type GuideGenerator interface {
	Generate(ctx context.Context, in GuideInput) (string, error)
}

// OpenAIGuideGenerator writes the guide with a chat model. Errors, empty
// completions, and timeouts are all recovered by the caller through
// FallbackGuide.
type OpenAIGuideGenerator struct {
	client *openai.Client
	model  shared.ChatModel
}

// NewOpenAIGuideGenerator creates the generator. An empty apiKey disables
// the client; Generate then errors and the fallback takes over.
func NewOpenAIGuideGenerator(apiKey string) *OpenAIGuideGenerator {
	if apiKey == "" {
		return &OpenAIGuideGenerator{}
	}
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIGuideGenerator{client: &c, model: shared.ChatModelGPT4oMini}
}

// Generate asks the model for a short consumer guide. It returns an error
// for any unusable output so the caller can fall back deterministically.
func (g *OpenAIGuideGenerator) Generate(ctx context.Context, in GuideInput) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("guide generator: no client configured")
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(fmt.Sprintf(`Write a short consumer guide (3-5 sentences, plain language) covering
usage, safety, and storage for this product. Do not mention verification
or risk scores.

Product: %s
Category: %s
Description: %s
Verification outcome: %s (risk %.0f/100)`,
				in.ProductName, in.Category, in.Description, in.State, in.RiskScore)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("guide generator: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("guide generator: empty completion")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("guide generator: blank completion")
	}
	return text, nil
}

// Category keyword tables for the deterministic fallback. Matching is
// case-insensitive substring search over the category string.
var (
	pharmaKeywords   = []string{"pharma", "drug", "medicine", "medication", "tablet", "capsule", "syrup", "antibiotic", "injection"}
	foodKeywords     = []string{"food", "beverage", "drink", "snack", "dairy", "grain", "nutrition", "supplement"}
	cosmeticKeywords = []string{"cosmetic", "cream", "lotion", "skincare", "skin care", "beauty", "soap", "shampoo"}
)

// guideCaser renders product names in title case for the fallback templates.
var guideCaser = cases.Title(language.English)

// FallbackGuide returns the deterministic guide for a product, selected by
// category keyword matching (pharmaceutical / food / cosmetic / generic)
// and risk tier. It always returns non-empty text.
func FallbackGuide(in GuideInput) string {
	name := strings.TrimSpace(in.ProductName)
	if name == "" {
		name = "this product"
	} else {
		name = guideCaser.String(strings.ToLower(name))
	}

	caution := ""
	switch {
	case in.RiskScore >= RiskBucketVeryHigh:
		caution = " Given the verification outcome, do not use it until its authenticity has been confirmed by a professional."
	case in.RiskScore >= RiskBucketMedium:
		caution = " Because this scan raised a risk signal, double-check the packaging and batch details before use."
	}

	cat := strings.ToLower(in.Category)
	switch {
	case matchesAny(cat, pharmaKeywords):
		return fmt.Sprintf("Take %s exactly as prescribed or as directed on the label, and never share prescription medicine with others. "+
			"Store it in a cool, dry place away from direct sunlight and out of reach of children. "+
			"Stop use and consult a pharmacist or doctor if you notice unexpected side effects.%s", name, caution)
	case matchesAny(cat, foodKeywords):
		return fmt.Sprintf("Consume %s before its best-before date and follow any preparation instructions on the packaging. "+
			"Store it as indicated on the label, refrigerating after opening where required. "+
			"Discard it if the packaging is damaged, swollen, or the contents smell or look unusual.%s", name, caution)
	case matchesAny(cat, cosmeticKeywords):
		return fmt.Sprintf("Apply %s as directed on the packaging and avoid contact with eyes and broken skin. "+
			"Patch-test before first use and discontinue if irritation develops. "+
			"Keep the container closed and store it away from heat and sunlight.%s", name, caution)
	default:
		return fmt.Sprintf("Use %s according to the manufacturer's instructions on the packaging. "+
			"Keep it in its original container, stored in a cool, dry place. "+
			"Contact the manufacturer or point of purchase if anything about the product seems inconsistent with its label.%s", name, caution)
	}
}

// FallbackGuideGenerator serves FallbackGuide through the GuideGenerator
// interface, for deployments with no model configured.
type FallbackGuideGenerator struct{}

// Generate returns the deterministic fallback guide. It never fails.
func (FallbackGuideGenerator) Generate(_ context.Context, in GuideInput) (string, error) {
	return FallbackGuide(in), nil
}

// matchesAny reports whether s contains any of the keywords.
func matchesAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
