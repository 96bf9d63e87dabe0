// Package verify decides whether gathered evidence is enough to answer.
package verify

import "github.com/farheen-shaikh530/releasehub/internal/model"

// Reasons reported with a verification
const (
	ReasonNoVendor   = "Vendor not found."
	ReasonNoFact     = "No gold latest-version fact found."
	ReasonFact       = "Gold version fact found."
	ReasonNoEvidence = "No matching evidence sentences found."
	ReasonEvidence   = "Evidence found."
	ReasonFallback   = "Fallback."
)

// Verify applies the fixed rule table. VERSION needs a fact, CVE and PATCH
// need evidence sentences, anything else passes with 0.50.
func Verify(intent model.Intent, vendorFound, factFound, evidenceFound bool) model.Verification {
	switch intent {
	case model.IntentVersion:
		switch {
		case !vendorFound:
			return model.Verification{Abstain: true, Confidence: 0.30, Reason: ReasonNoVendor}
		case !factFound:
			return model.Verification{Abstain: true, Confidence: 0.45, Reason: ReasonNoFact}
		default:
			return model.Verification{Confidence: 0.85, Reason: ReasonFact}
		}
	case model.IntentCVE, model.IntentPatch:
		switch {
		case !vendorFound:
			return model.Verification{Abstain: true, Confidence: 0.30, Reason: ReasonNoVendor}
		case !evidenceFound:
			return model.Verification{Abstain: true, Confidence: 0.49, Reason: ReasonNoEvidence}
		default:
			return model.Verification{Confidence: 0.70, Reason: ReasonEvidence}
		}
	default:
		return model.Verification{Confidence: 0.50, Reason: ReasonFallback}
	}
}
