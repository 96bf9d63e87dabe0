package llm

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/farheen-shaikh530/releasehub/internal/extract"
	"github.com/farheen-shaikh530/releasehub/internal/model"
)

// Rephraser rewords answers through a provider and rejects any output that
// drops the verified version or introduces another one
type Rephraser struct {
	provider Provider
	logger   *zap.SugaredLogger
}

// NewRephraser wraps provider
func NewRephraser(provider Provider, logger *zap.SugaredLogger) *Rephraser {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Rephraser{provider: provider, logger: logger}
}

// Rephrase returns the provider's sentence for a verified version. The
// provider is never called without a version. draft is unused by the
// prompt and only logged when the output is rejected.
func (r *Rephraser) Rephrase(ctx context.Context, query, version, draft string) (string, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return "", errors.Wrap(ErrRejected, "no verified version")
	}

	resp, err := r.provider.Complete(ctx, CompletionRequest{
		System: systemPrompt,
		Prompt: BuildPrompt(query, version),
	})
	if err != nil {
		return "", errors.Wrapf(err, "%s completion", r.provider.Name())
	}

	text, err := Check(resp.Text, version)
	if err != nil {
		r.logger.Debugw("Rephrase rejected", "provider", r.provider.Name(), "output", resp.Text, "draft", draft, "error", err)
		return "", err
	}
	return text, nil
}

// Check accepts the abstain sentence verbatim, or text that contains version
// and no other version token
func Check(text, version string) (string, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return "", errors.Wrap(ErrRejected, "empty output")
	case text == model.AbstainText:
		return text, nil
	case !strings.Contains(text, version):
		return "", errors.Wrapf(ErrRejected, "output omits version %s", version)
	}
	for _, tok := range extract.Versions(text) {
		if !strings.Contains(version, tok) {
			return "", errors.Wrapf(ErrRejected, "output introduces version %s", tok)
		}
	}
	return text, nil
}
