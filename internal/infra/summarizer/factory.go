package summarizer

import (
	"fmt"
	"strings"

	"news-digest/internal/usecase/digest"
)

// New builds the summarizer selected by cfg.Type. apiKey is ignored for noop.
func New(cfg Config, apiKey string) (digest.Summarizer, error) {
	if err := ValidateType(cfg.Type); err != nil {
		return nil, err
	}
	if cfg.Type != TypeNoOp && strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%s is required for summarizer type %q", APIKeyEnv(cfg.Type), cfg.Type)
	}

	switch cfg.Type {
	case TypeClaude:
		return NewClaude(apiKey, cfg), nil
	case TypeOpenAI:
		return NewOpenAI(apiKey, cfg), nil
	case TypeNoOp:
		return NewNoOp(cfg.CharacterLimit), nil
	default:
		return NewGemini(apiKey, cfg), nil
	}
}
