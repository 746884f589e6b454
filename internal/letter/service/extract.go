package service

import (
	"strings"

	"github.com/lexdraftlabs/lexdraft/internal/letter/domain"
)

// extractFirstJSON returns the first balanced JSON object embedded in
// model output, which routinely wraps the object in prose or code fences.
// Balance is tracked by brace count only.
func extractFirstJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", domain.ErrGenerationParse
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			return text[start : i+1], nil
		}
	}

	return "", domain.ErrGenerationParse
}
