package hierarchy

import (
	"strings"

	"shiro/internal/domain"
)

// Select filters specialists for one run. A specialist is included when the
// first whitespace-delimited token of its name, matched case-sensitively,
// appears in the requested integration set. Web-search specialists are
// considered only when the process-wide webSearch flag is on, regardless of
// what the request asks for. Order follows the specialist slice; an empty
// integration set selects nothing.
func Select(specialists []domain.AssistantConfig, integrations []string, webSearch bool) []domain.AssistantConfig {
	if len(integrations) == 0 {
		return nil
	}

	requested := make(map[string]bool, len(integrations))
	for _, it := range integrations {
		requested[it] = true
	}

	var selected []domain.AssistantConfig
	for _, s := range specialists {
		if s.WebSearch && !webSearch {
			continue
		}
		if requested[firstToken(s.Name)] {
			selected = append(selected, s)
		}
	}
	return selected
}

// firstToken returns the text before the first whitespace in s, or s itself
// when it contains none.
func firstToken(s string) string {
	if i := strings.IndexFunc(s, isSpace); i >= 0 {
		return s[:i]
	}
	return s
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
