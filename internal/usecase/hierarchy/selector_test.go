package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shiro/internal/domain"
)

func fleet() []domain.AssistantConfig {
	return []domain.AssistantConfig{
		specialist("Gmail Agent", false),
		specialist("Slack Agent", false),
		specialist("Search Agent", true),
		specialist("Notion Agent", false),
	}
}

func names(specs []domain.AssistantConfig) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Name
	}
	return out
}

func TestSelectMatchesFirstToken(t *testing.T) {
	got := Select(fleet(), []string{"Slack", "Gmail"}, false)
	assert.Equal(t, []string{"Gmail Agent", "Slack Agent"}, names(got))
}

func TestSelectPreservesConfigOrder(t *testing.T) {
	got := Select(fleet(), []string{"Notion", "Gmail", "Slack"}, false)
	assert.Equal(t, []string{"Gmail Agent", "Slack Agent", "Notion Agent"}, names(got))
}

func TestSelectEmptyIntegrations(t *testing.T) {
	assert.Empty(t, Select(fleet(), nil, true))
	assert.Empty(t, Select(fleet(), []string{}, true))
}

func TestSelectCaseSensitive(t *testing.T) {
	assert.Empty(t, Select(fleet(), []string{"gmail", "SLACK"}, false))
}

func TestSelectUnknownIntegrationIgnored(t *testing.T) {
	got := Select(fleet(), []string{"Fax", "Gmail"}, false)
	assert.Equal(t, []string{"Gmail Agent"}, names(got))
}

func TestSelectWebSearchGate(t *testing.T) {
	// Flag off: the web-search specialist is invisible even when requested.
	got := Select(fleet(), []string{"Search"}, false)
	assert.Empty(t, got)

	// Flag on: normal selection applies.
	got = Select(fleet(), []string{"Search"}, true)
	assert.Equal(t, []string{"Search Agent"}, names(got))

	// Flag on but not requested: still excluded.
	got = Select(fleet(), []string{"Gmail"}, true)
	assert.Equal(t, []string{"Gmail Agent"}, names(got))
}

func TestSelectDuplicateIntegrationsSelectOnce(t *testing.T) {
	got := Select(fleet(), []string{"Gmail", "Gmail"}, false)
	assert.Equal(t, []string{"Gmail Agent"}, names(got))
}

func TestFirstToken(t *testing.T) {
	assert.Equal(t, "Gmail", firstToken("Gmail Agent"))
	assert.Equal(t, "Gmail", firstToken("Gmail\tAgent"))
	assert.Equal(t, "Solo", firstToken("Solo"))
	assert.Equal(t, "", firstToken(" leading"))
}
