package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiro/internal/domain"
)

func coordinator() domain.AssistantConfig {
	return domain.AssistantConfig{Name: "Task Coordinator", Instructions: "Delegate."}
}

func specialist(name string, webSearch bool) domain.AssistantConfig {
	return domain.AssistantConfig{Name: name, Instructions: "Do " + name + " things.", WebSearch: webSearch}
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(coordinator(), []domain.AssistantConfig{
		specialist("Gmail Agent", false),
		specialist("Slack Agent", false),
	})
	require.NoError(t, err)

	assert.Equal(t, "Task Coordinator", reg.Coordinator().Name)
	specs := reg.Specialists()
	require.Len(t, specs, 2)
	assert.Equal(t, "Gmail Agent", specs[0].Name)

	got, err := reg.Lookup("Slack Agent")
	require.NoError(t, err)
	assert.Equal(t, "Slack Agent", got.Name)
}

func TestNewRegistryDuplicateName(t *testing.T) {
	_, err := NewRegistry(coordinator(), []domain.AssistantConfig{
		specialist("Gmail Agent", false),
		specialist("Gmail Agent", false),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateAssistant)
}

func TestNewRegistrySpecialistShadowsCoordinator(t *testing.T) {
	_, err := NewRegistry(coordinator(), []domain.AssistantConfig{
		specialist("Task Coordinator", false),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateAssistant)
}

func TestLookupUnknown(t *testing.T) {
	reg, err := NewRegistry(coordinator(), nil)
	require.NoError(t, err)

	_, err = reg.Lookup("Fax Agent")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAssistantNotFound)
}

func TestSpecialistsReturnsCopy(t *testing.T) {
	reg, err := NewRegistry(coordinator(), []domain.AssistantConfig{
		specialist("Gmail Agent", false),
	})
	require.NoError(t, err)

	specs := reg.Specialists()
	specs[0].Name = "Mutated"

	again := reg.Specialists()
	assert.Equal(t, "Gmail Agent", again[0].Name)
}
