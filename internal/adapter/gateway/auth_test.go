package gateway

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiro/internal/domain"
)

func TestStaticTokenAuth(t *testing.T) {
	auth := NewStaticTokenAuth([]TokenEntry{
		{Token: "secret-1", Name: "cli"},
		{Token: "secret-2", Name: "web"},
	})

	info, err := auth.Authenticate("secret-2")
	require.NoError(t, err)
	assert.Equal(t, "web", info.Name)

	_, err = auth.Authenticate("wrong")
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)

	_, err = auth.Authenticate("")
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestNoAuth(t *testing.T) {
	info, err := NoAuth{}.Authenticate("")
	require.NoError(t, err)
	assert.Equal(t, "anonymous", info.Name)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest("POST", "/invoke", nil)
	assert.Empty(t, bearerToken(r))

	r.Header.Set("Authorization", "Bearer secret-1")
	assert.Equal(t, "secret-1", bearerToken(r))

	r.Header.Set("Authorization", "bearer lower")
	assert.Equal(t, "lower", bearerToken(r))

	r.Header.Set("Authorization", "Basic dXNlcg==")
	assert.Empty(t, bearerToken(r))
}
