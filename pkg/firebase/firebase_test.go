package firebase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_RequiresCredentials(t *testing.T) {
	_, err := Connect(context.Background(), Settings{})
	assert.ErrorIs(t, err, ErrNoCredentials)

	_, err = Connect(context.Background(), Settings{CredentialsPath: filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")
}

func TestSettings_AppConfig(t *testing.T) {
	assert.Nil(t, Settings{CredentialsPath: "sa.json"}.appConfig())
	cfg := Settings{ProjectID: "causeconnect-prod"}.appConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "causeconnect-prod", cfg.ProjectID)
}
