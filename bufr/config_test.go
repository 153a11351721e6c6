package bufr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationValidFillsDefaults(t *testing.T) {
	cfg, err := Configuration{}.Valid()
	require.NoError(t, err)
	assert.Equal(t, defaultTableDirectory, cfg.TableDirectory)
}

func TestConfigurationValidKeepsExplicitValues(t *testing.T) {
	cfg, err := Configuration{TableDirectory: "/srv/tables", VerboseDescriptors: true}.Valid()
	require.NoError(t, err)
	assert.Equal(t, "/srv/tables", cfg.TableDirectory)
	assert.True(t, cfg.VerboseDescriptors)
}
