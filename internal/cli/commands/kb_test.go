package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMetadata(t *testing.T) {
	metadata, err := parseMetadata([]string{"source=runbook", "team=sre"})
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"source": "runbook", "team": "sre"}, metadata)
}

func TestParseMetadata_Empty(t *testing.T) {
	metadata, err := parseMetadata(nil)
	assert.NoError(t, err)
	assert.Nil(t, metadata)
}

func TestParseMetadata_Invalid(t *testing.T) {
	for _, entry := range []string{"no-separator", "=missing-key"} {
		_, err := parseMetadata([]string{entry})
		assert.Error(t, err, entry)
	}
}

func TestParseMetadata_ValueWithEquals(t *testing.T) {
	metadata, err := parseMetadata([]string{"query=a=b"})
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"query": "a=b"}, metadata)
}
