package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMCPCommand_Flags(t *testing.T) {
	t.Parallel()

	cmd := NewMCPCommand()

	assert.Equal(t, "mcp", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("debug"))
	assert.NotNil(t, cmd.Flags().Lookup(flagConfig))
	assert.NotNil(t, cmd.Flags().Lookup(flagOutput))
}
