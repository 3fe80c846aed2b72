package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderOrdersCells(t *testing.T) {
	dataset := Dataset{Headers: []string{"Student", "Status"}}
	dataset.AddRow("alice", "approved")
	dataset.AddRow("bob")

	out, err := NewCSVExporter().Render(dataset)
	require.NoError(t, err)
	assert.Equal(t, "Student,Status\nalice,approved\nbob,\n", string(out))
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}
