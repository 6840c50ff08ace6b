package assets

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForm(t *testing.T) {
	data := Form()
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "bundled form should start with a PDF header")

	// Callers get their own copy.
	data[0] = 'X'
	assert.True(t, bytes.HasPrefix(Form(), []byte("%PDF-")))
}
