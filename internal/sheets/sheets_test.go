package sheets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteSheet(t *testing.T) {
	assert.Equal(t, "Sheet1", quoteSheet("Sheet1"))
	assert.Equal(t, "'Công nợ'", quoteSheet("Công nợ"))
	assert.Equal(t, "'O''Brien'", quoteSheet("O'Brien"))
}

func TestCredentialsLoad(t *testing.T) {
	data, err := Credentials{JSON: `{"type":"service_account"}`, File: "/nope"}.load()
	require.NoError(t, err)
	assert.Contains(t, string(data), "service_account")

	_, err = Credentials{}.load()
	assert.Error(t, err)

	_, err = Credentials{File: "/definitely/missing.json"}.load()
	assert.Error(t, err)
}

func TestMemoryWriterReplaces(t *testing.T) {
	m := NewMemoryWriter()
	_, err := m.ReplaceRows(context.Background(), [][]string{{"a", "b"}, {"c", "d"}})
	require.NoError(t, err)
	_, err = m.ReplaceRows(context.Background(), [][]string{{"x"}})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"x"}}, m.Rows())
	assert.Equal(t, 2, m.Writes())
}
