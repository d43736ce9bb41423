package jsonx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-coach/pkg/jsonx"
)

func TestExtractObject(t *testing.T) {
	t.Parallel()

	obj, ok := jsonx.ExtractObject(`Sure, here you go: {"action":"continue","score":7} hope that helps`)
	require.True(t, ok)
	assert.JSONEq(t, `{"action":"continue","score":7}`, obj)

	obj, ok = jsonx.ExtractObject("```json\n{\"a\":1}\n```")
	require.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, obj)

	// Braces inside strings must not end the scan early.
	obj, ok = jsonx.ExtractObject(`{"text":"use } carefully","n":{"x":1}}`)
	require.True(t, ok)
	assert.JSONEq(t, `{"text":"use } carefully","n":{"x":1}}`, obj)

	_, ok = jsonx.ExtractObject("no json at all")
	assert.False(t, ok)

	_, ok = jsonx.ExtractObject(`{"unterminated": true`)
	assert.False(t, ok)

	_, ok = jsonx.ExtractObject(`{invalid json}`)
	assert.False(t, ok)
}

func TestExtractArray(t *testing.T) {
	t.Parallel()

	arr, ok := jsonx.ExtractArray(`Questions below:
[{"question":"Q1"},{"question":"Q2"}]`)
	require.True(t, ok)
	assert.JSONEq(t, `[{"question":"Q1"},{"question":"Q2"}]`, arr)

	arr, ok = jsonx.ExtractArray(`[["nested"],["arrays"]]`)
	require.True(t, ok)
	assert.JSONEq(t, `[["nested"],["arrays"]]`, arr)

	_, ok = jsonx.ExtractArray(`{"object":"only"}`)
	assert.False(t, ok)

	_, ok = jsonx.ExtractArray("plain prose")
	assert.False(t, ok)
}
