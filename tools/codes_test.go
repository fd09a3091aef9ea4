package tools_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-builder/internal/codestore"
	"github.com/petasbytes/go-builder/tools"
)

func TestStoreAndRetrieveCode(t *testing.T) {
	h := newHarness(t)
	src := "def add(a, b):\n    return a + b\n"

	out, err := h.call(t, "store_code", tools.StoreCodeInput{CodeContent: src, Name: "add"})
	require.NoError(t, err)
	id := codestore.ID(src)
	assert.Equal(t, "Code stored with ID: "+id, out)

	again, err := h.call(t, "store_code", tools.StoreCodeInput{CodeContent: src})
	require.NoError(t, err)
	assert.Equal(t, out, again)

	got, err := h.call(t, "retrieve_code", tools.RetrieveCodeInput{CodeID: id})
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestRetrieveCode_NotFoundIsAResult(t *testing.T) {
	h := newHarness(t)
	out, err := h.call(t, "retrieve_code", tools.RetrieveCodeInput{CodeID: "missing"})
	require.NoError(t, err)
	assert.Equal(t, "Code with ID missing not found.", out)
}

func TestListAllFunctions(t *testing.T) {
	h := newHarness(t)

	out, err := h.call(t, "list_all_functions", struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	_, err = h.call(t, "store_code", tools.StoreCodeInput{CodeContent: "x = 1", Name: "x", Description: "one"})
	require.NoError(t, err)

	out, err = h.call(t, "list_all_functions", struct{}{})
	require.NoError(t, err)
	var got []codestore.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Name)
	assert.Equal(t, "one", got[0].Description)
}

func TestTaskCompleted(t *testing.T) {
	h := newHarness(t)
	out, err := h.call(t, tools.CompletionToolName, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "Task marked as completed.", out)
}
