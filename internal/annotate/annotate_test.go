// ABOUTME: Tests for the error-code annotator
// ABOUTME: Covers nesting, arrays, unknown codes, shared nodes, and the key-superset property

package annotate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/msu-mcp/internal/errcodes"
)

func testAnnotator(t *testing.T) *Annotator {
	t.Helper()
	table, err := errcodes.New(map[string]string{
		"ERR00001": "Invalid merchant",
		"ERR01234": "Something specific",
		"ERR20001": "Transaction not found",
	})
	require.NoError(t, err)
	return New(table)
}

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestAnnotate_TopLevelCode(t *testing.T) {
	a := testAnnotator(t)
	out := a.Annotate(decode(t, `{"status":"ERR00001"}`)).(map[string]any)

	assert.Equal(t, "ERR00001", out["status"])
	assert.Equal(t, "ERR00001: Invalid merchant", out["status_explanation"])
	assert.Len(t, out, 2)
}

func TestAnnotate_CodeEmbeddedInText(t *testing.T) {
	a := testAnnotator(t)
	out := a.Annotate(decode(t, `{"K":"request failed ERR01234 see docs"}`)).(map[string]any)

	assert.Equal(t, "ERR01234: Something specific", out["K_explanation"])
}

func TestAnnotate_FirstCodeWins(t *testing.T) {
	a := testAnnotator(t)
	out := a.Annotate(decode(t, `{"msg":"ERR20001 then ERR00001"}`)).(map[string]any)

	assert.Equal(t, "ERR20001: Transaction not found", out["msg_explanation"])
}

func TestAnnotate_NoExplanation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown code", `{"status":"ERR99999"}`},
		{"prefix without digits", `{"status":"ERROR"}`},
		{"too few digits", `{"status":"ERR0001"}`},
		{"lowercase", `{"status":"err00001"}`},
		{"plain text", `{"status":"APPROVED"}`},
		{"number value", `{"status":10001}`},
		{"null value", `{"status":null}`},
	}

	a := testAnnotator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := a.Annotate(decode(t, tt.input)).(map[string]any)
			assert.NotContains(t, out, "status_explanation")
			assert.Len(t, out, 1)
		})
	}
}

func TestAnnotate_NestedObjectsAndArrays(t *testing.T) {
	a := testAnnotator(t)
	raw := `{
		"responseCode": "00",
		"transactionList": [
			{"pgTranId": "1", "pgTranReturnCode": "ERR20001"},
			{"pgTranId": "2", "details": {"bankError": "bank said ERR00001"}},
			"ERR00001",
			[{"inner": "ERR01234"}]
		]
	}`
	out := a.Annotate(decode(t, raw)).(map[string]any)

	assert.NotContains(t, out, "responseCode_explanation")
	assert.NotContains(t, out, "transactionList_explanation")

	list := out["transactionList"].([]any)
	first := list[0].(map[string]any)
	assert.Equal(t, "ERR20001: Transaction not found", first["pgTranReturnCode_explanation"])
	assert.NotContains(t, first, "pgTranId_explanation")

	details := list[1].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "ERR00001: Invalid merchant", details["bankError_explanation"])

	// bare strings inside arrays are never annotated
	assert.Equal(t, "ERR00001", list[2])

	nested := list[3].([]any)[0].(map[string]any)
	assert.Equal(t, "ERR01234: Something specific", nested["inner_explanation"])
}

func TestAnnotate_TopLevelArray(t *testing.T) {
	a := testAnnotator(t)
	out := a.Annotate(decode(t, `[{"code":"ERR00001"}]`)).([]any)

	assert.Equal(t, "ERR00001: Invalid merchant", out[0].(map[string]any)["code_explanation"])
}

func TestAnnotate_ScalarsPassThrough(t *testing.T) {
	a := testAnnotator(t)
	for _, raw := range []string{`"ERR00001"`, `42`, `true`, `null`} {
		in := decode(t, raw)
		assert.Equal(t, in, a.Annotate(in))
	}
}

func TestAnnotate_DoesNotOverwriteExistingKey(t *testing.T) {
	a := testAnnotator(t)
	out := a.Annotate(decode(t, `{"status":"ERR00001","status_explanation":"from gateway"}`)).(map[string]any)

	assert.Equal(t, "from gateway", out["status_explanation"])
	assert.NotContains(t, out, "status_explanation_explanation")
}

func TestAnnotate_ExplanationsAreNotRescanned(t *testing.T) {
	a := testAnnotator(t)
	out := a.Annotate(decode(t, `{"a":"ERR00001","b":"ERR20001"}`)).(map[string]any)

	assert.Len(t, out, 4)
	assert.NotContains(t, out, "a_explanation_explanation")
	assert.NotContains(t, out, "b_explanation_explanation")
}

func TestAnnotate_SharedNodeVisitedOnce(t *testing.T) {
	a := testAnnotator(t)
	shared := map[string]any{"code": "ERR00001"}
	root := map[string]any{
		"left":  shared,
		"right": shared,
		"list":  []any{shared, shared},
	}

	a.Annotate(root)

	assert.Equal(t, "ERR00001: Invalid merchant", shared["code_explanation"])
	assert.Len(t, shared, 2)
}

func TestAnnotate_CycleTerminates(t *testing.T) {
	a := testAnnotator(t)
	node := map[string]any{"code": "ERR00001"}
	node["self"] = node

	a.Annotate(node)

	assert.Equal(t, "ERR00001: Invalid merchant", node["code_explanation"])
}

func TestAnnotate_IsSupersetOfInput(t *testing.T) {
	inputs := []string{
		`{"a":"ERR00001","b":{"c":["x",{"d":"ERR20001"}],"e":1.5},"f":null}`,
		`[{"x":"ERR01234"},{"y":[{"z":"nothing"}]}]`,
		`{"deep":{"deeper":{"deepest":{"code":"prefix ERR00001 suffix"}}}}`,
		`{"plain":"no codes here","n":12345678901234567890}`,
	}

	a := testAnnotator(t)
	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			original := decode(t, raw)
			annotated := a.Annotate(decode(t, raw))
			assertSuperset(t, original, annotated)
		})
	}
}

// assertSuperset checks that every key and value in want is still present in got.
func assertSuperset(t *testing.T, want, got any) {
	t.Helper()
	switch w := want.(type) {
	case map[string]any:
		g, ok := got.(map[string]any)
		require.True(t, ok, "expected object, got %T", got)
		for k, wv := range w {
			gv, ok := g[k]
			require.True(t, ok, "key %q removed", k)
			assertSuperset(t, wv, gv)
		}
	case []any:
		g, ok := got.([]any)
		require.True(t, ok, "expected array, got %T", got)
		require.Len(t, g, len(w))
		for i := range w {
			assertSuperset(t, w[i], g[i])
		}
	default:
		assert.Equal(t, want, got)
	}
}

func TestFindCode(t *testing.T) {
	code, ok := FindCode("x ERR12345 y")
	assert.True(t, ok)
	assert.Equal(t, "ERR12345", code)

	_, ok = FindCode("ERR")
	assert.False(t, ok)
}
