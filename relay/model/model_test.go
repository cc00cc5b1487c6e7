package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPromptMessages(t *testing.T) {
	msgs := BuildPromptMessages("", "hi")
	require.Equal(t, []ChatMessage{{Role: RoleUser, Content: "hi"}}, msgs)

	msgs = BuildPromptMessages("be terse", "hi")
	require.Len(t, msgs, 2)
	require.Equal(t, RoleSystem, msgs[0].Role)
	require.Equal(t, "be terse", msgs[0].Content)
	require.Equal(t, RoleUser, msgs[1].Role)

	msgs = BuildPromptMessages("   ", "hi")
	require.Len(t, msgs, 1)
}

func TestStreamResponseTextSelection(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		content   string
		reasoning string
	}{
		{"delta content", `{"choices":[{"delta":{"content":"a"}}]}`, "a", ""},
		{"message fallback", `{"choices":[{"message":{"content":"b","reasoning_content":"r"}}]}`, "b", "r"},
		{"delta wins", `{"choices":[{"delta":{"content":"d","reasoning_content":"x"},"message":{"content":"m","reasoning_content":"y"}}]}`, "d", "x"},
		{"empty delta falls through", `{"choices":[{"delta":{"content":""},"message":{"content":"m"}}]}`, "m", ""},
		{"null content", `{"choices":[{"delta":{"content":null}}]}`, "", ""},
		{"no choices", `{"choices":[]}`, "", ""},
		{"parts", `{"choices":[{"delta":{"content":[{"type":"text","text":"p1"},{"type":"text","text":"p2"}]}}]}`, "p1p2", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var resp ChatCompletionsStreamResponse
			require.NoError(t, json.Unmarshal([]byte(tc.body), &resp))
			require.Equal(t, tc.content, resp.ContentText())
			require.Equal(t, tc.reasoning, resp.ReasoningText())
		})
	}
}

func TestModelsResponseIDs(t *testing.T) {
	var resp ModelsResponse
	require.NoError(t, json.Unmarshal([]byte(`{"data":[{"id":"a"},{"model":"b"},{"name":"c"},"bogus"]}`), &resp))
	require.Equal(t, []string{"a", "b", "", ""}, resp.ModelIDs())

	resp = ModelsResponse{}
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"id":"a"}}`), &resp))
	require.Empty(t, resp.ModelIDs())

	resp = ModelsResponse{}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &resp))
	require.Empty(t, resp.ModelIDs())
}

func TestParamValueKinds(t *testing.T) {
	var params RequestParams
	require.NoError(t, json.Unmarshal([]byte(`{"a":null,"b":true,"c":1.5,"d":"x","e":[1],"f":{"g":1}}`), &params))

	want := map[string]ParamKind{
		"a": ParamNull, "b": ParamBool, "c": ParamNumber,
		"d": ParamString, "e": ParamArray, "f": ParamObject,
	}
	for key, kind := range want {
		require.Equal(t, kind, params[key].Kind(), key)
	}
	require.NoError(t, params.Validate())

	out, err := json.Marshal(params)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":null,"b":true,"c":1.5,"d":"x","e":[1],"f":{"g":1}}`, string(out))
}

func TestParamValueValidatedAtSerialization(t *testing.T) {
	params := RequestParams{"bad": RawParamValue([]byte("{nope"))}
	require.Equal(t, ParamObject, params["bad"].Kind())
	require.Error(t, params.Validate())

	_, err := json.Marshal(params)
	require.Error(t, err)

	v, err := NewParamValue(map[string]any{"k": 2})
	require.NoError(t, err)
	require.Equal(t, ParamObject, v.Kind())

	require.Equal(t, ParamNull, ParamValue{}.Kind())
	out, err := json.Marshal(ParamValue{})
	require.NoError(t, err)
	require.Equal(t, "null", string(out))
}

func TestModelSlotLifecycle(t *testing.T) {
	slot := ModelSlot{Id: "s1"}
	require.False(t, slot.IsActive())

	slot.ProviderId = "p1"
	require.False(t, slot.IsActive())
	slot.ModelId = "gpt-4o"
	require.True(t, slot.IsActive())
	require.Equal(t, "gpt-4o", slot.Label())

	slot.DisplayName = "GPT"
	require.Equal(t, "GPT", slot.Label())

	slot.Clear()
	require.Equal(t, ModelSlot{Id: "s1"}, slot)
}
