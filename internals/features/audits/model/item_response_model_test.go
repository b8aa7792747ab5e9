package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChoice(t *testing.T) {
	cases := map[string]Choice{
		"Yes":            ChoiceYes,
		" y ":            ChoiceYes,
		"PARTIALLY":      ChoicePartially,
		"partial":        ChoicePartially,
		"no":             ChoiceNo,
		"NA":             ChoiceNA,
		"n/a":            ChoiceNA,
		"Not Applicable": ChoiceNA,
		"":               ChoiceUnanswered,
		"unanswered":     ChoiceUnanswered,
	}
	for in, want := range cases {
		got, err := ParseChoice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseChoice("maybe")
	assert.Error(t, err)
}

func TestChoiceSemantics(t *testing.T) {
	assert.True(t, ChoiceNA.Answered())
	assert.False(t, ChoiceNA.Scored())
	assert.False(t, ChoiceUnanswered.Answered())
	assert.False(t, ChoiceUnanswered.Scored())
	assert.True(t, ChoiceNo.Scored())

	assert.Equal(t, 1.0, ChoiceYes.Factor())
	assert.Equal(t, 0.5, ChoicePartially.Factor())
	assert.Zero(t, ChoiceNo.Factor())
	assert.Zero(t, ChoiceNA.Factor())

	assert.False(t, Choice("Yes").Valid())
}

func TestChoiceUnmarshalJSON(t *testing.T) {
	var body struct {
		Choice Choice `json:"selected_choice"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"selected_choice":"N/A"}`), &body))
	assert.Equal(t, ChoiceNA, body.Choice)

	require.NoError(t, json.Unmarshal([]byte(`{"selected_choice":null}`), &body))
	assert.Equal(t, ChoiceUnanswered, body.Choice)

	assert.Error(t, json.Unmarshal([]byte(`{"selected_choice":"sometimes"}`), &body))
}
