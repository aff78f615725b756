package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validFile = `
default_answer: "не понял"
controls:
  scenario: demo
  start_token: /go
  help_token: /help
  quit_token: /quit
  help_answer: &help "справка"
  quit_answer: "пока"
intents:
  - name: start
    tokens: [/go, "начать"]
    scenario: demo
  - name: help
    tokens: [/help]
    answer: *help
scenarios:
  - id: demo
    steps:
      - number: 1
        prompt: "first"
        failure_text: "again"
        handler: h
      - number: 2
        prompt: "done {comment}"
`

func TestParse_Valid(t *testing.T) {
	f, err := Parse([]byte(validFile))
	require.NoError(t, err)

	assert.Equal(t, "не понял", f.DefaultAnswer)
	assert.Equal(t, "/go", f.Controls.StartToken)
	assert.Equal(t, "справка", f.Controls.HelpAnswer)
	require.Len(t, f.Intents, 2)
	assert.Equal(t, "справка", f.Intents[1].Answer)

	def, ok := f.Scenario("demo")
	require.True(t, ok)
	require.Len(t, def.Steps, 2)
	assert.Equal(t, HandlerID("h"), def.Steps[0].Handler)
	assert.True(t, def.Steps[1].Terminal())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not yaml", data: "::: ["},
		{name: "missing controls", data: "default_answer: x\nscenarios: [{id: a, steps: [{number: 1, prompt: p, handler: h}, {number: 2, prompt: q}]}]"},
		{
			name: "step number is not an integer",
			data: `
default_answer: x
controls: {scenario: a, start_token: s, help_token: h, quit_token: q, help_answer: ha, quit_answer: qa}
scenarios: [{id: a, steps: [{number: one, prompt: p, handler: h}, {number: 2, prompt: q}]}]`,
		},
		{
			name: "intent without scenario or answer",
			data: `
default_answer: x
controls: {scenario: a, start_token: s, help_token: h, quit_token: q, help_answer: ha, quit_answer: qa}
intents: [{name: i, tokens: [t]}]
scenarios: [{id: a, steps: [{number: 1, prompt: p, handler: h}, {number: 2, prompt: q}]}]`,
		},
		{
			name: "controls reference unknown scenario",
			data: `
default_answer: x
controls: {scenario: b, start_token: s, help_token: h, quit_token: q, help_answer: ha, quit_answer: qa}
scenarios: [{id: a, steps: [{number: 1, prompt: p, handler: h}, {number: 2, prompt: q}]}]`,
		},
		{
			name: "intent references unknown scenario",
			data: `
default_answer: x
controls: {scenario: a, start_token: s, help_token: h, quit_token: q, help_answer: ha, quit_answer: qa}
intents: [{name: i, tokens: [t], scenario: zzz}]
scenarios: [{id: a, steps: [{number: 1, prompt: p, handler: h}, {number: 2, prompt: q}]}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidFile)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}
