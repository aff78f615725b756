package models

// Intent is a keyword-triggered entry point used when the user has no active scenario.
// When Answer is set it is returned as is; otherwise Scenario is started.
type Intent struct {
	Name     string   `json:"name" yaml:"name"`
	Tokens   []string `json:"tokens" yaml:"tokens"`
	Scenario string   `json:"scenario,omitempty" yaml:"scenario,omitempty"`
	Answer   string   `json:"answer,omitempty" yaml:"answer,omitempty"`
}
