package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		values  map[string]string
		want    string
		wantErr bool
	}{
		{name: "no placeholders", tmpl: "hello", want: "hello"},
		{name: "single", tmpl: "Вы ввели {origin}.", values: map[string]string{"origin": "Москва"}, want: "Вы ввели Москва."},
		{name: "repeated", tmpl: "{a}-{a}", values: map[string]string{"a": "x"}, want: "x-x"},
		{name: "value with braces is not expanded", tmpl: "{a}", values: map[string]string{"a": "{b}"}, want: "{b}"},
		{name: "non placeholder braces kept", tmpl: "{ a } {A}", want: "{ a } {A}"},
		{name: "missing", tmpl: "Телефон {phone}", values: map[string]string{"origin": "x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, tt.values)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingPlaceholder)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"flights", "requested_date"}, Placeholders("{requested_date}\n{flights}\n{flights}"))
	assert.Empty(t, Placeholders("plain"))
}
