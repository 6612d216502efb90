package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syntrixbase/showroom/pkg/model"
)

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"co", "CO"},
		{"Co", "CO"},
		{"CIVIC", "CIVIC"},
		{"straße", "STRASSE"},
		{"ç", "Ç"},
		{"gol 1.0", "GOL 1.0"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePrefix(tt.in))
		})
	}
}

func TestPrefixRange(t *testing.T) {
	lo, hi := PrefixRange("co")
	assert.Equal(t, "CO", lo)
	assert.Equal(t, "CO\U0010FFFF", hi)

	for _, name := range []string{"CO", "COROLLA", "CORSA", "CO\uFFFF"} {
		assert.True(t, name >= lo && name < hi, name)
	}
	for _, name := range []string{"CIVIC", "C", "CP", "corolla"} {
		assert.False(t, name >= lo && name < hi, name)
	}
}

func TestPrefixFilters(t *testing.T) {
	f := prefixFilters("gol")
	assert.Equal(t, model.Filters{
		{Field: "name", Op: model.OpGte, Value: "GOL"},
		{Field: "name", Op: model.OpLt, Value: "GOL\U0010FFFF"},
	}, f)
}
