package l10n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestPrinter_Text(t *testing.T) {
	tests := map[string]struct {
		lang string
		key  string
		want string
	}{
		"english total":     {lang: "en_US", key: Total, want: "Total"},
		"french undefined":  {lang: "fr_FR", key: Undefined, want: "(Indéfini)"},
		"belgian french":    {lang: "fr_BE", key: Loading, want: "Chargement..."},
		"german total":      {lang: "de_DE", key: Total, want: "Gesamt"},
		"unknown language":  {lang: "xx_XX", key: Measure, want: "Measure"},
		"empty language":    {lang: "", key: Count, want: "Count"},
		"spanish yes":       {lang: "es_ES", key: Yes, want: "Sí"},
		"dutch no":          {lang: "nl_NL", key: No, want: "Nee"},
		"untranslated text": {lang: "fr_FR", key: "Expected Revenue", want: "Expected Revenue"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, New(test.lang).Text(test.key))
		})
	}
}

func TestPrinter_RecordCount(t *testing.T) {
	assert.Equal(t, "3 records", New("en_US").RecordCount(3))
	assert.Equal(t, "3 enregistrements", New("fr_FR").RecordCount(3))
}

func TestPrinter_Tag(t *testing.T) {
	assert.Equal(t, language.English, New("pt_BR").Tag())
	assert.Equal(t, language.French, New("fr").Tag())
}
