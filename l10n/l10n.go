// Package l10n translates the fixed labels produced by the spreadsheet data
// layer (totals, undefined groups, loading placeholders).
package l10n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	Total     = "Total"
	Undefined = "(Undefined)"
	Loading   = "Loading..."
	Count     = "Count"
	Measure   = "Measure"
	Yes       = "Yes"
	No        = "No"
	Records   = "%d records"
)

var translations = map[language.Tag]map[string]string{
	language.French: {
		Total:     "Total",
		Undefined: "(Indéfini)",
		Loading:   "Chargement...",
		Count:     "Nombre",
		Measure:   "Mesure",
		Yes:       "Oui",
		No:        "Non",
		Records:   "%d enregistrements",
	},
	language.Spanish: {
		Total:     "Total",
		Undefined: "(Indefinido)",
		Loading:   "Cargando...",
		Count:     "Cantidad",
		Measure:   "Medida",
		Yes:       "Sí",
		No:        "No",
		Records:   "%d registros",
	},
	language.German: {
		Total:     "Gesamt",
		Undefined: "(Nicht definiert)",
		Loading:   "Wird geladen ...",
		Count:     "Anzahl",
		Measure:   "Kennzahl",
		Yes:       "Ja",
		No:        "Nein",
		Records:   "%d Datensätze",
	},
	language.Dutch: {
		Total:     "Totaal",
		Undefined: "(Onbepaald)",
		Loading:   "Laden...",
		Count:     "Aantal",
		Measure:   "Meetwaarde",
		Yes:       "Ja",
		No:        "Nee",
		Records:   "%d records",
	},
}

var (
	cat       *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
)

func init() {
	cat = catalog.NewBuilder(catalog.Fallback(language.English))
	supported = []language.Tag{language.English}
	for _, key := range []string{Total, Undefined, Loading, Count, Measure, Yes, No, Records} {
		_ = cat.SetString(language.English, key, key)
	}
	for tag, msgs := range translations {
		supported = append(supported, tag)
		for key, msg := range msgs {
			_ = cat.SetString(tag, key, msg)
		}
	}
	matcher = language.NewMatcher(supported)
}

// Printer renders labels in one language.
type Printer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a printer for an Odoo language code such as "fr_BE".
// Unknown languages fall back to English.
func New(lang string) *Printer {
	requested, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		requested = language.English
	}
	_, idx, conf := matcher.Match(requested)
	tag := language.English
	if conf != language.No {
		tag = supported[idx]
	}
	return &Printer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(cat)),
	}
}

// Tag returns the matched language.
func (p *Printer) Tag() language.Tag {
	return p.tag
}

// Text translates a fixed label.
func (p *Printer) Text(key string) string {
	return p.printer.Sprintf(key)
}

// RecordCount renders "n records".
func (p *Printer) RecordCount(n int) string {
	return p.printer.Sprintf(Records, n)
}
