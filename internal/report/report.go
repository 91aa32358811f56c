// Package report formats run statistics for the user's locale.
package report

import (
	"fmt"
	"io"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Printer formats numbers with the digit grouping and decimal separator of
// a language.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// New creates a printer for the first valid tag in langs. With no usable
// tag it falls back to the system locales and then to en-US.
func New(langs ...string) *Printer {
	if len(langs) == 0 {
		langs, _ = locale.GetLocales()
	}
	langs = append(langs, "en-US")

	tag := language.AmericanEnglish
	for _, l := range langs {
		if t, err := language.Parse(l); err == nil {
			tag = t
			break
		}
	}

	return &Printer{tag: tag, p: message.NewPrinter(tag)}
}

// Language returns the language the printer formats for.
func (p *Printer) Language() language.Tag {
	return p.tag
}

// Sprintf formats like fmt.Sprintf with localized numbers.
func (p *Printer) Sprintf(format string, args ...any) string {
	return p.p.Sprintf(format, args...)
}

// Fprintf formats like fmt.Fprintf with localized numbers.
func (p *Printer) Fprintf(w io.Writer, format string, args ...any) (int, error) {
	return p.p.Fprintf(w, format, args...)
}

// Count formats an integer with digit grouping.
func (p *Printer) Count(n uint64) string {
	return p.p.Sprintf("%d", n)
}

// Ratio formats a value with the given number of decimals.
func (p *Printer) Ratio(v float64, decimals int) string {
	return p.p.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

// Percent formats part/total as a percentage with one decimal.
func (p *Printer) Percent(part, total uint64) string {
	if total == 0 {
		return p.Ratio(0, 1) + "%"
	}
	return p.Ratio(100*float64(part)/float64(total), 1) + "%"
}

// Field is one labelled value of a statistics table.
type Field struct {
	Label string
	Value string
}

// WriteTable writes fields as aligned "label: value" lines, indented by
// indent spaces.
func (p *Printer) WriteTable(w io.Writer, indent int, fields []Field) error {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Label))
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%*s%-*s %s\n", indent, "", width+1, f.Label+":", f.Value); err != nil {
			return err
		}
	}
	return nil
}
