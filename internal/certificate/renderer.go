// Package certificate renders award certificates from the embedded SVG
// template. Rendering is pure string substitution: no I/O, and identical
// inputs always produce byte-identical output.
package certificate

import (
	_ "embed"
	"fmt"
	"strings"
	"time"
)

//go:embed template.svg
var baseTemplate string

// Placeholder values used when a detail field is left empty. The renderer
// never rejects partial input; it falls back to these instead.
const (
	DefaultRecipient  = "Joe Bloggs"
	DefaultIssuer     = "J Smith"
	DefaultIssuerRole = "Maker of stuff"
)

// Details are the values substituted into the certificate template.
type Details struct {
	Recipient  string
	Issuer     string
	IssuerRole string
	Date       string
}

// Render substitutes the details into the template and returns the SVG
// document. Empty fields default to the fixed placeholders; an empty Date
// defaults to today.
func Render(d Details) []byte {
	if d.Recipient == "" {
		d.Recipient = DefaultRecipient
	}
	if d.Issuer == "" {
		d.Issuer = DefaultIssuer
	}
	if d.IssuerRole == "" {
		d.IssuerRole = DefaultIssuerRole
	}
	if d.Date == "" {
		d.Date = HumanDate(time.Now())
	}

	doc := baseTemplate
	doc = strings.Replace(doc, "{{ recipient }}", escapeText(d.Recipient), 1)
	doc = strings.Replace(doc, "{{ issuer }}", escapeText(d.Issuer), 1)
	doc = strings.Replace(doc, "{{ issuerRole }}", escapeText(d.IssuerRole), 1)
	doc = strings.Replace(doc, "{{ date }}", escapeText(d.Date), 1)

	return []byte(doc)
}

// HumanDate formats t the way certificates spell dates, e.g.
// "September 1st, 2026".
func HumanDate(t time.Time) string {
	return fmt.Sprintf("%s %d%s, %d", t.Month(), t.Day(), ordinalSuffix(t.Day()), t.Year())
}

// ordinalSuffix returns the English ordinal suffix for a day of the month.
func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// escapeText escapes the XML special characters so user-provided names
// cannot break the SVG document structure.
func escapeText(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}
