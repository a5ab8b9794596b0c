// Package android parses and serializes Android strings.xml resource files.
//
// Supported resource elements:
//   - <string>        — simple key/value string
//   - <string-array>  — ordered list of <item> strings
//   - <plurals>       — quantity-keyed plural forms
//
// Comments between resources, attribute values, entry order, CDATA wrappers,
// and translatable="false" flags all round-trip through Parse → Marshal.
// Output is always UTF-8 with Unix line endings, regardless of how the
// source file was encoded or terminated.
package android

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Kind identifies the type of a resource entry.
type Kind int

const (
	// KindString is a plain <string> resource.
	KindString Kind = iota
	// KindStringArray is a <string-array> resource.
	KindStringArray
	// KindPlurals is a <plurals> resource.
	KindPlurals
	// KindComment is an XML comment between resources.
	KindComment
)

// Attr is an XML attribute as written in the source, with the qualified
// name (e.g. xmlns:xliff) intact.
type Attr struct {
	Name  string
	Value string
}

// Entry is a single item in document order: a resource or a comment.
// Translated values are written by mutating the entry in place.
type Entry struct {
	Kind Kind

	// Attrs holds every attribute of the resource element in source order.
	// Marshal re-emits them verbatim, so flags like formatted="false"
	// survive translation.
	Attrs []Attr

	// Name is the name="…" attribute. Empty for comments.
	Name string
	// Translatable mirrors the translatable="…" attribute (default true).
	Translatable bool

	// Value is the text of a KindString entry. Apostrophes are stored
	// unescaped (\' → ') so the provider sees natural text; Marshal
	// re-escapes them.
	Value string
	// CDATA is true when the source value was wrapped in <![CDATA[...]]>.
	CDATA bool

	// Items holds <item> values of a KindStringArray in document order.
	Items []string
	// ItemCDATA mirrors Items.
	ItemCDATA []bool

	// Quantities and Forms hold a KindPlurals entry's quantity keywords in
	// document order and their texts.
	Quantities []string
	Forms      map[string]string
	// FormCDATA mirrors Quantities.
	FormCDATA map[string]bool

	// Comment is the trimmed comment text for KindComment.
	Comment string
}

// IsTranslatable reports whether the entry's text should be sent for
// translation.
func (e *Entry) IsTranslatable() bool {
	return e.Kind != KindComment && e.Translatable
}

// Document is a parsed strings.xml file.
type Document struct {
	// RootAttrs holds the <resources> element's attributes (typically
	// xmlns:xliff declarations) in source order.
	RootAttrs []Attr
	// Entries in source order, comments included.
	Entries []*Entry
}

// TranslatableEntries returns the entries whose text goes to the provider.
func (d *Document) TranslatableEntries() []*Entry {
	var out []*Entry
	for _, e := range d.Entries {
		if e.IsTranslatable() {
			out = append(out, e)
		}
	}
	return out
}

// ParseError reports malformed XML input.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parsing strings.xml: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// CDATA detection happens on the raw text before XML decoding, because Go's
// decoder unwraps CDATA sections transparently. Keys: "name" for strings,
// "name[i]" for array items, "name#quantity" for plural forms.
var (
	reStringCDATA  = regexp.MustCompile(`<string\s[^>]*name="([^"]+)"[^>]*>\s*<!\[CDATA\[`)
	reArrayBlock   = regexp.MustCompile(`(?s)<string-array\s[^>]*name="([^"]+)"[^>]*>(.*?)</string-array>`)
	reArrayItem    = regexp.MustCompile(`(?s)<item[^>]*>\s*(<!\[CDATA\[)?`)
	rePluralsBlock = regexp.MustCompile(`(?s)<plurals\s[^>]*name="([^"]+)"[^>]*>(.*?)</plurals>`)
	rePluralCDATA  = regexp.MustCompile(`(?s)<item\s[^>]*quantity="([^"]+)"[^>]*>\s*<!\[CDATA\[`)
)

func scanCDATA(text string) map[string]bool {
	found := map[string]bool{}

	for _, m := range reStringCDATA.FindAllStringSubmatch(text, -1) {
		found[m[1]] = true
	}
	for _, m := range reArrayBlock.FindAllStringSubmatch(text, -1) {
		name, block := m[1], m[2]
		for i, im := range reArrayItem.FindAllStringSubmatch(block, -1) {
			if im[1] != "" {
				found[fmt.Sprintf("%s[%d]", name, i)] = true
			}
		}
	}
	for _, m := range rePluralsBlock.FindAllStringSubmatch(text, -1) {
		name, block := m[1], m[2]
		for _, pm := range rePluralCDATA.FindAllStringSubmatch(block, -1) {
			found[name+"#"+pm[1]] = true
		}
	}
	return found
}

// Parse parses decoded strings.xml text into a Document.
func Parse(text string) (*Document, error) {
	doc := &Document{}
	cdata := scanCDATA(text)

	dec := xml.NewDecoder(strings.NewReader(text))
	inResources := false
	sawResources := false
	// ns maps namespace URIs back to their declared prefixes, so inline
	// markup like <xliff:g> can be reconstructed as written. Go's decoder
	// reports the URI in Name.Space once the prefix is declared.
	ns := map[string]string{}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "resources" {
				inResources = true
				sawResources = true
				for _, a := range t.Attr {
					if a.Name.Space == "xmlns" {
						ns[a.Value] = a.Name.Local
					}
					doc.RootAttrs = append(doc.RootAttrs, Attr{Name: qname(ns, a.Name), Value: a.Value})
				}
				continue
			}
			if !inResources {
				continue
			}

			var e *Entry
			switch t.Name.Local {
			case "string":
				e, err = parseString(dec, t, cdata, ns)
			case "string-array":
				e, err = parseStringArray(dec, t, cdata, ns)
			case "plurals":
				e, err = parsePlurals(dec, t, cdata, ns)
			default:
				err = dec.Skip()
			}
			if err != nil {
				return nil, &ParseError{Err: err}
			}
			if e != nil {
				doc.Entries = append(doc.Entries, e)
			}

		case xml.Comment:
			if inResources {
				if c := strings.TrimSpace(string(t)); c != "" {
					doc.Entries = append(doc.Entries, &Entry{Kind: KindComment, Comment: c})
				}
			}

		case xml.EndElement:
			if t.Name.Local == "resources" {
				inResources = false
			}
		}
	}

	if !sawResources {
		return nil, &ParseError{Err: errors.New("no <resources> root element")}
	}
	return doc, nil
}

func elemAttrs(ns map[string]string, elem xml.StartElement) (attrs []Attr, name string, translatable bool) {
	translatable = true
	for _, attr := range elem.Attr {
		attrs = append(attrs, Attr{Name: qname(ns, attr.Name), Value: attr.Value})
		if attr.Name.Space != "" {
			continue
		}
		switch attr.Name.Local {
		case "name":
			name = attr.Value
		case "translatable":
			if strings.EqualFold(attr.Value, "false") {
				translatable = false
			}
		}
	}
	return
}

func parseString(dec *xml.Decoder, elem xml.StartElement, cdata map[string]bool, ns map[string]string) (*Entry, error) {
	attrs, name, translatable := elemAttrs(ns, elem)
	value, err := innerText(dec, ns)
	if err != nil {
		return nil, fmt.Errorf("<string name=%q>: %w", name, err)
	}
	return &Entry{
		Kind:         KindString,
		Attrs:        attrs,
		Name:         name,
		Translatable: translatable,
		Value:        value,
		CDATA:        cdata[name],
	}, nil
}

func parseStringArray(dec *xml.Decoder, elem xml.StartElement, cdata map[string]bool, ns map[string]string) (*Entry, error) {
	attrs, name, translatable := elemAttrs(ns, elem)
	e := &Entry{Kind: KindStringArray, Attrs: attrs, Name: name, Translatable: translatable}

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("<string-array name=%q>: %w", name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "item" && depth == 1 {
				value, err := innerText(dec, ns)
				if err != nil {
					return nil, fmt.Errorf("<item> in <string-array name=%q>: %w", name, err)
				}
				idx := len(e.Items)
				e.Items = append(e.Items, value)
				e.ItemCDATA = append(e.ItemCDATA, cdata[fmt.Sprintf("%s[%d]", name, idx)])
			} else {
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return e, nil
}

func parsePlurals(dec *xml.Decoder, elem xml.StartElement, cdata map[string]bool, ns map[string]string) (*Entry, error) {
	attrs, name, translatable := elemAttrs(ns, elem)
	e := &Entry{
		Kind:         KindPlurals,
		Attrs:        attrs,
		Name:         name,
		Translatable: translatable,
		Forms:        map[string]string{},
		FormCDATA:    map[string]bool{},
	}

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("<plurals name=%q>: %w", name, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "item" && depth == 1 {
				var quantity string
				for _, attr := range t.Attr {
					if attr.Name.Local == "quantity" {
						quantity = attr.Value
						break
					}
				}
				value, err := innerText(dec, ns)
				if err != nil {
					return nil, fmt.Errorf("<item quantity=%q> in <plurals name=%q>: %w", quantity, name, err)
				}
				if quantity != "" {
					e.Quantities = append(e.Quantities, quantity)
					e.Forms[quantity] = value
					e.FormCDATA[quantity] = cdata[name+"#"+quantity]
				}
			} else {
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return e, nil
}

// innerText reads everything up to the element's matching close tag,
// reconstructing inline child elements (e.g. <xliff:g>) as raw text.
// CDATA sections arrive as xml.Directive tokens and are unwrapped.
func innerText(dec *xml.Decoder, ns map[string]string) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.WriteString(unescapeApostrophes(string(t)))
		case xml.Directive:
			s := string(t)
			if strings.HasPrefix(s, "[CDATA[") && strings.HasSuffix(s, "]]") {
				b.WriteString(unescapeApostrophes(s[7 : len(s)-2]))
			}
		case xml.StartElement:
			for _, attr := range t.Attr {
				if attr.Name.Space == "xmlns" {
					ns[attr.Value] = attr.Name.Local
				}
			}
			depth++
			b.WriteByte('<')
			b.WriteString(qname(ns, t.Name))
			for _, attr := range t.Attr {
				fmt.Fprintf(&b, ` %s="%s"`, qname(ns, attr.Name), attrEscape(attr.Value))
			}
			b.WriteByte('>')
		case xml.EndElement:
			depth--
			if depth > 0 {
				b.WriteString("</")
				b.WriteString(qname(ns, t.Name))
				b.WriteByte('>')
			}
		}
	}
	return b.String(), nil
}

// qname rewrites a decoded xml.Name as it appeared in the source. The
// decoder leaves an undeclared prefix in Name.Space verbatim; a declared
// one is resolved to its namespace URI, which ns maps back to the prefix.
func qname(ns map[string]string, name xml.Name) string {
	switch {
	case name.Space == "":
		return name.Local
	case name.Space == "xmlns":
		return "xmlns:" + name.Local
	default:
		if prefix, ok := ns[name.Space]; ok {
			if prefix == "" {
				return name.Local
			}
			return prefix + ":" + name.Local
		}
		return name.Space + ":" + name.Local
	}
}

// MarshalOptions controls serialization.
type MarshalOptions struct {
	// OmitUntranslatable drops translatable="false" resources from the
	// output; Android falls back to the default locale for them.
	OmitUntranslatable bool
}

// Marshal serializes the document to strings.xml bytes: UTF-8, \n line
// endings, 4-space indent, XML declaration first.
func (d *Document) Marshal(opts MarshalOptions) []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<resources")
	for _, a := range d.RootAttrs {
		fmt.Fprintf(&b, ` %s="%s"`, a.Name, attrEscape(a.Value))
	}
	b.WriteString(">\n")

	for _, e := range d.Entries {
		if opts.OmitUntranslatable && e.Kind != KindComment && !e.Translatable {
			continue
		}

		switch e.Kind {
		case KindComment:
			fmt.Fprintf(&b, "    <!-- %s -->\n", e.Comment)

		case KindString:
			fmt.Fprintf(&b, "    <string %s>%s</string>\n",
				resourceAttrs(e), encodeValue(e.Value, e.CDATA))

		case KindStringArray:
			fmt.Fprintf(&b, "    <string-array %s>\n", resourceAttrs(e))
			for i, item := range e.Items {
				useCDATA := i < len(e.ItemCDATA) && e.ItemCDATA[i]
				fmt.Fprintf(&b, "        <item>%s</item>\n", encodeValue(item, useCDATA))
			}
			b.WriteString("    </string-array>\n")

		case KindPlurals:
			fmt.Fprintf(&b, "    <plurals %s>\n", resourceAttrs(e))
			for _, q := range e.Quantities {
				fmt.Fprintf(&b, "        <item quantity=\"%s\">%s</item>\n",
					q, encodeValue(e.Forms[q], e.FormCDATA[q]))
			}
			b.WriteString("    </plurals>\n")
		}
	}

	b.WriteString("</resources>\n")
	return []byte(b.String())
}

// resourceAttrs re-emits the element's parsed attributes in source order.
// Entries built in code (no Attrs) fall back to name/translatable.
func resourceAttrs(e *Entry) string {
	if len(e.Attrs) > 0 {
		parts := make([]string, len(e.Attrs))
		for i, a := range e.Attrs {
			parts[i] = fmt.Sprintf(`%s="%s"`, a.Name, attrEscape(a.Value))
		}
		return strings.Join(parts, " ")
	}
	attrs := fmt.Sprintf("name=%q", e.Name)
	if !e.Translatable {
		attrs += ` translatable="false"`
	}
	return attrs
}

// attrEscape escapes an attribute value for double-quoted output.
func attrEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, `"`, "&quot;")
}

// encodeValue prepares a value for XML output. CDATA values are re-wrapped
// with only apostrophes escaped (AAPT requirement); plain values get
// standard XML escaping unless they carry inline markup.
func encodeValue(s string, useCDATA bool) string {
	if useCDATA {
		return "<![CDATA[" + escapeApostrophes(s) + "]]>"
	}
	return xmlEscape(s)
}

// xmlEscape escapes text content. Values containing both < and > are
// assumed to hold inline markup (e.g. <xliff:g>) and pass through as-is.
func xmlEscape(s string) string {
	if strings.Contains(s, "<") && strings.Contains(s, ">") {
		return s
	}
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return escapeApostrophes(s)
}

func unescapeApostrophes(s string) string {
	return strings.ReplaceAll(s, `\'`, `'`)
}

func escapeApostrophes(s string) string {
	s = strings.ReplaceAll(s, `\'`, `'`) // normalise first
	return strings.ReplaceAll(s, `'`, `\'`)
}
