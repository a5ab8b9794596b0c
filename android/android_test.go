package android

import (
	"strings"
	"testing"
)

func TestParse_BasicStrings(t *testing.T) {
	xml := `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="app_name">My App</string>
    <string name="greeting">Hello %1$s, you have %2$d messages</string>
</resources>`

	doc, err := Parse(xml)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(doc.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(doc.Entries))
	}
	e := doc.Entries[1]
	if e.Kind != KindString || e.Name != "greeting" {
		t.Fatalf("entry = kind %v name %q", e.Kind, e.Name)
	}
	if e.Value != "Hello %1$s, you have %2$d messages" {
		t.Errorf("value = %q", e.Value)
	}
}

func TestParse_StringArrayAndPlurals(t *testing.T) {
	xml := `<resources>
    <string-array name="planets">
        <item>Mercury</item>
        <item>Venus</item>
    </string-array>
    <plurals name="songs">
        <item quantity="one">%d song</item>
        <item quantity="other">%d songs</item>
    </plurals>
</resources>`

	doc, err := Parse(xml)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(doc.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(doc.Entries))
	}

	arr := doc.Entries[0]
	if arr.Kind != KindStringArray {
		t.Fatalf("entry 0 kind = %v, want KindStringArray", arr.Kind)
	}
	if len(arr.Items) != 2 || arr.Items[0] != "Mercury" || arr.Items[1] != "Venus" {
		t.Errorf("items = %v", arr.Items)
	}

	pl := doc.Entries[1]
	if pl.Kind != KindPlurals {
		t.Fatalf("entry 1 kind = %v, want KindPlurals", pl.Kind)
	}
	if got := pl.Quantities; len(got) != 2 || got[0] != "one" || got[1] != "other" {
		t.Errorf("quantities = %v", got)
	}
	if pl.Forms["other"] != "%d songs" {
		t.Errorf(`Forms["other"] = %q`, pl.Forms["other"])
	}
}

func TestParse_TranslatableFalse(t *testing.T) {
	xml := `<resources>
    <string name="api_url" translatable="false">https://example.com</string>
    <string name="title">Settings</string>
</resources>`

	doc, err := Parse(xml)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if doc.Entries[0].Translatable {
		t.Error("api_url should not be translatable")
	}

	tr := doc.TranslatableEntries()
	if len(tr) != 1 || tr[0].Name != "title" {
		t.Errorf("TranslatableEntries = %v", tr)
	}
}

func TestParse_CommentsPreserved(t *testing.T) {
	xml := `<resources>
    <!-- Screen titles -->
    <string name="home">Home</string>
</resources>`

	doc, err := Parse(xml)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(doc.Entries) != 2 || doc.Entries[0].Kind != KindComment {
		t.Fatalf("entries = %d, first kind = %v", len(doc.Entries), doc.Entries[0].Kind)
	}
	if doc.Entries[0].Comment != "Screen titles" {
		t.Errorf("comment = %q", doc.Entries[0].Comment)
	}

	out := string(doc.Marshal(MarshalOptions{}))
	if !strings.Contains(out, "<!-- Screen titles -->") {
		t.Errorf("comment not serialized:\n%s", out)
	}
}

func TestParse_InlineMarkupReconstructed(t *testing.T) {
	xml := `<resources>
    <string name="promo">Visit <xliff:g id="site">%1$s</xliff:g> today</string>
</resources>`

	doc, err := Parse(xml)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	got := doc.Entries[0].Value
	if !strings.Contains(got, `<xliff:g id="site">%1$s</xliff:g>`) {
		t.Errorf("inline markup lost: %q", got)
	}
}

func TestParse_DeclaredNamespacePrefixRestored(t *testing.T) {
	xml := `<resources xmlns:xliff="urn:oasis:names:tc:xliff:document:1.2">
    <string name="welcome">Hi <xliff:g id="user" example="Ana">%1$s</xliff:g>!</string>
</resources>`

	doc, err := Parse(xml)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := `Hi <xliff:g id="user" example="Ana">%1$s</xliff:g>!`
	if got := doc.Entries[0].Value; got != want {
		t.Errorf("value = %q, want %q", got, want)
	}

	out := string(doc.Marshal(MarshalOptions{}))
	if !strings.Contains(out, `<resources xmlns:xliff="urn:oasis:names:tc:xliff:document:1.2">`) {
		t.Errorf("xmlns declaration lost:\n%s", out)
	}
	if !strings.Contains(out, `<xliff:g id="user" example="Ana">%1$s</xliff:g>`) {
		t.Errorf("namespaced markup corrupted:\n%s", out)
	}
	if strings.Contains(out, "urn:oasis:names:tc:xliff:document:1.2:g") {
		t.Errorf("namespace URI leaked into a tag name:\n%s", out)
	}
}

func TestMarshal_PreservesResourceAttributes(t *testing.T) {
	xml := `<resources>
    <string name="welcome" formatted="false">Welcome %1$s</string>
    <string-array name="codes" translatable="false" tools:ignore="Typos">
        <item>alpha</item>
    </string-array>
</resources>`

	doc, err := Parse(xml)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	out := string(doc.Marshal(MarshalOptions{}))
	if !strings.Contains(out, `<string name="welcome" formatted="false">`) {
		t.Errorf("formatted attribute dropped:\n%s", out)
	}
	if !strings.Contains(out, `<string-array name="codes" translatable="false" tools:ignore="Typos">`) {
		t.Errorf("array attributes not preserved in order:\n%s", out)
	}
}

func TestParse_CDATARoundTrip(t *testing.T) {
	xml := `<resources>
    <string name="html_help"><![CDATA[<b>Bold</b> help text]]></string>
</resources>`

	doc, err := Parse(xml)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	e := doc.Entries[0]
	if !e.CDATA {
		t.Error("CDATA flag not set")
	}
	if e.Value != "<b>Bold</b> help text" {
		t.Errorf("value = %q", e.Value)
	}

	out := string(doc.Marshal(MarshalOptions{}))
	if !strings.Contains(out, "<![CDATA[<b>Bold</b> help text]]>") {
		t.Errorf("CDATA wrapper not restored:\n%s", out)
	}
}

func TestParse_ApostropheUnescaped(t *testing.T) {
	xml := `<resources>
    <string name="msg">Don\'t panic</string>
</resources>`

	doc, err := Parse(xml)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if doc.Entries[0].Value != "Don't panic" {
		t.Errorf("value = %q, want unescaped apostrophe", doc.Entries[0].Value)
	}

	out := string(doc.Marshal(MarshalOptions{}))
	if !strings.Contains(out, `Don\'t panic`) {
		t.Errorf("apostrophe not re-escaped:\n%s", out)
	}
}

func TestParse_MalformedXML(t *testing.T) {
	_, err := Parse(`<resources><string name="a">text</resources>`)
	if err == nil {
		t.Fatal("expected error for mismatched tags")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
}

func TestParse_NoResourcesRoot(t *testing.T) {
	_, err := Parse(`<other><string name="a">x</string></other>`)
	if err == nil {
		t.Fatal("expected error for missing <resources> root")
	}
}

func TestMarshal_RoundTripStructure(t *testing.T) {
	src := `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <!-- General -->
    <string name="app_name" translatable="false">WoL</string>
    <string name="hello">Hello</string>
    <string-array name="days">
        <item>Monday</item>
        <item>Tuesday</item>
    </string-array>
    <plurals name="files">
        <item quantity="one">%d file</item>
        <item quantity="other">%d files</item>
    </plurals>
</resources>
`

	doc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	out := string(doc.Marshal(MarshalOptions{}))
	if out != src {
		t.Errorf("round trip changed structure:\n--- in ---\n%s--- out ---\n%s", src, out)
	}
}

func TestMarshal_WindowsLineEndingsNormalized(t *testing.T) {
	src := "<resources>\r\n    <string name=\"a\">One</string>\r\n</resources>\r\n"

	doc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	out := string(doc.Marshal(MarshalOptions{}))
	if strings.Contains(out, "\r") {
		t.Error("output contains carriage returns")
	}
}

func TestMarshal_OmitUntranslatable(t *testing.T) {
	doc, err := Parse(`<resources>
    <string name="keep">Hello</string>
    <string name="skip" translatable="false">raw</string>
</resources>`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	out := string(doc.Marshal(MarshalOptions{OmitUntranslatable: true}))
	if strings.Contains(out, "skip") {
		t.Errorf("untranslatable entry not omitted:\n%s", out)
	}
	if !strings.Contains(out, "keep") {
		t.Errorf("translatable entry missing:\n%s", out)
	}
}

func TestMarshal_EscapesSpecials(t *testing.T) {
	doc := &Document{Entries: []*Entry{
		{Kind: KindString, Name: "amp", Translatable: true, Value: "Fish & Chips"},
	}}
	out := string(doc.Marshal(MarshalOptions{}))
	if !strings.Contains(out, "Fish &amp; Chips") {
		t.Errorf("specials not escaped:\n%s", out)
	}
}
