package head

import (
	"strings"
	"testing"
)

func TestBuilder_HTML(t *testing.T) {
	b := New()
	b.SetTitle("Draft")
	b.SetTitle(`Edit sector – <North>`)
	b.Link(`<link rel="stylesheet" href="/static/crm.css">`)
	b.Link(`<link rel="stylesheet" href="/static/crm.css">`)

	got := string(b.HTML())
	if !strings.HasPrefix(got, `<meta charset="utf-8"><title>Edit sector – &lt;North&gt;</title>`) {
		t.Fatalf("head = %q", got)
	}
	if strings.Count(got, "crm.css") != 1 {
		t.Fatalf("duplicate link not dropped: %q", got)
	}
	if !strings.Contains(got, `name="viewport"`) {
		t.Fatalf("viewport meta missing: %q", got)
	}
}

func TestBuilder_NoTitle(t *testing.T) {
	if strings.Contains(string(New().HTML()), "<title>") {
		t.Fatal("empty title should be omitted")
	}
}
