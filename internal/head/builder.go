// internal/head/builder.go
//
// The Builder collects everything that should appear inside a page’s
// <head> element.  It is scoped to a single render call: handlers set the
// title and push tags, then the page template emits Builder.HTML().
//
// Features
// --------
//   - SetTitle   – single <title> tag (last call wins).
//   - Meta, Link – arbitrary pre-escaped tags, deduplicated.
//   - HTML       – charset first, then title, metas, and links.
package head

import (
	"html/template"
	"strings"
)

// Builder is owned by one request and is not safe for concurrent use.
type Builder struct {
	title string
	metas []string
	links []string
	seen  map[string]struct{}
}

// New returns a Builder seeded with the charset and viewport tags every
// page carries.
func New() *Builder {
	b := &Builder{seen: make(map[string]struct{})}
	b.Meta(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	return b
}

// SetTitle overrides the page <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) { b.title = t }

func (b *Builder) Meta(tag string) { b.add("meta:"+tag, &b.metas, tag) }
func (b *Builder) Link(tag string) { b.add("link:"+tag, &b.links, tag) }

func (b *Builder) add(key string, tgt *[]string, tag string) {
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

// HTML renders the head contents.  The title is escaped; metas and links
// are trusted markup supplied by code.
func (b *Builder) HTML() template.HTML {
	var sb strings.Builder
	sb.WriteString(`<meta charset="utf-8">`)
	if b.title != "" {
		sb.WriteString("<title>" + template.HTMLEscapeString(b.title) + "</title>")
	}
	for _, m := range b.metas {
		sb.WriteString(m)
	}
	for _, l := range b.links {
		sb.WriteString(l)
	}
	return template.HTML(sb.String())
}
