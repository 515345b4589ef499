// internal/directive/directive.go
//
// This package holds the text-level rule that forces a Next.js client page
// into dynamic rendering. It never touches the filesystem: callers hand it
// file contents and get back the patched contents plus what happened.

package directive

import (
	"regexp"
	"strings"
)

const (
	// Block is spliced in right after the client directive.
	Block = "\n// Force dynamic rendering (évite erreurs prerendering)\nexport const dynamic = 'force-dynamic';\nexport const revalidate = 0;\n"

	// Guard marks a file that already declares its rendering mode.
	Guard = "export const dynamic"
)

// marker matches the client directive statement in either quoting style.
// RE2 has no backreferences so the two variants are spelled out.
var marker = regexp.MustCompile(`"use client";|'use client';`)

// Decision describes what Apply did to a piece of content.
type Decision int

const (
	// Inserted means the block was spliced in after the marker.
	Inserted Decision = iota
	// AlreadyConfigured means the guard was found and nothing changed.
	AlreadyConfigured
	// NoMarker means no client directive was found and nothing changed.
	NoMarker
)

func (d Decision) String() string {
	switch d {
	case Inserted:
		return "inserted"
	case AlreadyConfigured:
		return "already-configured"
	case NoMarker:
		return "no-marker"
	default:
		return "unknown"
	}
}

// Apply returns content with Block inserted after the first client
// directive. The guard is checked before the marker, so a file that already
// declares `dynamic` is never changed even when it carries the directive.
func Apply(content string) (string, Decision) {
	if strings.Contains(content, Guard) {
		return content, AlreadyConfigured
	}
	loc := marker.FindStringIndex(content)
	if loc == nil {
		return content, NoMarker
	}
	end := loc[1]
	var b strings.Builder
	b.Grow(len(content) + len(Block))
	b.WriteString(content[:end])
	b.WriteString(Block)
	b.WriteString(content[end:])
	return b.String(), Inserted
}
