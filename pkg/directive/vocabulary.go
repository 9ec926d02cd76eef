package directive

import (
	"strings"

	"github.com/vango-dev/orbit/pkg/host"
)

// DefaultPrefix is the default attribute prefix.
const DefaultPrefix = "o-"

// DefaultAlias is the list item alias used when a list has no "as".
const DefaultAlias = "$"

// AliasAttr names the list item alias attribute. It is not prefixed.
const AliasAttr = "as"

// Vocabulary holds the attribute names for one prefix.
type Vocabulary struct {
	Prefix         string
	Scope          string
	ScopeProps     string
	Load           string
	Ref            string
	Text           string
	HTML           string
	Model          string
	Show           string
	If             string
	For            string
	Teleport       string
	TeleportTarget string
	On             string
	Bind           string
}

// NewVocabulary returns the vocabulary for prefix. An empty prefix selects
// DefaultPrefix.
func NewVocabulary(prefix string) Vocabulary {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	prefix = strings.ToLower(prefix)
	return Vocabulary{
		Prefix:         prefix,
		Scope:          prefix + "scope",
		ScopeProps:     prefix + "scope-props",
		Load:           prefix + "load",
		Ref:            prefix + "ref",
		Text:           prefix + "text",
		HTML:           prefix + "html",
		Model:          prefix + "model",
		Show:           prefix + "show",
		If:             prefix + "if",
		For:            prefix + "for",
		Teleport:       prefix + "teleport",
		TeleportTarget: prefix + "teleport-target",
		On:             prefix + "on",
		Bind:           prefix + "bind-",
	}
}

// IsScope reports whether el declares a scope.
func (v Vocabulary) IsScope(el host.Element) bool {
	_, ok := el.Attr(v.Scope)
	return ok
}
