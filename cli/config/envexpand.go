// Package config loads the YAML config file shared by livedraw commands.
package config

import (
	"regexp"
	"strings"
)

// envRef matches ${VAR}, ${VAR:-default} and the escaped $${VAR}.
var envRef = regexp.MustCompile(`\$?\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// expandEnv substitutes environment references in a config document.
// An unset or empty variable takes its default, or expands to nothing
// when there is none; missing required values fail validation later.
// $${VAR} is written out as the literal ${VAR}.
func expandEnv(doc string, lookup func(string) (string, bool)) string {
	var b strings.Builder
	last := 0
	for _, m := range envRef.FindAllStringSubmatchIndex(doc, -1) {
		b.WriteString(doc[last:m[0]])
		last = m[1]

		ref := doc[m[0]:m[1]]
		if strings.HasPrefix(ref, "$$") {
			b.WriteString(ref[1:])
			continue
		}
		if v, ok := lookup(doc[m[2]:m[3]]); ok && v != "" {
			b.WriteString(v)
		} else if m[4] >= 0 {
			b.WriteString(doc[m[4]:m[5]])
		}
	}
	b.WriteString(doc[last:])
	return b.String()
}
