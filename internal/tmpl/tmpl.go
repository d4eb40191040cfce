package tmpl

import "strings"

// Placeholders recognised in destination and preview output templates.
const (
	NamePlaceholder = "$name$"
	FilePlaceholder = "$file$"
)

// Vars holds the runtime values substituted into path templates.
type Vars struct {
	Name string // project display name from config.xml
	File string // preview source base name, extension stripped
}

// Expand replaces template placeholders in s with runtime values.
// $name$ → project name, $file$ → preview source base name.
func Expand(s string, vars Vars) string {
	s = strings.ReplaceAll(s, NamePlaceholder, vars.Name)
	s = strings.ReplaceAll(s, FilePlaceholder, vars.File)
	return s
}

// HasPlaceholder reports whether s still contains any known placeholder.
func HasPlaceholder(s string) bool {
	return strings.Contains(s, NamePlaceholder) || strings.Contains(s, FilePlaceholder)
}
