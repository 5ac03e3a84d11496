package codegen

import "strings"

// toSnake lower-snake-cases a proto identifier (already mostly snake_case in
// practice, but proto allows mixed case) the way the field- and
// module-naming rules in spec.md §4.1 require.
func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && name[i-1] != '_' {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// toUpperCamel upper-camel-cases a proto identifier (struct, enum, variant
// and service names per spec.md §4.1). Proto enum values conventionally
// arrive SCREAMING_SNAKE_CASE ("COLOR_RED"); each underscore-delimited
// segment is title-cased as a whole (not just its first letter) so such
// segments fold to "ColorRed" rather than "COLORRED".
func toUpperCamel(name string) string {
	var b strings.Builder
	for _, segment := range strings.Split(name, "_") {
		if segment == "" {
			continue
		}
		b.WriteString(titleCaseSegment(segment))
	}
	return b.String()
}

// titleCaseSegment upper-cases a segment's first rune. The rest of the
// segment is lower-cased only when the whole segment is already uniformly
// cased (all-upper, as in SCREAMING_SNAKE_CASE, or all-lower); a segment
// that already mixes case (e.g. one word of an existing UpperCamel name) is
// left alone beyond its first rune, so re-camel-casing an already-camel name
// is a no-op.
func titleCaseSegment(segment string) string {
	mixed := false
	hasUpper, hasLower := false, false
	for _, r := range segment {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		}
	}
	mixed = hasUpper && hasLower

	runes := []rune(segment)
	if runes[0] >= 'a' && runes[0] <= 'z' {
		runes[0] -= 'a' - 'A'
	}
	if mixed {
		return string(runes)
	}
	for i := 1; i < len(runes); i++ {
		if runes[i] >= 'A' && runes[i] <= 'Z' {
			runes[i] += 'a' - 'A'
		}
	}
	return string(runes)
}

// stripEnumPrefix removes prefix from name when name starts with it and the
// remainder still begins with an uppercase letter -- otherwise the match was
// coincidental ("Foo" must not be stripped from "Foobar") and name is
// returned unchanged.
func stripEnumPrefix(prefix, name string) string {
	stripped, ok := strings.CutPrefix(name, prefix)
	if !ok || stripped == "" {
		return name
	}
	if stripped[0] >= 'A' && stripped[0] <= 'Z' {
		return stripped
	}
	return name
}
