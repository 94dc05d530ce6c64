package core

import "strings"

// DefaultIgnoreDeriver is the minimal, in-tree stand-in for the out-of-scope
// wildcard engine: it understands enough of .gitignore and
// .gitattributes syntax to let this repository build and test standalone. A
// production deployment registers the real wildcard engine as the
// PropertyDeriver instead; this adapter only needs to satisfy the same
// narrow contract.
type DefaultIgnoreDeriver struct{}

// NewDefaultIgnoreDeriver returns the default PropertyDeriver.
func NewDefaultIgnoreDeriver() *DefaultIgnoreDeriver {
	return &DefaultIgnoreDeriver{}
}

// Derive parses name's contents according to which config file it is.
func (DefaultIgnoreDeriver) Derive(name string, content []byte) []PropertyFragment {
	switch name {
	case ".gitignore":
		return []PropertyFragment{IgnoreFragment{Lines: parseIgnoreLines(content)}}
	case ".gitattributes":
		return []PropertyFragment{BinaryFlagFragment{Paths: parseBinaryAttrPaths(content)}}
	case ".tgitconfig":
		return []PropertyFragment{AutoPropFragment{Rules: parseAutoPropRules(content)}}
	default:
		return nil
	}
}

// parseIgnoreLines strips blank lines and comments, passing everything else
// through as a literal svn:ignore pattern line. Real glob semantics
// (negation, "**", directory-only trailing slash) belong to the wildcard
// engine this adapter stands in for.
func parseIgnoreLines(content []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// parseBinaryAttrPaths scans .gitattributes for "<pattern> binary" or
// "<pattern> -text" lines, the two common ways of marking a path binary.
func parseBinaryAttrPaths(content []byte) []string {
	var paths []string
	for _, line := range strings.Split(string(content), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		for _, attr := range fields[1:] {
			if attr == "binary" || attr == "-text" {
				paths = append(paths, fields[0])
				break
			}
		}
	}
	return paths
}

// parseAutoPropRules parses "pattern = prop=val;prop2=val2" lines in the
// style of Subversion's own auto-props config section.
func parseAutoPropRules(content []byte) []AutoPropRule {
	var rules []AutoPropRule
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		idx := strings.Index(trimmed, "=")
		if idx < 0 {
			continue
		}
		pattern := strings.TrimSpace(trimmed[:idx])
		rest := strings.TrimSpace(trimmed[idx+1:])
		props := make(map[string]string)
		for _, pair := range strings.Split(rest, ";") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) == 2 {
				props[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
			} else {
				props[kv[0]] = "*"
			}
		}
		if pattern != "" {
			rules = append(rules, AutoPropRule{Pattern: pattern, Props: props})
		}
	}
	return rules
}
