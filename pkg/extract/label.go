package extract

import (
	"html"
	"regexp"
	"strings"

	"github.com/topotab/topotab/pkg/schema"
	"github.com/topotab/topotab/pkg/topology"
)

// =============================================================================
// Label Parsing
// =============================================================================

var (
	tagPattern  = regexp.MustCompile(`<[^>]+>`)
	divPattern  = regexp.MustCompile(`(?s)<div[^>]*>(.*?)</div>`)
	ipv4Pattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

	// Device model shapes: letters followed by digits, like CE8865, S5755,
	// USG6635, or CE8865-4C.
	modelPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[A-Z].*\d`),
		regexp.MustCompile(`^[A-Z]{2,4}\d+`),
		regexp.MustCompile(`^[A-Z]\d+`),
	}
)

// stripHTML reduces an HTML label to its visible text lines. Line breaks
// survive; tags and entities do not.
func stripHTML(value string) []string {
	s := strings.ReplaceAll(value, "<br/>", "\n")
	s = strings.ReplaceAll(s, "<br>", "\n")
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// parseDeviceLabel recovers device identity from a vertex label. Diagram
// authors write labels in several shapes:
//
//	<div><b>name</b><br/>mgmt</div>   name + management address
//	<div>name</div>model              name + model (standard draw.io)
//	<div>name</div><div>model</div>   name + model, two divs
//	name@mgmt                         plain with separator
//	name|model                        plain with separator
//	name                              bare name
func parseDeviceLabel(value string) (name, mgmt, model string) {
	if value == "" {
		return "", "", ""
	}

	if strings.Contains(value, "<b>") && strings.Contains(value, "<br/>") {
		name, mgmt = splitNameAddress(value)
		return name, mgmt, ""
	}

	if strings.Contains(value, "<div>") && strings.Contains(value, "</div>") {
		decoded := html.UnescapeString(value)
		if m := divPattern.FindStringSubmatchIndex(decoded); m != nil {
			name = strings.TrimSpace(tagPattern.ReplaceAllString(decoded[m[2]:m[3]], ""))
			rest := strings.TrimSpace(decoded[m[1]:])
			if second := divPattern.FindStringSubmatch(rest); second != nil {
				model = strings.TrimSpace(tagPattern.ReplaceAllString(second[1], ""))
			} else {
				model = rest
			}
			return name, "", model
		}
		name, mgmt = splitNameAddress(value)
		return name, mgmt, ""
	}

	name, mgmt = splitNameAddress(value)
	if mgmt != "" && looksLikeModel(mgmt) {
		return name, "", mgmt
	}
	return name, mgmt, ""
}

// splitNameAddress handles the two-line and separator label shapes, returning
// (name, second part).
func splitNameAddress(value string) (string, string) {
	lines := stripHTML(value)
	switch {
	case len(lines) >= 2:
		return lines[0], lines[1]
	case len(lines) == 1:
		line := lines[0]
		for _, sep := range []string{"@", "|"} {
			if strings.Contains(line, sep) {
				parts := strings.SplitN(line, sep, 2)
				return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
			}
		}
		return line, ""
	default:
		return "", ""
	}
}

// looksLikeModel distinguishes a hardware model string from a management
// address on the second label line.
func looksLikeModel(text string) bool {
	if len(text) < 3 || len(text) > 20 {
		return false
	}
	for _, p := range modelPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// =============================================================================
// Edge Label Parsing
// =============================================================================

// valueSeparators are tried in order when splitting "key: value" label lines.
var valueSeparators = []string{"：", ":", "=", "-", "|"}

// parsePortInfo extracts port attributes from an edge label into an endpoint.
// Each label line is matched against the configured keyword sets; lines that
// match nothing are ignored.
func parsePortInfo(text string, keywords map[string][]string, ep *topology.Endpoint) bool {
	matched := false
	for _, line := range stripHTML(text) {
		lower := strings.ToLower(line)
		switch {
		case lineMatches(lower, keywords[schema.FieldPortChannel]):
			if v := extractValue(line); v != "" {
				ep.PortChannel = v
				matched = true
			}
		case lineMatches(lower, keywords[schema.FieldInterfaceIP]) && strings.Contains(lower, "ip"):
			if v := extractValue(line); v != "" && ipv4Pattern.MatchString(v) {
				ep.InterfaceIP = v
				matched = true
			}
		case lineMatches(lower, keywords[schema.FieldInterface]) && !strings.Contains(lower, "ip"):
			if v := extractValue(line); v != "" {
				ep.Interface = v
				matched = true
			}
		case lineMatches(lower, keywords[schema.FieldVRF]):
			if v := extractValue(line); v != "" {
				ep.VRF = v
				matched = true
			}
		case lineMatches(lower, keywords[schema.FieldVLAN]):
			if v := extractValue(line); v != "" {
				ep.VLAN = v
				matched = true
			}
		case ipv4Pattern.MatchString(line):
			ep.InterfaceIP = line
			matched = true
		}
	}
	return matched
}

// lineMatches reports whether any keyword appears in the lowercased line.
func lineMatches(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// extractValue splits a "key<sep>value" label line and returns the value.
// Without a separator the last whitespace-delimited token is used when it
// looks like a value rather than prose.
func extractValue(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}

	for _, sep := range valueSeparators {
		if idx := strings.Index(line, sep); idx >= 0 {
			value := strings.TrimSpace(line[idx+len(sep):])
			if value != "" {
				return value
			}
		}
	}

	words := strings.Fields(line)
	if len(words) > 1 {
		last := words[len(words)-1]
		if strings.ContainsAny(last, "0123456789./-_") {
			return last
		}
	}
	return ""
}
