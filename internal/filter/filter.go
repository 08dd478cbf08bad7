package filter

import (
	"fmt"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
)

// Errors collects query parameter problems keyed by parameter name. An
// empty map means the query parsed cleanly.
type Errors map[string][]string

// Add appends a message to the named parameter's error list
func (e Errors) Add(param, msg string) {
	e[param] = append(e[param], msg)
}

// Any reports whether any parameter failed to parse
func (e Errors) Any() bool { return len(e) > 0 }

// Has reports whether the named parameter failed to parse
func (e Errors) Has(param string) bool { return len(e[param]) > 0 }

// String renders the errors on one line for log and text output
func (e Errors) String() string {
	var parts []string
	for param, msgs := range e {
		parts = append(parts, param+": "+strings.Join(msgs, "; "))
	}
	return strings.Join(parts, ", ")
}

// idIn splits the id__in parameter into its comma-separated IDs, dropping
// empty segments.
func idIn(q url.Values) []string {
	raw, ok := q["id__in"]
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

// parseBool reads an optional boolean parameter. Accepts the usual forms
// (true/false, 1/0) case-insensitively.
func parseBool(q url.Values, key string, errs Errors) *bool {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		errs.Add(key, fmt.Sprintf("invalid boolean value %q", v))
		return nil
	}
	return &b
}

// parseInt reads an optional integer parameter, returning def when absent
func parseInt(q url.Values, key string, def int, errs Errors) int {
	v := q.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		errs.Add(key, fmt.Sprintf("invalid integer value %q", v))
		return def
	}
	return n
}

// parseFamily reads the address family parameter, which must be 4 or 6
func parseFamily(q url.Values, errs Errors) int {
	v := q.Get("family")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || (n != 4 && n != 6) {
		errs.Add("family", fmt.Sprintf("family must be 4 or 6, got %q", v))
		return 0
	}
	return n
}

// parsePrefix reads an optional CIDR parameter. The prefix is canonicalized
// so host bits in the input do not change the network being asked about.
func parsePrefix(q url.Values, key string, errs Errors) netip.Prefix {
	v := q.Get(key)
	if v == "" {
		return netip.Prefix{}
	}
	p, err := netip.ParsePrefix(v)
	if err != nil {
		errs.Add(key, fmt.Sprintf("invalid prefix %q", v))
		return netip.Prefix{}
	}
	return p.Masked()
}

// values returns all non-empty values for a repeatable parameter
func values(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
