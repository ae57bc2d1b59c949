package media

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// LeafKind is the inferred native type of one metadata value.
type LeafKind int

const (
	LeafString LeafKind = iota
	LeafInt
	LeafFloat
	LeafBool
)

// LeafValue keeps both the inferred native value and the raw source text.
type LeafValue struct {
	Kind  LeafKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
	Raw   string
}

// MetaEntry is one key/value line inside a group. Order is preserved.
type MetaEntry struct {
	Key   string
	Value LeafValue
}

// MetaGroup is one directory-style section of the raw dump.
type MetaGroup struct {
	Name    string
	Entries []MetaEntry
}

// MetaTree is the structured form of a raw metadata text dump.
type MetaTree struct {
	Groups []MetaGroup
}

var (
	intRe      = regexp.MustCompile(`^-?\d+$`)
	unitIntRe  = regexp.MustCompile(`^(-?\d+)\s*(pixels?|bits?|dots per inch|dpi|mm|sec|EV|%)\b`)
	rationalRe = regexp.MustCompile(`^(\d+)/(\d+)$`)
	fNumberRe  = regexp.MustCompile(`^f/(\d+(?:\.\d+)?)$`)
	floatRe    = regexp.MustCompile(`^(-?\d*\.\d+)`)
)

// ParseMetaTree turns a two-level indented dump into a tree:
// a non-indented line ending with ':' opens a group, indented "Key: Value"
// lines become leaves of the current group. Anything else is skipped, so
// feeding the function its own rendering yields the same tree.
func ParseMetaTree(raw string) MetaTree {
	var tree MetaTree
	var current *MetaGroup

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indented := strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
		trimmed := strings.TrimSpace(line)

		if !indented && strings.HasSuffix(trimmed, ":") && !strings.Contains(strings.TrimSuffix(trimmed, ":"), ":") {
			tree.Groups = append(tree.Groups, MetaGroup{Name: strings.TrimSuffix(trimmed, ":")})
			current = &tree.Groups[len(tree.Groups)-1]
			continue
		}
		if current == nil || !indented {
			continue
		}
		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		current.Entries = append(current.Entries, MetaEntry{Key: key, Value: ParseLeaf(value)})
	}
	return tree
}

// ParseLeaf infers a native value from one metadata string. Unit suffixes
// keep only the numeric part; camera rationals like "1/250" collapse to
// their quotient so shutter speeds sort numerically.
func ParseLeaf(value string) LeafValue {
	v := LeafValue{Raw: value}

	switch {
	case intRe.MatchString(value):
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			v.Kind = LeafInt
			v.Int = n
			return v
		}
	case unitIntRe.MatchString(value):
		m := unitIntRe.FindStringSubmatch(value)
		if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			v.Kind = LeafInt
			v.Int = n
			return v
		}
	case rationalRe.MatchString(value):
		m := rationalRe.FindStringSubmatch(value)
		num, err1 := strconv.ParseFloat(m[1], 64)
		den, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil && den != 0 {
			v.Kind = LeafFloat
			v.Float = num / den
			return v
		}
	case fNumberRe.MatchString(value):
		m := fNumberRe.FindStringSubmatch(value)
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			v.Kind = LeafFloat
			v.Float = f
			return v
		}
	case floatRe.MatchString(value):
		m := floatRe.FindStringSubmatch(value)
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			v.Kind = LeafFloat
			v.Float = f
			return v
		}
	case strings.EqualFold(value, "true"), strings.EqualFold(value, "false"):
		v.Kind = LeafBool
		v.Bool = strings.EqualFold(value, "true")
		return v
	}

	v.Kind = LeafString
	v.Str = value
	return v
}

// Native returns the Go value carried by the leaf.
func (v LeafValue) Native() any {
	switch v.Kind {
	case LeafInt:
		return v.Int
	case LeafFloat:
		return v.Float
	case LeafBool:
		return v.Bool
	default:
		return v.Str
	}
}

func (v LeafValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

// MarshalJSON renders the tree as nested objects keyed by group then tag.
func (t MetaTree) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]any, len(t.Groups))
	for _, g := range t.Groups {
		m, ok := out[g.Name]
		if !ok {
			m = make(map[string]any, len(g.Entries))
			out[g.Name] = m
		}
		for _, e := range g.Entries {
			m[e.Key] = e.Value.Native()
		}
	}
	return json.Marshal(out)
}

// Lookup returns the leaf for group/key, if present.
func (t MetaTree) Lookup(group, key string) (LeafValue, bool) {
	for _, g := range t.Groups {
		if g.Name != group {
			continue
		}
		for _, e := range g.Entries {
			if e.Key == key {
				return e.Value, true
			}
		}
	}
	return LeafValue{}, false
}

// Render writes the tree back in the same two-level text layout the parser
// accepts. ParseMetaTree(tree.Render()) reproduces the tree.
func (t MetaTree) Render() string {
	var b strings.Builder
	for _, g := range t.Groups {
		b.WriteString(g.Name)
		b.WriteString(":\n")
		for _, e := range g.Entries {
			b.WriteString("  ")
			b.WriteString(e.Key)
			b.WriteString(": ")
			b.WriteString(e.Value.Raw)
			b.WriteString("\n")
		}
	}
	return b.String()
}
