package incremental

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Token is one path component: a plain key, a plain index, or a keyed index
// ("name[3]") that first selects a map entry and then an element of the
// sequence stored there.
type Token struct {
	Key      string
	Index    int
	HasKey   bool
	HasIndex bool
}

// KeyToken returns a plain key token.
func KeyToken(key string) Token { return Token{Key: key, HasKey: true} }

// IndexToken returns a plain index token.
func IndexToken(i int) Token { return Token{Index: i, HasIndex: true} }

// KeyedToken returns a token selecting element i of the sequence under key.
func KeyedToken(key string, i int) Token {
	return Token{Key: key, Index: i, HasKey: true, HasIndex: true}
}

// keyed reports whether t is a combined key+index token.
func (t Token) keyed() bool { return t.HasKey && t.HasIndex }

func (t Token) String() string {
	switch {
	case t.keyed():
		return t.Key + "[" + strconv.Itoa(t.Index) + "]"
	case t.HasIndex:
		return strconv.Itoa(t.Index)
	default:
		return t.Key
	}
}

// mapKey is the string used when t addresses a map entry.
func (t Token) mapKey() string {
	if t.HasKey {
		return t.Key
	}
	return strconv.Itoa(t.Index)
}

// seqIndex is the index used when a plain t addresses a sequence element.
func (t Token) seqIndex() (int, error) {
	if t.HasIndex {
		return t.Index, nil
	}
	i, err := strconv.Atoi(t.Key)
	if err != nil {
		return 0, &TokenError{Segment: t.Key, Reason: "sequence node but token is not a valid index"}
	}
	return i, nil
}

// Path is an ordered list of tokens. The last token of an edit path is the
// terminal; the rest is the parent path.
type Path []Token

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, t := range p {
		parts[i] = t.String()
	}
	return strings.Join(parts, ".")
}

// Equal reports whether p and o hold the same tokens.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// partial renders the prefix of p up to and including token i.
func (p Path) partial(i int) string {
	return p[:i+1].String()
}

// Grammar turns a path expression into tokens.
type Grammar interface {
	Parse(expr string) (Path, error)
}

// KeyedGrammar parses dot-separated "name" or "name[index]" segments, e.g.
// "first[0].second". Names are alphabetic; empty brackets mean no index.
type KeyedGrammar struct{}

var keyedSegmentRE = regexp.MustCompile(`^([A-Za-z]+)(?:\[([0-9]*)\])?$`)

// Parse implements Grammar.
func (KeyedGrammar) Parse(expr string) (Path, error) {
	segs := strings.Split(expr, ".")
	out := make(Path, 0, len(segs))
	for _, seg := range segs {
		tok, err := parseKeyedSegment(seg)
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	return out, nil
}

func parseKeyedSegment(seg string) (Token, error) {
	m := keyedSegmentRE.FindStringSubmatch(seg)
	if m == nil {
		return Token{}, &TokenError{Segment: seg, Reason: "segment does not match name[index]"}
	}
	if m[2] == "" {
		return KeyToken(m[1]), nil
	}
	i, err := strconv.Atoi(m[2])
	if err != nil {
		return Token{}, &TokenError{Segment: seg, Reason: fmt.Sprintf("invalid index: %v", err)}
	}
	return KeyedToken(m[1], i), nil
}

// SegmentGrammar parses dot-separated plain segments, e.g. "first.0.second".
// Each segment is a key; it is read as an index when it meets a sequence.
type SegmentGrammar struct{}

// Parse implements Grammar.
func (SegmentGrammar) Parse(expr string) (Path, error) {
	segs := strings.Split(expr, ".")
	out := make(Path, 0, len(segs))
	for _, seg := range segs {
		if seg == "" {
			return nil, &TokenError{Segment: expr, Reason: "empty segment"}
		}
		out = append(out, KeyToken(seg))
	}
	return out, nil
}

// Segments builds a plain path from explicit atoms. Strings become key
// tokens and integers become index tokens.
func Segments(atoms ...interface{}) (Path, error) {
	out := make(Path, 0, len(atoms))
	for _, a := range atoms {
		switch v := a.(type) {
		case string:
			out = append(out, KeyToken(v))
		case int:
			out = append(out, IndexToken(v))
		case int64:
			out = append(out, IndexToken(int(v)))
		case int32:
			out = append(out, IndexToken(int(v)))
		case Token:
			out = append(out, v)
		default:
			return nil, &TokenError{Segment: fmt.Sprint(a), Reason: fmt.Sprintf("unsupported atom type %T", a)}
		}
	}
	return out, nil
}

// MustSegments is like Segments but panics on error.
func MustSegments(atoms ...interface{}) Path {
	p, err := Segments(atoms...)
	if err != nil {
		panic(err)
	}
	return p
}
