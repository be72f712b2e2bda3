package incremental

import (
	"fmt"
)

// Kind names one of the structural edits.
type Kind string

const (
	// KindAdd sets an absent location, or appends when the location holds a sequence.
	KindAdd Kind = "add"
	// KindAppend appends to the sequence at the location.
	KindAppend Kind = "append"
	// KindAddOrReplace sets the location whether or not it exists.
	KindAddOrReplace Kind = "add_or_replace"
	// KindReplace overwrites an existing location.
	KindReplace Kind = "replace"
	// KindDelete removes the location if it exists.
	KindDelete Kind = "delete"
)

func (k Kind) String() string { return string(k) }

// Action is one structural edit. Value is unused for KindDelete.
type Action struct {
	Kind  Kind
	Path  Path
	Value interface{}
}

// Equal reports whether a and o have the same kind, path and value.
func (a Action) Equal(o Action) bool {
	return a.Kind == o.Kind && a.Path.Equal(o.Path) && Equal(a.Value, o.Value)
}

// Apply applies one edit to a copy of tree and returns the copy. tree itself
// is never modified. Append is only available through a Log.
func Apply(tree interface{}, kind Kind, path Path, value interface{}) (interface{}, error) {
	switch kind {
	case KindAdd, KindReplace, KindDelete, KindAddOrReplace:
	default:
		return nil, fmt.Errorf("incremental: %w: %q", ErrUnsupportedKind, kind)
	}
	out, _, err := applyAction(Clone(tree), Action{Kind: kind, Path: path, Value: value})
	return out, err
}

// effect records what an applied action actually did, in terms of concrete
// steps from the root. A nil effect means the action was a no-op.
type effect struct {
	op       string // "add", "replace" or "remove"
	steps    []pathStep
	appendTo bool // the target is the end of the sequence at steps
	value    interface{}
}

// splitTerminal separates the parent path from the terminal token. A keyed
// terminal "name[i]" contributes "name" to the parent and leaves i.
func splitTerminal(p Path) (Path, Token) {
	last := p[len(p)-1]
	parent := append(Path(nil), p[:len(p)-1]...)
	if last.keyed() {
		return append(parent, KeyToken(last.Key)), IndexToken(last.Index)
	}
	return parent, last
}

// applyAction edits root in place and returns the new root. root must be
// owned by the caller (a clone).
func applyAction(root interface{}, a Action) (interface{}, *effect, error) {
	if len(a.Path) == 0 {
		return nil, nil, &ActionError{Kind: a.Kind, Path: "", Reason: "empty path"}
	}
	parentPath, term := splitTerminal(a.Path)
	parent, steps, _, err := walk(root, parentPath, true)
	if err != nil {
		return nil, nil, err
	}
	if a.Path[len(a.Path)-1].keyed() {
		if s := ShapeOf(parent); s != SequenceShape {
			return nil, nil, &TypeError{Path: a.Path.String(), Want: SequenceShape, Got: s}
		}
	}

	var (
		updated interface{}
		eff     *effect
	)
	switch a.Kind {
	case KindAdd:
		updated, eff, err = applyAdd(parent, term, a)
	case KindAppend:
		updated, eff, err = applyAppend(parent, term, a)
	case KindReplace:
		updated, eff, err = applyReplace(parent, term, a)
	case KindAddOrReplace:
		updated, eff, err = applyAddOrReplace(parent, term, a)
	case KindDelete:
		updated, eff, err = applyDelete(parent, term, a)
	default:
		err = fmt.Errorf("incremental: %w: %q", ErrUnsupportedKind, a.Kind)
	}
	if err != nil {
		return nil, nil, err
	}
	if eff != nil {
		eff.steps = append(append([]pathStep(nil), steps...), eff.steps...)
	}
	return setAt(root, steps, updated), eff, nil
}

// scalarParent reports the scalar node the edit tried to step into.
func scalarParent(a Action, want Shape) error {
	parentPath, _ := splitTerminal(a.Path)
	return &TypeError{Path: parentPath.String(), Want: want, Got: ScalarShape}
}

func applyAdd(parent interface{}, term Token, a Action) (interface{}, *effect, error) {
	switch ShapeOf(parent) {
	case MapShape:
		key := term.mapKey()
		cur, ok := mapGet(parent, key)
		if !ok {
			return mapSet(parent, key, Clone(a.Value)), &effect{op: "add", steps: []pathStep{{key: key}}, value: a.Value}, nil
		}
		if s, isSeq := cur.([]interface{}); isSeq {
			return mapSet(parent, key, append(s, Clone(a.Value))),
				&effect{op: "add", steps: []pathStep{{key: key}}, appendTo: true, value: a.Value}, nil
		}
		return nil, nil, &ActionError{Kind: a.Kind, Path: a.Path.String(), Reason: "already present"}
	case SequenceShape:
		idx, err := term.seqIndex()
		if err != nil {
			return nil, nil, err
		}
		s := parent.([]interface{})
		switch {
		case idx == len(s):
			return append(s, Clone(a.Value)), &effect{op: "add", appendTo: true, value: a.Value}, nil
		case idx < 0 || idx > len(s):
			return nil, nil, &ActionError{Kind: a.Kind, Path: a.Path.String(), Reason: fmt.Sprintf("index %d out of index", idx)}
		}
		inner, isSeq := s[idx].([]interface{})
		if !isSeq {
			return nil, nil, &ActionError{Kind: a.Kind, Path: a.Path.String(), Reason: "already present"}
		}
		s[idx] = append(inner, Clone(a.Value))
		return s, &effect{op: "add", steps: []pathStep{{index: idx, isIndex: true}}, appendTo: true, value: a.Value}, nil
	default:
		return nil, nil, scalarParent(a, MapShape)
	}
}

func applyAppend(parent interface{}, term Token, a Action) (interface{}, *effect, error) {
	child, st, _, err := stepInto(parent, term, a.Path, len(a.Path)-1, true)
	if err != nil {
		return nil, nil, err
	}
	s, ok := child.([]interface{})
	if !ok {
		return nil, nil, &TypeError{Path: a.Path.String(), Want: SequenceShape, Got: ShapeOf(child)}
	}
	return childSet(parent, st, append(s, Clone(a.Value))),
		&effect{op: "add", steps: []pathStep{st}, appendTo: true, value: a.Value}, nil
}

func applyReplace(parent interface{}, term Token, a Action) (interface{}, *effect, error) {
	switch ShapeOf(parent) {
	case MapShape:
		key := term.mapKey()
		if _, ok := mapGet(parent, key); !ok {
			return nil, nil, &ActionError{Kind: a.Kind, Path: a.Path.String(), Reason: "doesn't exist"}
		}
		return mapSet(parent, key, Clone(a.Value)), &effect{op: "replace", steps: []pathStep{{key: key}}, value: a.Value}, nil
	case SequenceShape:
		t, err := term.seqIndex()
		if err != nil {
			return nil, nil, err
		}
		s := parent.([]interface{})
		n := len(s)
		// Negative indices are subtracted from the length, so they always
		// land past the end.
		idx := t
		if t < 0 {
			idx = n - t
		}
		if idx < 0 || idx >= n {
			return nil, nil, &ActionError{Kind: a.Kind, Path: a.Path.String(), Reason: fmt.Sprintf("item %d out of index", idx)}
		}
		s[idx] = Clone(a.Value)
		return s, &effect{op: "replace", steps: []pathStep{{index: idx, isIndex: true}}, value: a.Value}, nil
	default:
		return nil, nil, scalarParent(a, MapShape)
	}
}

func applyAddOrReplace(parent interface{}, term Token, a Action) (interface{}, *effect, error) {
	switch ShapeOf(parent) {
	case MapShape:
		key := term.mapKey()
		op := "add"
		if _, ok := mapGet(parent, key); ok {
			op = "replace"
		}
		return mapSet(parent, key, Clone(a.Value)), &effect{op: op, steps: []pathStep{{key: key}}, value: a.Value}, nil
	case SequenceShape:
		t, err := term.seqIndex()
		if err != nil {
			return nil, nil, err
		}
		s := parent.([]interface{})
		if t < 0 {
			return nil, nil, &ActionError{Kind: a.Kind, Path: a.Path.String(), Reason: fmt.Sprintf("item %d out of index", t)}
		}
		if t < len(s) {
			s[t] = Clone(a.Value)
			return s, &effect{op: "replace", steps: []pathStep{{index: t, isIndex: true}}, value: a.Value}, nil
		}
		// At or past the end: append.
		return append(s, Clone(a.Value)), &effect{op: "add", appendTo: true, value: a.Value}, nil
	default:
		return nil, nil, scalarParent(a, MapShape)
	}
}

func applyDelete(parent interface{}, term Token, a Action) (interface{}, *effect, error) {
	switch ShapeOf(parent) {
	case MapShape:
		key := term.mapKey()
		out, removed := mapDelete(parent, key)
		if !removed {
			return out, nil, nil
		}
		return out, &effect{op: "remove", steps: []pathStep{{key: key}}}, nil
	case SequenceShape:
		t, err := term.seqIndex()
		if err != nil {
			return nil, nil, err
		}
		s := parent.([]interface{})
		if t < 0 || t >= len(s) {
			return s, nil, nil
		}
		return append(s[:t:t], s[t+1:]...), &effect{op: "remove", steps: []pathStep{{index: t, isIndex: true}}}, nil
	default:
		return nil, nil, scalarParent(a, MapShape)
	}
}
