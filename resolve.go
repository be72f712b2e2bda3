package incremental

// pathStep is one concrete step taken during a walk: a map key or a
// sequence index, after token coercion.
type pathStep struct {
	key     string
	index   int
	isIndex bool
}

// Resolve walks root along path and returns the node found there. An empty
// path returns root.
//
// A missing key or an index outside [0, len) yields (nil, nil) when
// failOnMissing is false, and a *KeyError or *IndexError otherwise. Shape
// mismatches (*TypeError) and bad tokens (*TokenError) always fail.
func Resolve(root interface{}, path Path, failOnMissing bool) (interface{}, error) {
	node, _, _, err := walk(root, path, failOnMissing)
	return node, err
}

// Lookup is like Resolve with failOnMissing=false but tells a missing
// location apart from a present null value.
func Lookup(root interface{}, path Path) (interface{}, bool, error) {
	node, _, found, err := walk(root, path, false)
	return node, found, err
}

// walk follows path from root and returns the node, the concrete steps that
// lead to it, and whether it exists.
func walk(root interface{}, path Path, failOnMissing bool) (interface{}, []pathStep, bool, error) {
	node := root
	steps := make([]pathStep, 0, len(path)+1)
	for i, tok := range path {
		if !tok.keyed() {
			child, st, found, err := stepInto(node, tok, path, i, failOnMissing)
			if err != nil || !found {
				return nil, nil, false, err
			}
			node = child
			steps = append(steps, st)
			continue
		}

		// name[index]: map entry first, then the sequence element.
		child, st, found, err := stepInto(node, KeyToken(tok.Key), path, i, failOnMissing)
		if err != nil || !found {
			return nil, nil, false, err
		}
		steps = append(steps, st)
		if s := ShapeOf(child); s != SequenceShape {
			return nil, nil, false, &TypeError{Path: path.partial(i), Want: SequenceShape, Got: s}
		}
		child, st, found, err = stepInto(child, IndexToken(tok.Index), path, i, failOnMissing)
		if err != nil || !found {
			return nil, nil, false, err
		}
		node = child
		steps = append(steps, st)
	}
	return node, steps, true, nil
}

// stepInto takes one plain step from node. The returned found is false only
// when the location is missing and failOnMissing is false.
func stepInto(node interface{}, tok Token, path Path, i int, failOnMissing bool) (interface{}, pathStep, bool, error) {
	switch ShapeOf(node) {
	case SequenceShape:
		idx, err := tok.seqIndex()
		if err != nil {
			return nil, pathStep{}, false, err
		}
		s := node.([]interface{})
		if idx < 0 || idx >= len(s) {
			if failOnMissing {
				return nil, pathStep{}, false, &IndexError{Path: path.partial(i), Index: idx, Len: len(s)}
			}
			return nil, pathStep{}, false, nil
		}
		return s[idx], pathStep{index: idx, isIndex: true}, true, nil
	case MapShape:
		key := tok.mapKey()
		v, ok := mapGet(node, key)
		if !ok {
			if failOnMissing {
				return nil, pathStep{}, false, &KeyError{Path: path.partial(i)}
			}
			return nil, pathStep{}, false, nil
		}
		return v, pathStep{key: key}, true, nil
	default:
		want := MapShape
		if tok.HasIndex && !tok.HasKey {
			want = SequenceShape
		}
		return nil, pathStep{}, false, &TypeError{Path: path.partial(i), Want: want, Got: ScalarShape}
	}
}
