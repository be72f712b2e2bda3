package incremental

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	gyaml "github.com/goccy/go-yaml"
)

// JSON Patch (RFC-6902) bridge
// --------------------------------------------------------------------------------------

type patchOp struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
	From  string          `json:"from,omitempty"`
}

func decodePatchOps(b []byte) ([]patchOp, error) {
	var ops []patchOp
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ops); err != nil {
		return nil, fmt.Errorf("incremental: invalid JSON Patch: %w", err)
	}
	if len(ops) == 0 {
		return nil, errors.New("incremental: empty JSON Patch")
	}
	return ops, nil
}

// parseJSONPointer turns a pointer into plain key tokens. A trailing "-"
// (end of array) is reported separately and not included in the path.
func parseJSONPointer(p string) (Path, bool, error) {
	if p == "" {
		return Path{}, false, nil
	}
	if !strings.HasPrefix(p, "/") {
		return nil, false, fmt.Errorf("incremental: JSON Pointer must start with '/': %q", p)
	}
	parts := strings.Split(p, "/")[1:]
	toks := make(Path, 0, len(parts))
	endOfArray := false
	for i, s := range parts {
		seg := strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
		if seg == "-" && i == len(parts)-1 {
			endOfArray = true
			continue
		}
		toks = append(toks, KeyToken(seg))
	}
	return toks, endOfArray, nil
}

func decodePatchValue(raw json.RawMessage) (interface{}, error) {
	if raw == nil {
		return nil, errors.New("incremental: missing 'value' for operation")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("incremental: invalid JSON value: %w", err)
	}
	return jsonValueToOrdered(v), nil
}

// QueueJSONPatch queues the operations of an RFC-6902 patch as actions:
// add becomes add (append for a trailing "-"), replace becomes replace and
// remove becomes delete. The actions keep this package's semantics, e.g.
// removing a missing key is a no-op. Either every operation is queued or
// none is.
func (l *Log) QueueJSONPatch(patchJSON []byte) error {
	ops, err := decodePatchOps(patchJSON)
	if err != nil {
		return err
	}
	pending := make([]Action, 0, len(ops))
	for i, op := range ops {
		path, endOfArray, err := parseJSONPointer(op.Path)
		if err != nil {
			return fmt.Errorf("incremental: op[%d]: %w", i, err)
		}
		if len(path) == 0 {
			return fmt.Errorf("incremental: op[%d]: root pointer not supported", i)
		}
		a := Action{Path: path}
		switch strings.ToLower(op.Op) {
		case "add":
			a.Kind = KindAdd
			if endOfArray {
				a.Kind = KindAppend
			}
		case "replace":
			a.Kind = KindReplace
		case "remove":
			a.Kind = KindDelete
		default:
			return fmt.Errorf("incremental: op[%d]: %w: %q", i, ErrUnsupportedKind, op.Op)
		}
		if endOfArray && a.Kind != KindAppend {
			return fmt.Errorf("incremental: op[%d]: '-' not allowed for %s", i, op.Op)
		}
		if a.Kind != KindDelete {
			if a.Value, err = decodePatchValue(op.Value); err != nil {
				return fmt.Errorf("incremental: op[%d]: %w", i, err)
			}
		}
		pending = append(pending, a)
	}
	for _, a := range pending {
		if err := l.QueuePath(a.Kind, a.Path, a.Value); err != nil {
			return err
		}
	}
	return nil
}

// PatchJSON replays the log and renders every effective edit as an RFC-6902
// operation with concrete pointers. Applying the result to Initial() yields
// Current(). Deletes that removed nothing are left out.
func (l *Log) PatchJSON() ([]byte, error) {
	_, effects, err := l.replay(true)
	if err != nil {
		return nil, err
	}
	ops := make([]interface{}, 0, len(effects))
	for _, eff := range effects {
		op := gyaml.MapSlice{
			{Key: "op", Value: eff.op},
			{Key: "path", Value: effectPointer(eff)},
		}
		if eff.op != "remove" {
			op = append(op, gyaml.MapItem{Key: "value", Value: eff.value})
		}
		ops = append(ops, op)
	}
	return MarshalJSON(ops)
}

// Patch is PatchJSON decoded into a github.com/evanphx/json-patch/v5 Patch.
func (l *Log) Patch() (jsonpatch.Patch, error) {
	b, err := l.PatchJSON()
	if err != nil {
		return nil, err
	}
	patch, err := jsonpatch.DecodePatch(b)
	if err != nil {
		return nil, fmt.Errorf("incremental: cannot decode rendered patch: %w", err)
	}
	return patch, nil
}

func effectPointer(eff *effect) string {
	var b strings.Builder
	for _, st := range eff.steps {
		b.WriteByte('/')
		if st.isIndex {
			b.WriteString(strconv.Itoa(st.index))
			continue
		}
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(st.key, "~", "~0"), "/", "~1"))
	}
	if eff.appendTo {
		b.WriteString("/-")
	}
	return b.String()
}
