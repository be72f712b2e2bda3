package incremental

import (
	"fmt"
)

// Log accumulates pending actions against an initial snapshot. The current
// tree is computed on demand by replaying every action, in order, over a
// fresh copy of the snapshot.
//
// A Log is not safe for concurrent use; callers sharing one must serialize
// access themselves. Trees handed in or out are always copied, so callers
// never hold an alias into the log's state.
type Log struct {
	initial interface{}
	actions []Action

	grammar Grammar
	logger  Logger
}

// New creates a Log seeded with initial. A nil initial is an empty map.
func New(initial interface{}, opts ...Option) (*Log, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	l := &Log{grammar: cfg.grammar, logger: cfg.logger}
	l.Set(initial)
	return l, nil
}

// Set replaces the snapshot. Queued actions are kept and will replay over
// the new snapshot.
func (l *Log) Set(initial interface{}) {
	if initial == nil {
		initial = map[string]interface{}{}
	}
	l.initial = Clone(initial)
}

// Queue parses expr with the log's grammar and queues an action. Only a
// malformed path or an unknown kind fails; preconditions are checked when
// the log is replayed.
func (l *Log) Queue(kind Kind, expr string, value interface{}) error {
	path, err := l.grammar.Parse(expr)
	if err != nil {
		return err
	}
	return l.QueuePath(kind, path, value)
}

// QueuePath queues an action with an already-built path.
func (l *Log) QueuePath(kind Kind, path Path, value interface{}) error {
	switch kind {
	case KindAdd, KindAppend, KindAddOrReplace, KindReplace, KindDelete:
	default:
		return fmt.Errorf("incremental: %w: %q", ErrUnsupportedKind, kind)
	}
	if len(path) == 0 {
		return &TokenError{Segment: "", Reason: "empty path"}
	}
	if kind == KindDelete {
		value = nil
	}
	a := Action{Kind: kind, Path: append(Path(nil), path...), Value: Clone(value)}
	l.actions = append(l.actions, a)
	l.logger.Debug("queued action", "index", len(l.actions)-1, "kind", string(kind), "path", a.Path.String())
	return nil
}

// Add queues an add of value at expr.
func (l *Log) Add(expr string, value interface{}) error { return l.Queue(KindAdd, expr, value) }

// Append queues an append of value to the sequence at expr.
func (l *Log) Append(expr string, value interface{}) error { return l.Queue(KindAppend, expr, value) }

// Replace queues a replace of the value at expr.
func (l *Log) Replace(expr string, value interface{}) error { return l.Queue(KindReplace, expr, value) }

// AddOrReplace queues an add_or_replace of value at expr.
func (l *Log) AddOrReplace(expr string, value interface{}) error {
	return l.Queue(KindAddOrReplace, expr, value)
}

// Delete queues a delete of expr.
func (l *Log) Delete(expr string) error { return l.Queue(KindDelete, expr, nil) }

// Len returns the number of queued actions.
func (l *Log) Len() int { return len(l.actions) }

// Actions returns a copy of the queued actions.
func (l *Log) Actions() []Action {
	out := make([]Action, len(l.actions))
	for i, a := range l.actions {
		out[i] = Action{Kind: a.Kind, Path: append(Path(nil), a.Path...), Value: Clone(a.Value)}
	}
	return out
}

// Initial returns a copy of the snapshot.
func (l *Log) Initial() interface{} { return Clone(l.initial) }

// Current replays the queue over a copy of the snapshot and returns the
// result. Nothing is cached; each call returns a new tree. A failing action
// is reported as a *ReplayError.
func (l *Log) Current() (interface{}, error) {
	out, _, err := l.replay(false)
	return out, err
}

// Squash makes the current tree the new snapshot and empties the queue. If
// the replay fails the log is left unchanged.
func (l *Log) Squash() error {
	cur, err := l.Current()
	if err != nil {
		return err
	}
	l.logger.Debug("squashed log", "actions", len(l.actions))
	l.initial = cur
	l.actions = nil
	return nil
}

func (l *Log) replay(record bool) (interface{}, []*effect, error) {
	obj := Clone(l.initial)
	var effects []*effect
	for i, a := range l.actions {
		next, eff, err := applyAction(obj, a)
		if err != nil {
			l.logger.Warn("action failed", "index", i, "kind", string(a.Kind), "path", a.Path.String(), "error", err)
			return nil, nil, &ReplayError{ActionIndex: i, Action: a, Cause: err}
		}
		obj = next
		if record && eff != nil {
			effects = append(effects, eff)
		}
	}
	l.logger.Debug("replayed log", "actions", len(l.actions))
	return obj, effects, nil
}
