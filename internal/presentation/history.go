package presentation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

// FieldChange is one attribute that differs between two snapshots.
type FieldChange struct {
	Field  string
	Before string
	After  string
}

// Changes compares two JSON object snapshots field by field. Missing or
// null snapshots compare as empty objects.
func Changes(before, after json.RawMessage) ([]FieldChange, error) {
	b, err := decodeObject(before)
	if err != nil {
		return nil, err
	}
	a, err := decodeObject(after)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(a)+len(b))
	for k := range b {
		keys = append(keys, k)
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var out []FieldChange
	for _, k := range keys {
		bv, av := scalarText(b[k]), scalarText(a[k])
		if bv != av {
			out = append(out, FieldChange{Field: k, Before: bv, After: av})
		}
	}
	return out, nil
}

func decodeObject(doc json.RawMessage) (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	if len(doc) == 0 || bytes.Equal(doc, []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return out, nil
}

func scalarText(v json.RawMessage) string {
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}

// InlineDiff marks the edit from before to after: deletions struck through,
// insertions highlighted.
func InlineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			b.WriteString(deleteStyle.Render("[-" + d.Text + "-]"))
		case diffmatchpatch.DiffInsert:
			b.WriteString(insertStyle.Render("{+" + d.Text + "+}"))
		}
	}
	return b.String()
}

// History renders operation log entries oldest first. Entries with
// snapshots show a per-field diff; the others show their patch.
func (f *Formatter) History(logs []*domain.OperationLog) error {
	if f.json {
		if logs == nil {
			logs = []*domain.OperationLog{}
		}
		return f.Value(logs)
	}
	if len(logs) == 0 {
		return f.println(mutedStyle.Render("(no history)"))
	}
	for _, entry := range logs {
		head := fmt.Sprintf("#%d %s %s by %s", entry.ID, stamp(entry.CreatedAt), entry.Action, entry.Actor)
		if entry.Reason != nil {
			head += " (" + *entry.Reason + ")"
		}
		if err := f.println(labelStyle.Render(head)); err != nil {
			return err
		}

		if len(entry.Before) == 0 && len(entry.After) == 0 {
			if len(entry.Patch) > 0 {
				if err := f.println("  " + mutedStyle.Render(string(entry.Patch))); err != nil {
					return err
				}
			}
			continue
		}

		changes, err := Changes(entry.Before, entry.After)
		if err != nil {
			return err
		}
		for _, c := range changes {
			line := fmt.Sprintf("  %s: %s", c.Field, InlineDiff(c.Before, c.After))
			if err := f.println(line); err != nil {
				return err
			}
		}
	}
	return nil
}
