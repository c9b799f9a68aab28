package flow

import (
	"encoding/json"
	"fmt"
	"sort"

	apperrors "github.com/crediflow/los-backend/internal/pkg/errors"
)

// EndSentinel is the authored marker for "this transition ends the flow".
const EndSentinel = "__FLOW_END__"

// Definition is a parsed flow definition document. The shape is authored
// JSON and deliberately loose; accessors below tolerate the formats that
// exist in production data.
type Definition map[string]any

// Parse decodes a raw flow definition body.
func Parse(raw []byte) (Definition, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty flow definition: %w", apperrors.ErrMalformedFlow)
	}
	var d Definition
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode flow definition: %v: %w", err, apperrors.ErrMalformedFlow)
	}
	return d, nil
}

// StartScreen returns the entry screen id of the flow.
func (d Definition) StartScreen() (string, error) {
	id, _ := d["startScreen"].(string)
	if id == "" {
		return "", fmt.Errorf("flow definition has no startScreen: %w", apperrors.ErrMalformedFlow)
	}
	return id, nil
}

// Screen is one normalized screen entry. Raw is nil for the bare-string
// list format, which carries no transition data.
type Screen struct {
	ID  string
	Raw map[string]any
}

// Screens normalizes the "screens" element into an ordered list. Three
// authored formats are accepted:
//
//	{"s1": {...}, "s2": {...}}                      object keyed by id
//	[{"id": "s1", ...}, {"screenId": "s2", ...}]    list of objects
//	["s1", "s2"]                                    list of ids
//
// Object-keyed entries are ordered by key so the result is deterministic.
// Entries with no recognizable id are dropped.
func (d Definition) Screens() []Screen {
	switch screens := d["screens"].(type) {
	case map[string]any:
		ids := make([]string, 0, len(screens))
		for id := range screens {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out := make([]Screen, 0, len(ids))
		for _, id := range ids {
			raw, _ := screens[id].(map[string]any)
			out = append(out, Screen{ID: id, Raw: raw})
		}
		return out
	case []any:
		out := make([]Screen, 0, len(screens))
		for _, entry := range screens {
			switch v := entry.(type) {
			case map[string]any:
				id, _ := v["id"].(string)
				if id == "" {
					id, _ = v["screenId"].(string)
				}
				if id != "" {
					out = append(out, Screen{ID: id, Raw: v})
				}
			case string:
				if v != "" {
					out = append(out, Screen{ID: v})
				}
			}
		}
		return out
	}
	return nil
}

// ScreenIDs returns every screen id referenced by the flow, in the same
// order as Screens.
func (d Definition) ScreenIDs() []string {
	screens := d.Screens()
	ids := make([]string, 0, len(screens))
	for _, s := range screens {
		ids = append(ids, s.ID)
	}
	return ids
}

// FindScreen looks up one screen by id.
func (d Definition) FindScreen(id string) (Screen, bool) {
	for _, s := range d.Screens() {
		if s.ID == id {
			return s, true
		}
	}
	return Screen{}, false
}
