// pitch_mapping.go - Pitch range to key name mapping table

package pitchinput

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when a mapping's lower bound is not below its upper bound.
	ErrInvalidRange = errors.New("pitchinput: minVal must be less than maxVal")
	// ErrEmptyKey is returned when a mapping has no key name.
	ErrEmptyKey = errors.New("pitchinput: key name is empty")
)

// PitchMapping binds the half-open pitch interval (MinVal, MaxVal] to a key name.
//
// ConditionMet carries across cycles. KeyDown and KeyUp are edge flags that
// only describe the most recent cycle.
type PitchMapping struct {
	MinVal int
	MaxVal int
	Key    string

	ConditionMet bool
	KeyDown      bool
	KeyUp        bool
}

// Matches reports whether pitch lies in (MinVal, MaxVal].
func (m PitchMapping) Matches(pitch int) bool {
	return pitch > m.MinVal && pitch <= m.MaxVal
}

// Held reports a condition that was already true before the current cycle.
func (m PitchMapping) Held() bool {
	return m.ConditionMet && !m.KeyDown && !m.KeyUp
}

func (m PitchMapping) same(minVal, maxVal int, key string) bool {
	return m.MinVal == minVal && m.MaxVal == maxVal && m.Key == key
}

func (m PitchMapping) String() string {
	return fmt.Sprintf("(%d, %d] -> %q", m.MinVal, m.MaxVal, m.Key)
}

// advance applies one cycle of the Idle/Active state machine.
func (m *PitchMapping) advance(conditionMet bool) {
	m.KeyDown = conditionMet && !m.ConditionMet
	m.KeyUp = !conditionMet && m.ConditionMet
	m.ConditionMet = conditionMet
}

func validateMapping(minVal, maxVal int, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if minVal >= maxVal {
		return fmt.Errorf("%w: (%d, %d] for %q", ErrInvalidRange, minVal, maxVal, key)
	}
	return nil
}

// MappingTable is an insertion-ordered set of pitch mappings.
// It is not safe for concurrent use.
type MappingTable struct {
	mappings []PitchMapping
	keyCount map[string]int
}

func NewMappingTable() *MappingTable {
	return &MappingTable{keyCount: make(map[string]int)}
}

// MapPitch appends a new mapping with all flags cleared. Duplicate triples
// are accepted; callers that care must avoid adding them.
func (t *MappingTable) MapPitch(minVal, maxVal int, key string) error {
	if err := validateMapping(minVal, maxVal, key); err != nil {
		return err
	}
	if t.keyCount == nil {
		t.keyCount = make(map[string]int)
	}
	t.mappings = append(t.mappings, PitchMapping{MinVal: minVal, MaxVal: maxVal, Key: key})
	t.keyCount[key]++
	return nil
}

// RemoveMapping deletes the first mapping matching all three fields.
// A missing mapping is not an error.
func (t *MappingTable) RemoveMapping(minVal, maxVal int, key string) error {
	if err := validateMapping(minVal, maxVal, key); err != nil {
		return err
	}
	for i := range t.mappings {
		if !t.mappings[i].same(minVal, maxVal, key) {
			continue
		}
		t.mappings = append(t.mappings[:i], t.mappings[i+1:]...)
		if t.keyCount[key]--; t.keyCount[key] <= 0 {
			delete(t.keyCount, key)
		}
		return nil
	}
	return nil
}

func (t *MappingTable) MapsKey(name string) bool {
	return t.keyCount[name] > 0
}

// GetMappings returns copies of every mapping for name in insertion order.
func (t *MappingTable) GetMappings(name string) []PitchMapping {
	n := t.keyCount[name]
	if n == 0 {
		return nil
	}
	out := make([]PitchMapping, 0, n)
	for _, m := range t.mappings {
		if m.Key == name {
			out = append(out, m)
		}
	}
	return out
}

// Mappings returns copies of all mappings in insertion order.
func (t *MappingTable) Mappings() []PitchMapping {
	out := make([]PitchMapping, len(t.mappings))
	copy(out, t.mappings)
	return out
}

// Keys returns the distinct key names in first-seen order.
func (t *MappingTable) Keys() []string {
	seen := make(map[string]bool, len(t.keyCount))
	keys := make([]string, 0, len(t.keyCount))
	for _, m := range t.mappings {
		if !seen[m.Key] {
			seen[m.Key] = true
			keys = append(keys, m.Key)
		}
	}
	return keys
}

func (t *MappingTable) Len() int {
	return len(t.mappings)
}

func (t *MappingTable) Clear() {
	t.mappings = t.mappings[:0]
	clear(t.keyCount)
}

// anyMapping reports whether pred holds for any mapping of name.
func (t *MappingTable) anyMapping(name string, pred func(*PitchMapping) bool) bool {
	if t.keyCount[name] == 0 {
		return false
	}
	for i := range t.mappings {
		if t.mappings[i].Key == name && pred(&t.mappings[i]) {
			return true
		}
	}
	return false
}
