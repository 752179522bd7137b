// Package legacy reads the flat key-value blobs of the previous versions of
// the application. Nothing read here is trusted: every key is decoded on its
// own and malformed fields fall back to defaults.
package legacy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Keys of the legacy store, one per feature area.
const (
	KeyAccounts     = "accounts"
	KeyTransactions = "transactions"
	KeyPortfolios   = "portfolios"
	KeyHoldings     = "holdings"
	KeyGoals        = "goals"
	KeyAchievements = "achievements"
	KeyProgress     = "progress"
	KeyGroups       = "groups"
	KeyDebts        = "debts"
	KeyBudget       = "budget"
	KeySettings     = "settings"
)

// ErrNoData is returned by a Source for a key that was never written.
var ErrNoData = errors.New("no legacy data")

// Source gives access to the raw blobs.
type Source interface {
	Get(key string) ([]byte, error)
}

// Dir is a directory holding one <key>.json file per key.
type Dir string

func (d Dir) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(string(d), key+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("read legacy key %q: %w", key, err)
	}
	return data, nil
}

// Map is an in-memory Source.
type Map map[string][]byte

func (m Map) Get(key string) ([]byte, error) {
	data, ok := m[key]
	if !ok {
		return nil, ErrNoData
	}
	return data, nil
}

// Keys returns the keys of m, sorted.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadDump reads a key-value dump: a JSON object whose values are either the
// blobs themselves or strings holding them, as the old storage wrote them.
func LoadDump(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read legacy dump: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode legacy dump %s: %w", path, err)
	}
	m := make(Map, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			m[k] = []byte(s)
			continue
		}
		m[k] = v
	}
	return m, nil
}

// Open returns the Source at path: a dump file or a directory of blobs.
func Open(path string) (Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open legacy data: %w", err)
	}
	if fi.IsDir() {
		return Dir(path), nil
	}
	return LoadDump(path)
}
