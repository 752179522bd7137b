package legacy

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"
)

// CurrentVersion is the latest envelope version written by the old storage.
// Blobs written before envelopes existed count as version 0.
const CurrentVersion = 2

// ParseFailure reports a key whose blob could not be decoded at all.
type ParseFailure struct {
	Key string
	Err error
}

func (e *ParseFailure) Error() string { return fmt.Sprintf("legacy key %q: %v", e.Key, e.Err) }
func (e *ParseFailure) Unwrap() error { return e.Err }

// Reader decodes the blobs of a Source into legacy shapes. Each method
// reads one key: a missing key is empty data, a blob that is not JSON or
// does not have the expected shape is a *ParseFailure. Single records that
// cannot be decoded are skipped and logged, the others are returned.
type Reader struct {
	src Source
	log zerolog.Logger
}

func NewReader(src Source, log zerolog.Logger) *Reader {
	return &Reader{src: src, log: log.With().Str("component", "legacy").Logger()}
}

// payloads lists, in order, where an envelope may hold its data.
var payloads = []string{"$.items", "$.data"}

// unwrap returns the payload of a blob: the blob itself, or the content of
// its versioned envelope.
func unwrap(key string, raw []byte) (any, int, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, 0, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return v, 0, nil
	}
	version := 0
	if x, err := jsonpath.Get("$.version", obj); err == nil {
		if f, ok := x.(float64); ok {
			version = int(f)
		}
	}
	if version > CurrentVersion {
		return nil, version, fmt.Errorf("unsupported envelope version %d", version)
	}
	for _, path := range append(payloads, "$."+key) {
		if x, err := jsonpath.Get(path, obj); err == nil && x != nil {
			return x, version, nil
		}
	}
	return obj, version, nil
}

// read returns the raw payload of key, nil when there is no data.
func (r *Reader) read(key string) (json.RawMessage, error) {
	raw, err := r.src.Get(key)
	if errors.Is(err, ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, &ParseFailure{Key: key, Err: err}
	}
	payload, version, err := unwrap(key, raw)
	if err != nil {
		return nil, &ParseFailure{Key: key, Err: err}
	}
	if payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &ParseFailure{Key: key, Err: err}
	}
	r.log.Debug().Str("key", key).Int("version", version).Int("bytes", len(raw)).Msg("legacy key read")
	return data, nil
}

// readList decodes a list of records. An object keyed by id is accepted
// too, its records are then returned in key order.
func readList[T any](r *Reader, key string) ([]T, error) {
	data, err := r.read(key)
	if err != nil || data == nil {
		return nil, err
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		var byID map[string]json.RawMessage
		if err2 := json.Unmarshal(data, &byID); err2 != nil {
			return nil, &ParseFailure{Key: key, Err: fmt.Errorf("expected a list of records: %w", err)}
		}
		elems = byKey(byID)
	}
	out := make([]T, 0, len(elems))
	for i, e := range elems {
		var v T
		if err := json.Unmarshal(e, &v); err != nil {
			r.log.Warn().Str("key", key).Int("index", i).Err(err).Msg("skipping malformed legacy record")
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// byKey flattens records keyed by id, in key order. A record without an id
// gets its key.
func byKey(m map[string]json.RawMessage) []json.RawMessage {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]json.RawMessage, 0, len(keys))
	for _, k := range keys {
		var obj map[string]any
		if err := json.Unmarshal(m[k], &obj); err == nil && obj != nil {
			if _, ok := obj["id"]; !ok {
				obj["id"] = k
				if patched, err := json.Marshal(obj); err == nil {
					out = append(out, patched)
					continue
				}
			}
		}
		out = append(out, m[k])
	}
	return out
}

// readRecord decodes a single record. ok is false when there is no data.
func readRecord[T any](r *Reader, key string) (v T, ok bool, err error) {
	data, err := r.read(key)
	if err != nil || data == nil {
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, &ParseFailure{Key: key, Err: err}
	}
	return v, true, nil
}

func (r *Reader) Accounts() ([]Account, error)         { return readList[Account](r, KeyAccounts) }
func (r *Reader) Transactions() ([]Transaction, error) { return readList[Transaction](r, KeyTransactions) }
func (r *Reader) Portfolios() ([]Portfolio, error)     { return readList[Portfolio](r, KeyPortfolios) }
func (r *Reader) Goals() ([]Goal, error)               { return readList[Goal](r, KeyGoals) }
func (r *Reader) Achievements() ([]Achievement, error) { return readList[Achievement](r, KeyAchievements) }
func (r *Reader) Groups() ([]Group, error)             { return readList[Group](r, KeyGroups) }
func (r *Reader) Debts() ([]Debt, error)               { return readList[Debt](r, KeyDebts) }

// Holdings returns the holdings stored on their own, outside of the
// portfolios. Each one names its portfolio.
func (r *Reader) Holdings() ([]Holding, error) { return readList[Holding](r, KeyHoldings) }

func (r *Reader) Progress() (Progress, bool, error) { return readRecord[Progress](r, KeyProgress) }
func (r *Reader) Budget() (Budget, bool, error)     { return readRecord[Budget](r, KeyBudget) }
func (r *Reader) Settings() (Settings, bool, error) { return readRecord[Settings](r, KeySettings) }
