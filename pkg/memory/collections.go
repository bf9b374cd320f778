package memory

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/papercomputeco/jarvis/pkg/storage"
)

// Collection names in the storage driver.
const (
	CollectionHistory        = "history"
	CollectionFacts          = "facts"
	CollectionLocalKnowledge = "localKnowledge"
	CollectionBiography      = "biography"
)

// FileNames maps each collection to its file name for the file driver.
var FileNames = map[string]string{
	CollectionHistory:        "jarvis_memory.json",
	CollectionFacts:          "jarvis_facts.json",
	CollectionLocalKnowledge: "local_knowledge.json",
	CollectionBiography:      "jarvis_biography.json",
}

// ReloadableCollections are the inputs Reload re-reads.
var ReloadableCollections = []string{CollectionFacts, CollectionLocalKnowledge, CollectionBiography}

// Directives are LocalKnowledge values resolved at request time.
const (
	DirectiveTime = "get_time"
	DirectiveDate = "get_date"
)

// loader reads collections from a driver and reports decode failures.
type loader struct {
	driver storage.Driver
	log    *slog.Logger
}

// read returns the raw payload. ok is false when the collection is missing or
// unreadable.
func (l loader) read(ctx context.Context, name string) ([]byte, bool) {
	data, err := l.driver.Get(ctx, name)
	if storage.IsNotFound(err) {
		l.log.Debug("collection not found, using default", "collection", name)
		return nil, false
	}
	if err != nil {
		l.log.Warn("failed to read collection, using default", "collection", name, "error", err)
		return nil, false
	}
	return data, true
}

func (l loader) corrupt(name string, err error) {
	l.log.Warn("malformed collection, using default", "collection", name, "error", err)
}

func (l loader) history(ctx context.Context) (*History, bool) {
	data, ok := l.read(ctx, CollectionHistory)
	if !ok {
		return &History{}, false
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		l.corrupt(CollectionHistory, err)
		return &History{}, false
	}
	return NewHistory(entries), true
}

func (l loader) facts(ctx context.Context) (*Facts, bool) {
	data, ok := l.read(ctx, CollectionFacts)
	if !ok {
		return NewFacts(), false
	}

	f, err := ParseFacts(data)
	if err != nil {
		l.corrupt(CollectionFacts, err)
		return NewFacts(), false
	}
	return f, true
}

func (l loader) localKnowledge(ctx context.Context) (map[string]string, bool) {
	data, ok := l.read(ctx, CollectionLocalKnowledge)
	if !ok {
		return map[string]string{}, false
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		l.corrupt(CollectionLocalKnowledge, errNotObject)
		return map[string]string{}, false
	}

	out := map[string]string{}
	gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
		if q := NormalizeQuestion(key.String()); q != "" {
			out[q] = stringifyResult(value)
		}
		return true
	})
	return out, true
}

func (l loader) biography(ctx context.Context) (Node, bool) {
	data, ok := l.read(ctx, CollectionBiography)
	if !ok {
		return Mapping{}, false
	}

	n, err := ParseBiography(data)
	if err != nil {
		l.corrupt(CollectionBiography, err)
		return Mapping{}, false
	}
	return n, true
}
