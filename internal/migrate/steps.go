// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anna Velichko

package migrate

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/avelichko/revise/internal/logger"
	"github.com/avelichko/revise/internal/service"
	"github.com/avelichko/revise/internal/store"
)

const legacySettingsKey = "config"
const legacyEventKeyPrefix = "event:"

// combinedEvent is the pre-split shape of an event record: detail and
// description lived in one value under "event:{id}".
type combinedEvent struct {
	Detail      string `json:"detail"`
	Description string `json:"description"`
}

// Steps returns this installation's migration history, oldest first. New
// steps are appended with the next version; existing entries never change.
func Steps() []Step {
	return []Step{
		{Version: 1, Name: "rename legacy settings key", Apply: renameLegacySettings},
		{Version: 2, Name: "split combined event records", Apply: splitCombinedEvents},
		{Version: 3, Name: "rebuild last-update map", Apply: rebuildMarkerMap},
	}
}

// renameLegacySettings moves the "config" value under the current settings
// key. An existing settings value wins: it is always the newer state.
func renameLegacySettings(_ context.Context, kv store.KVStore, _ *logger.Logger) error {
	value, ok := kv.GetItem(legacySettingsKey)
	if !ok {
		return nil
	}

	if _, exists := kv.GetItem(service.SettingsKey); !exists {
		kv.SetItem(service.SettingsKey, value)
	}
	kv.RemoveItem(legacySettingsKey)
	return nil
}

// splitCombinedEvents fans the legacy "event:{id}" records out into the
// detail and description keys the engine reads today. Records that no longer
// parse are dropped, matching the engine's malformed-cache-is-a-miss policy;
// the next sync refetches them from the remote store.
func splitCombinedEvents(_ context.Context, kv store.KVStore, log *logger.Logger) error {
	for _, key := range kv.Keys() {
		if !strings.HasPrefix(key, legacyEventKeyPrefix) {
			continue
		}
		id := strings.TrimPrefix(key, legacyEventKeyPrefix)

		raw, ok := kv.GetItem(key)
		if ok {
			var combined combinedEvent
			if err := json.Unmarshal([]byte(raw), &combined); err != nil {
				log.Warn().Str("key", key).Err(err).Msg("dropping unreadable combined event record")
			} else {
				kv.SetItem(service.EventDetailKey(id), combined.Detail)
				kv.SetItem(service.EventDescriptionKey(id), combined.Description)
			}
		}
		kv.RemoveItem(key)
	}
	return nil
}

// rebuildMarkerMap drops marker entries whose resource record no longer
// exists, so sync does not skip refetching resources the store lost.
func rebuildMarkerMap(_ context.Context, kv store.KVStore, log *logger.Logger) error {
	raw, ok := kv.GetItem(service.LastUpdateMapKey)
	if !ok || raw == "" {
		return nil
	}

	markers := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &markers); err != nil {
		log.Warn().Err(err).Msg("dropping unreadable last-update map")
		kv.RemoveItem(service.LastUpdateMapKey)
		return nil
	}

	for key := range markers {
		if _, exists := kv.GetItem(key); !exists {
			delete(markers, key)
		}
	}

	rebuilt, err := json.Marshal(markers)
	if err != nil {
		return err
	}
	kv.SetItem(service.LastUpdateMapKey, string(rebuilt))
	return nil
}
