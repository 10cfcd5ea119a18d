package service

// Remote resource URLs, relative to the transport base URL. Per-item detail
// and description URLs are derived from the adapter's bulk-eligible families.
const (
	SettingsURL  = "/api/settings"
	EventListURL = "/api/event-list"
	ManifestURL  = "/api/manifest"
)

// Local cache keys. The persisted layout is flat: these keys plus the
// marker map key and the schema version key are everything the store holds.
const (
	SettingsKey  = "settings"
	EventListKey = "event-list"

	EventDetailKeyPrefix      = "event-detail:"
	EventDescriptionKeyPrefix = "event-description:"
)

// EventDetailKey returns the cache key for one event's detail record.
func EventDetailKey(id string) string {
	return EventDetailKeyPrefix + id
}

// EventDescriptionKey returns the cache key for one event's description.
func EventDescriptionKey(id string) string {
	return EventDescriptionKeyPrefix + id
}
