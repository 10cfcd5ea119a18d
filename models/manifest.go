package models

// ItemStamp is a per-item last-modified marker from the sync manifest.
type ItemStamp struct {
	ID        string `json:"id"`
	UpdatedAt string `json:"updatedAt"`
}

// Manifest is the server's catalog of per-resource-family last-modified
// markers, consumed only by the catch-up sync pass. A zero-value field means
// the server holds nothing for that family.
type Manifest struct {
	// Settings is the marker of the user's settings document.
	Settings string `json:"settings,omitempty"`

	// EventList is the marker of the full event list resource.
	EventList string `json:"eventList,omitempty"`

	// EventDetails holds one stamp per event detail record.
	EventDetails []ItemStamp `json:"eventDetails,omitempty"`

	// EventDescriptions holds one stamp per event description record.
	EventDescriptions []ItemStamp `json:"eventDescriptions,omitempty"`
}
