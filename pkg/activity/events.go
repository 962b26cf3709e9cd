package activity

import (
	"strings"
	"time"
)

// Verbs emitted by this module.
const (
	VerbSelectionSaved    = "enum.selection.saved"
	VerbSelectionRepaired = "enum.selection.repaired"
	VerbChoicesRestricted = "enum.choices.restricted"
)

// Object types used by the builders.
const (
	ObjectSelection = "enum.selection"
	ObjectChoices   = "enum.choices"
)

// SelectionEventInput describes a change to an enumeration value.
type SelectionEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	Enum       string
	Domain     string
	Ref        string
	SnapshotID string
	Previous   string
	Current    string
	Legacy     bool
	Allowed    []string
	Proscribed []string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildSelectionSavedEvent describes a persisted selection.
func BuildSelectionSavedEvent(input SelectionEventInput) Event {
	return buildEvent(VerbSelectionSaved, ObjectSelection, input)
}

// BuildSelectionRepairedEvent describes a value moved off a proscribed entry,
// or a legacy record rewritten in canonical form.
func BuildSelectionRepairedEvent(input SelectionEventInput) Event {
	return buildEvent(VerbSelectionRepaired, ObjectSelection, input)
}

// BuildChoicesRestrictedEvent describes a new allowed mask.
func BuildChoicesRestrictedEvent(input SelectionEventInput) Event {
	return buildEvent(VerbChoicesRestricted, ObjectChoices, input)
}

func buildEvent(verb, objectType string, input SelectionEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if input.Enum != "" {
		set("enum", input.Enum)
	}
	if input.Domain != "" {
		set("domain", input.Domain)
	}
	if input.SnapshotID != "" {
		set("snapshot_id", input.SnapshotID)
	}
	if input.Previous != "" {
		set("previous", input.Previous)
	}
	if input.Current != "" {
		set("current", input.Current)
	}
	if input.Legacy {
		set("legacy", true)
	}
	if input.Allowed != nil {
		set("allowed", cloneStrings(input.Allowed))
	}
	if len(input.Proscribed) > 0 {
		set("proscribed", cloneStrings(input.Proscribed))
	}

	objectID := firstNonEmpty(input.Ref, input.SnapshotID, input.Enum, objectType)

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
