// Package usersink forwards enumeration activity to a go-users ActivitySink.
package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-enum/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts activity events to a go-users ActivitySink. Identity fields that
// are not UUIDs map to uuid.Nil and are kept verbatim under the "raw_ids" data
// key so nothing is silently lost.
type Hook struct {
	Sink usertypes.ActivitySink
	// Now stamps records whose event has no OccurredAt. Defaults to time.Now.
	Now func() time.Time
}

var _ activity.ActivityHook = Hook{}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	evt := activity.NormalizeEvent(event)
	if evt.Verb == "" || evt.ObjectType == "" || evt.ObjectID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	data := map[string]any{}
	for key, value := range evt.Metadata {
		data[key] = value
	}
	if evt.DefinitionCode != "" {
		data["definition_code"] = evt.DefinitionCode
	}
	if len(evt.Recipients) > 0 {
		data["recipients"] = append([]string{}, evt.Recipients...)
	}

	raw := map[string]string{}
	actor := identity("actor", evt.ActorID, raw)
	user := identity("user", evt.UserID, raw)
	tenant := identity("tenant", evt.TenantID, raw)
	if len(raw) > 0 {
		data["raw_ids"] = raw
	}
	if len(data) == 0 {
		data = nil
	}

	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = h.now()
	}

	return h.Sink.Log(ctx, usertypes.ActivityRecord{
		ActorID:    actor,
		UserID:     user,
		TenantID:   tenant,
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		Data:       data,
		OccurredAt: occurred,
	})
}

func (h Hook) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func identity(field, input string, raw map[string]string) uuid.UUID {
	value := strings.TrimSpace(input)
	if value == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		raw[field] = value
		return uuid.Nil
	}
	return id
}
