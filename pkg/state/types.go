package state

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrETagMismatch reports a concurrent modification detected by Mutate.
	ErrETagMismatch = errors.New("state: etag mismatch")
	// ErrNotFound reports that no requested level holds a selection.
	ErrNotFound = errors.New("state: selection not found")
)

// Ref identifies one persisted selection for one domain at one level.
type Ref struct {
	Domain string
	Level  Level
	// ID names the tenant, org, team or user. Ignored for LevelSystem.
	ID string
}

// Identifier returns the deterministic storage key for r.
func (r Ref) Identifier() (string, error) {
	if r.Domain == "" {
		return "", fmt.Errorf("state: domain is required")
	}
	switch r.Level {
	case LevelSystem:
		return fmt.Sprintf("system/%s", r.Domain), nil
	case LevelTenant, LevelOrg, LevelTeam, LevelUser:
		if r.ID == "" {
			return "", fmt.Errorf("state: missing id for level %q", r.Level)
		}
		return fmt.Sprintf("%s/%s/%s", r.Level, r.ID, r.Domain), nil
	default:
		return "", fmt.Errorf("state: unsupported level %s", r.Level)
	}
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty" yaml:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty" yaml:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Store loads and saves one text record per Ref. Records are opaque to the
// store; Selector writes canonical names.
type Store interface {
	Load(ctx context.Context, ref Ref) (record string, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, record string, meta Meta) (Meta, error)
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}

func mergeMeta(base, override Meta) Meta {
	out := cloneMeta(base)
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = cloneMeta(override).Extra
	}
	return out
}
