package state

import (
	"fmt"

	enum "github.com/goliatone/go-enum"
)

// Level is the scope a selection is stored at. Later levels are stronger.
type Level uint8

const (
	LevelSystem Level = iota
	LevelTenant
	LevelOrg
	LevelTeam
	LevelUser
	levelCount
)

var levels = enum.MustCatalog([]enum.Entry[Level]{
	{Value: LevelSystem, Name: "system"},
	{Value: LevelTenant, Name: "tenant"},
	{Value: LevelOrg, Name: "org"},
	{Value: LevelTeam, Name: "team"},
	{Value: LevelUser, Name: "user"},
}, enum.WithCardinality(int(levelCount)), enum.WithTypeName("Level"))

// EnumCatalog binds Level to its catalog.
func (Level) EnumCatalog() *enum.Catalog[Level] { return levels }

func (l Level) String() string {
	i, ok := levels.Ordinal(l)
	if !ok {
		return fmt.Sprintf("Level(%d)", uint8(l))
	}
	name, _ := levels.Name(i)
	return name
}

// ParseLevel returns the level with the given name.
func ParseLevel(name string) (Level, error) {
	v, err := enum.Parse[Level](name)
	if err != nil {
		return 0, fmt.Errorf("state: %w", err)
	}
	return v.Enumerator(), nil
}

// strength orders levels; unknown levels are weakest.
func (l Level) strength() int {
	i, ok := levels.Ordinal(l)
	if !ok {
		return -1
	}
	return i
}
