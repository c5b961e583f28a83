// Package collector backs the snapshot engine's platform interfaces with
// live readings from the running host.
package collector

import (
	"sysmeter/catalog"
	"sysmeter/snapshot"
)

// NewSystem wires the live platform services into a snapshot session and runs
// the initial refresh for the requested categories. Hosts without localized
// counter names use the built-in English catalog.
func NewSystem(specifics snapshot.Specifics) *snapshot.System {
	return snapshot.New(NewPlatform(), NewProcs(), NewCPUSource(), catalog.New(catalog.EnglishTable()), specifics)
}
