package catalog

import (
	"sync"

	"github.com/chanilino/romscrape/internal/logger"
)

// PlaceholderEmulator is inserted for systems that have no configured
// emulator section.
const PlaceholderEmulator = "unknown"

// EmulatorTable resolves the emulator name per system. Systems without a
// configured section are healed with a placeholder; that write is the only
// mutation during pipeline execution and is serialized here so concurrent
// records for the same system never race.
type EmulatorTable struct {
	mu        sync.Mutex
	emulators map[string]string
}

// NewEmulatorTable seeds the table with the configured per-system emulators.
func NewEmulatorTable(configured map[string]string) *EmulatorTable {
	emulators := make(map[string]string, len(configured))
	for system, emulator := range configured {
		if emulator != "" {
			emulators[system] = emulator
		}
	}
	return &EmulatorTable{emulators: emulators}
}

// Resolve returns the emulator for a system, inserting the placeholder
// default and warning once for systems with no section.
func (t *EmulatorTable) Resolve(systemName string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if emulator, ok := t.emulators[systemName]; ok {
		return emulator
	}
	logger.Warn("no emulator configured for system, using placeholder",
		logger.Fields{"system": systemName, "emulator": PlaceholderEmulator})
	t.emulators[systemName] = PlaceholderEmulator
	return PlaceholderEmulator
}
