package core

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]ModuleInfo)
)

// RegisterModule adds a module to the global registry, reading its
// ModuleInfo from the given instance. Every module package calls this
// from init(), so the binary's import list decides which modules exist;
// a duplicate ID or incomplete info is a programming error and panics.
func RegisterModule(instance Module) {
	info := instance.ModuleInfo()
	if info.ID == "" {
		panic("module ID must not be empty")
	}
	if info.New == nil {
		panic(fmt.Sprintf("module %s: New function must not be nil", info.ID))
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	id := string(info.ID)
	if _, taken := registry[id]; taken {
		panic(fmt.Sprintf("module already registered: %s", id))
	}
	registry[id] = info
}

// GetModule returns the registered info for id, or false.
func GetModule(id string) (ModuleInfo, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	info, ok := registry[id]
	return info, ok
}

// GetModules returns every registered module, sorted by ID.
func GetModules() []ModuleInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return sortedInfos(func(string) bool { return true })
}

// GetModulesByNamespace returns the registered modules whose ID sits in
// the given namespace, e.g. "channel" matches "channel.slack" but not
// "channel" itself.
func GetModulesByNamespace(namespace string) []ModuleInfo {
	prefix := namespace + "."

	registryMu.RLock()
	defer registryMu.RUnlock()
	return sortedInfos(func(id string) bool { return strings.HasPrefix(id, prefix) })
}

// sortedInfos collects matching entries sorted by ID. Callers hold the
// registry lock.
func sortedInfos(match func(id string) bool) []ModuleInfo {
	var infos []ModuleInfo
	for id, info := range registry {
		if match(id) {
			infos = append(infos, info)
		}
	}
	slices.SortFunc(infos, func(a, b ModuleInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return infos
}

// resetRegistry clears the registry. Only for testing.
func resetRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]ModuleInfo)
}
