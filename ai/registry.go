// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"fmt"
	"sort"
	"sync"

	"github.com/poiesic/reposcout/core"
)

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]Loader)
)

// RegisterBackend makes a Loader available under name. Backend packages
// call it from init. Registering the same name twice, or a nil loader, panics.
func RegisterBackend(name string, loader Loader) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if loader == nil {
		panic("ai: RegisterBackend loader is nil")
	}
	if _, dup := backends[name]; dup {
		panic("ai: RegisterBackend called twice for backend " + name)
	}
	backends[name] = loader
}

// Backends returns the sorted names of the registered backends.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupBackend(name string) (Loader, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	loader, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown embedding backend %q (forgotten import?)", core.ErrConfig, name)
	}
	return loader, nil
}
