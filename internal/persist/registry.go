package persist

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	codecs = make(map[string]Codec)
	mu     sync.RWMutex
)

// Register adds a codec under its name.
// Panics if a codec with the same name is already registered.
func Register(c Codec) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := codecs[c.Name()]; exists {
		panic(fmt.Sprintf("persist: codec %q already registered", c.Name()))
	}
	codecs[c.Name()] = c
}

// Lookup returns the codec registered under name.
func Lookup(name string) (Codec, error) {
	mu.RLock()
	defer mu.RUnlock()

	c, ok := codecs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("persist: unknown format %q (available: %s)", name, strings.Join(formatsLocked(), ", "))
	}
	return c, nil
}

// Formats returns the registered codec names, sorted.
func Formats() []string {
	mu.RLock()
	defer mu.RUnlock()
	return formatsLocked()
}

func formatsLocked() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForPath picks a codec by file extension. Unknown extensions get JSON.
func ForPath(path string) Codec {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yml" {
		ext = ".yaml"
	}

	mu.RLock()
	defer mu.RUnlock()
	for _, c := range codecs {
		if c.Extension() == ext {
			return c
		}
	}
	return codecs[jsonName]
}
