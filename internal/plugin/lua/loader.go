package lua

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/plugkit/internal/plugin"
)

// descriptionPrefix marks a script's optional first-line description:
//
//	-- plugkit: highlights trailing whitespace
const descriptionPrefix = "-- plugkit:"

// Loader discovers plugin scripts on the filesystem.
type Loader struct {
	paths []string
	opts  []StateOption
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPaths sets the script search paths, replacing the defaults.
func WithPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.paths = paths
	}
}

// WithStateOptions sets the options applied to every discovered script's
// Lua state.
func WithStateOptions(opts ...StateOption) LoaderOption {
	return func(l *Loader) {
		l.opts = opts
	}
}

// NewLoader creates a script loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{paths: DefaultPaths()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DefaultPaths returns the default script search paths.
func DefaultPaths() []string {
	paths := make([]string, 0, 2)
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "plugkit", "plugins"))
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".plugkit", "plugins"))
	}
	return paths
}

// Paths returns the configured search paths.
func (l *Loader) Paths() []string {
	return l.paths
}

// AddPath appends a search path.
func (l *Loader) AddPath(path string) {
	l.paths = append(l.paths, path)
}

// Discover finds every *.lua file in the search paths, sorted by plugin
// name. The plugin name is the filename without its extension; when two
// paths carry the same name the earlier path wins. Missing directories are
// skipped silently.
func (l *Loader) Discover() []*Script {
	found := make(map[string]*Script)

	for _, basePath := range l.paths {
		entries, err := os.ReadDir(basePath)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lua") {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), ".lua")
			if _, exists := found[name]; exists {
				continue
			}
			path := filepath.Join(basePath, entry.Name())
			script := NewScript(name, path, l.opts...)
			script.Description = readDescription(path)
			found[name] = script
		}
	}

	scripts := make([]*Script, 0, len(found))
	for _, s := range found {
		scripts = append(scripts, s)
	}
	sort.Slice(scripts, func(i, j int) bool {
		return scripts[i].Name < scripts[j].Name
	})
	return scripts
}

// readDescription returns the description from a script's first-line header
// comment, or "" when the header is absent or the file is unreadable.
func readDescription(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return ""
	}
	line := scanner.Text()
	if !strings.HasPrefix(line, descriptionPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(line, descriptionPrefix))
}

// RegisterAll discovers scripts and registers each into the catalog.
// Returns the registered scripts.
func (l *Loader) RegisterAll(registry *plugin.Registry) ([]*Script, error) {
	scripts := l.Discover()
	for _, s := range scripts {
		if err := registry.Register(s.Definition()); err != nil {
			return nil, err
		}
	}
	return scripts, nil
}
