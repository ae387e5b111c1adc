package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrUnknownScenario is returned when a named scenario does not exist.
var ErrUnknownScenario = errors.New("unknown scenario")

// FileStore persists scenarios as a single JSON document mapping scenario
// name to its definition. The file is created empty on first load.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore backed by the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads all scenarios from disk. A missing file is initialized to an
// empty document rather than reported as an error.
func (s *FileStore) Load() (map[string]Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(s.path, []byte("{}\n"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to initialize scenario file: %w", err)
		}
		return map[string]Scenario{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenarios := make(map[string]Scenario)
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}

	// The name lives in the map key on disk.
	for name, sc := range scenarios {
		sc.Name = name
		scenarios[name] = sc
	}
	return scenarios, nil
}

// Save writes all scenarios back to disk, replacing the previous document.
func (s *FileStore) Save(scenarios map[string]Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(scenarios, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode scenarios: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}
	return nil
}

// Get returns a single scenario by name.
func (s *FileStore) Get(name string) (Scenario, error) {
	scenarios, err := s.Load()
	if err != nil {
		return Scenario{}, err
	}
	sc, ok := scenarios[name]
	if !ok {
		return Scenario{}, ErrUnknownScenario
	}
	return sc, nil
}
