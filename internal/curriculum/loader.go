package curriculum

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const specSuffix = ".spec.yaml"

// Loader loads item banks and named category specs from the filesystem.
type Loader struct {
	rootDir string
	result  BuildResult
	specs   map[string]CategorySpec
	mu      sync.RWMutex
}

// namedSpec is the on-disk shape of a *.spec.yaml file.
type namedSpec struct {
	Name         string `yaml:"name"`
	CategorySpec `yaml:",inline"`
}

// NewLoader creates a new loader and loads all content under rootDir.
//
// Recognised files:
//   - *.spec.yaml: a named CategorySpec
//   - *.yaml, *.yml: a bank (quiz_id, items, cases)
//   - *.json: a bank, validated against the bank schema
//   - *.xlsx: a bank laid out one item per row
func NewLoader(rootDir string) (*Loader, error) {
	l := &Loader{
		rootDir: rootDir,
		specs:   make(map[string]CategorySpec),
	}

	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading item bank: %w", err)
	}

	slog.Info("item bank loaded",
		"items", len(l.result.Bank.Items),
		"cases", len(l.result.Bank.Cases),
		"specs", len(l.specs),
		"skipped", l.result.Skipped,
	)
	return l, nil
}

// Result returns the built bank.
func (l *Loader) Result() BuildResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.result
}

// Spec returns a named category spec.
func (l *Loader) Spec(name string) (CategorySpec, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.specs[name]
	return s, ok
}

func (l *Loader) loadAll() error {
	var raws []RawBank

	err := filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		var rb *RawBank
		switch {
		case strings.HasSuffix(path, specSuffix):
			return l.loadSpec(path)
		case strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml"):
			rb, err = loadYAMLBank(path)
		case strings.HasSuffix(path, ".json"):
			rb, err = loadJSONBank(path)
		case strings.HasSuffix(path, ".xlsx"):
			rb, err = loadXLSXBank(path)
		default:
			return nil
		}
		if err != nil {
			return err
		}
		if rb != nil {
			raws = append(raws, *rb)
		}
		return nil
	})
	if err != nil {
		return err
	}

	result := BuildBank(raws)

	l.mu.Lock()
	l.result = result
	l.mu.Unlock()
	return nil
}

func loadYAMLBank(path string) (*RawBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rb RawBank
	if err := yaml.Unmarshal(data, &rb); err != nil {
		slog.Warn("skipping invalid bank YAML", "path", path, "error", err)
		return nil, nil
	}
	if len(rb.Items) == 0 && len(rb.Cases) == 0 {
		return nil, nil // Not a bank file
	}
	return &rb, nil
}

func (l *Loader) loadSpec(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var spec namedSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		slog.Warn("skipping invalid category spec", "path", path, "error", err)
		return nil
	}

	name := spec.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), specSuffix)
	}

	l.mu.Lock()
	l.specs[name] = spec.CategorySpec
	l.mu.Unlock()

	return nil
}
