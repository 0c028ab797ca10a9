// Package snapshot persists per-day aggregation results and raw item snapshots
// under a deterministic {scope}/{category}/{run id} layout.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/sprintstat/pkg/aggregate"
	"github.com/Sumatoshi-tech/sprintstat/pkg/persist"
	"github.com/Sumatoshi-tech/sprintstat/pkg/workitem"
)

// Snapshot categories.
const (
	CategoryBurnDown = "burn_down_data"
	CategoryData     = "data_snapshots"
)

// Sentinel errors.
var (
	// ErrCorrupt is returned when a persisted snapshot exists but cannot be read back.
	ErrCorrupt = errors.New("corrupt snapshot")
	// ErrInvalidKey is returned for an empty or path-like scope or run id.
	ErrInvalidKey = errors.New("invalid snapshot key")
)

// Store reads and writes snapshots below a root directory.
// It does not lock: concurrent writers to the same key race and the last rename wins.
type Store struct {
	root       string
	matrices   persist.Codec
	itemsCodec persist.Codec
	logger     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithCompressedItems stores raw item snapshots LZ4-compressed.
func WithCompressedItems(enabled bool) Option {
	return func(s *Store) {
		if enabled {
			s.itemsCodec = persist.NewLZ4Codec()
		} else {
			s.itemsCodec = persist.NewJSONCodec()
		}
	}
}

// WithLogger sets the logger used for absence and corruption reports.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store rooted at root.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{
		root:       root,
		matrices:   persist.NewJSONCodec(),
		itemsCodec: persist.NewJSONCodec(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Within returns a store sharing this store's settings, rooted at the sub directory.
func (s *Store) Within(sub string) *Store {
	child := *s
	child.root = filepath.Join(s.root, sub)

	return &child
}

// Dir returns the directory holding a scope's snapshots of one category.
func (s *Store) Dir(scope, category string) string {
	return filepath.Join(s.root, scope, category)
}

// Path returns the file a burn-down matrix for (scope, runID) is stored in.
func (s *Store) Path(scope, runID string) string {
	return persist.StatePath(s.Dir(scope, CategoryBurnDown), runID, s.matrices)
}

// ItemsPath returns the file the raw items of (scope, runID) are stored in.
func (s *Store) ItemsPath(scope, runID string) string {
	return persist.StatePath(s.Dir(scope, CategoryData), runID, s.itemsCodec)
}

// Persist writes the matrix for (scope, runID), replacing any previous content.
func (s *Store) Persist(scope, runID string, m *aggregate.Matrix) error {
	err := validateKey(scope, runID)
	if err != nil {
		return err
	}

	err = persist.SaveState(s.Dir(scope, CategoryBurnDown), runID, s.matrices, m)
	if err != nil {
		return fmt.Errorf("persist snapshot %s/%s: %w", scope, runID, err)
	}

	return nil
}

// Load reads the matrix for (scope, runID). A missing snapshot is reported as
// (nil, false, nil); unreadable content is an error wrapping ErrCorrupt.
func (s *Store) Load(scope, runID string) (*aggregate.Matrix, bool, error) {
	err := validateKey(scope, runID)
	if err != nil {
		return nil, false, err
	}

	var raw json.RawMessage

	loadErr := persist.LoadState(s.Dir(scope, CategoryBurnDown), runID, s.matrices, &raw)

	switch {
	case errors.Is(loadErr, persist.ErrStateNotFound):
		s.logger.Debug("snapshot absent", "scope", scope, "run", runID)

		return nil, false, nil
	case errors.Is(loadErr, persist.ErrDecode):
		return nil, false, s.corrupt(scope, runID, loadErr)
	case loadErr != nil:
		return nil, false, fmt.Errorf("load snapshot %s/%s: %w", scope, runID, loadErr)
	}

	schemaErr := validateMatrix(raw)
	if schemaErr != nil {
		return nil, false, s.corrupt(scope, runID, schemaErr)
	}

	m := &aggregate.Matrix{}

	unmarshalErr := json.Unmarshal(raw, m)
	if unmarshalErr != nil {
		return nil, false, s.corrupt(scope, runID, unmarshalErr)
	}

	return m, true, nil
}

// PersistItems writes the raw items of (scope, runID) to the data snapshot category.
func (s *Store) PersistItems(scope, runID string, items []workitem.Item) error {
	err := validateKey(scope, runID)
	if err != nil {
		return err
	}

	if items == nil {
		items = []workitem.Item{}
	}

	err = persist.SaveState(s.Dir(scope, CategoryData), runID, s.itemsCodec, items)
	if err != nil {
		return fmt.Errorf("persist items %s/%s: %w", scope, runID, err)
	}

	return nil
}

// LoadItems reads the raw items of (scope, runID) with the same absence and
// corruption semantics as Load.
func (s *Store) LoadItems(scope, runID string) ([]workitem.Item, bool, error) {
	err := validateKey(scope, runID)
	if err != nil {
		return nil, false, err
	}

	var items []workitem.Item

	loadErr := persist.LoadState(s.Dir(scope, CategoryData), runID, s.itemsCodec, &items)

	switch {
	case errors.Is(loadErr, persist.ErrStateNotFound):
		return nil, false, nil
	case errors.Is(loadErr, persist.ErrDecode):
		return nil, false, s.corrupt(scope, runID, loadErr)
	case loadErr != nil:
		return nil, false, fmt.Errorf("load items %s/%s: %w", scope, runID, loadErr)
	}

	return items, true, nil
}

// Runs lists the run ids with a persisted burn-down matrix for scope, sorted.
func (s *Store) Runs(scope string) ([]string, error) {
	entries, err := os.ReadDir(s.Dir(scope, CategoryBurnDown))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("list snapshots %s: %w", scope, err)
	}

	ext := s.matrices.Extension()
	runs := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ext) {
			continue
		}

		runs = append(runs, strings.TrimSuffix(name, ext))
	}

	slices.Sort(runs)

	return runs, nil
}

// Latest loads the most recent matrix of scope and returns its run id.
// A scope without snapshots yields ok false.
func (s *Store) Latest(scope string) (m *aggregate.Matrix, runID string, ok bool, err error) {
	runs, err := s.Runs(scope)
	if err != nil || len(runs) == 0 {
		return nil, "", false, err
	}

	runID = runs[len(runs)-1]

	m, ok, err = s.Load(scope, runID)
	if err != nil || !ok {
		return nil, "", false, err
	}

	return m, runID, true, nil
}

func (s *Store) corrupt(scope, runID string, cause error) error {
	s.logger.Error("snapshot corrupt", "scope", scope, "run", runID, "error", cause)

	return fmt.Errorf("%w: %s/%s: %w", ErrCorrupt, scope, runID, cause)
}

func validateKey(scope, runID string) error {
	for _, part := range []string{scope, runID} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return fmt.Errorf("%w: %q/%q", ErrInvalidKey, scope, runID)
		}
	}

	return nil
}
