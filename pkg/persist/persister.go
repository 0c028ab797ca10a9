package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Sentinel errors for LoadState.
var (
	// ErrStateNotFound is returned when no state file exists.
	ErrStateNotFound = errors.New("state not found")
	// ErrDecode is returned when a state file exists but cannot be decoded.
	ErrDecode = errors.New("decode state")
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// StatePath returns the file path for basename under dir with the codec's extension.
func StatePath(dir, basename string, codec Codec) string {
	return filepath.Join(dir, basename+codec.Extension())
}

// SaveState saves the given state to a file in the specified directory,
// creating the directory when needed. The file is written to a temporary
// sibling and renamed, so readers never observe a partial write.
func SaveState(dir, basename string, codec Codec, state any) error {
	err := os.MkdirAll(dir, dirPerm)
	if err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+basename+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}

	tmpPath := tmp.Name()

	encodeErr := codec.Encode(tmp, state)
	closeErr := tmp.Close()

	if encodeErr != nil || closeErr != nil {
		os.Remove(tmpPath)

		if encodeErr != nil {
			return fmt.Errorf("encode state: %w", encodeErr)
		}

		return fmt.Errorf("close state file: %w", closeErr)
	}

	err = os.Chmod(tmpPath, filePerm)
	if err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("chmod state file: %w", err)
	}

	err = os.Rename(tmpPath, StatePath(dir, basename, codec))
	if err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("rename state file: %w", err)
	}

	return nil
}

// LoadState loads state from a file in the specified directory.
// The state parameter must be a pointer to the target value.
// A missing file yields ErrStateNotFound; undecodable content yields ErrDecode.
func LoadState(dir, basename string, codec Codec, state any) error {
	path := StatePath(dir, basename, codec)

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrStateNotFound, path)
	}

	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	err = codec.Decode(file, state)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return nil
}

// Persister handles I/O for a specific state type using a Codec.
type Persister[T any] struct {
	basename string
	codec    Codec
}

// NewPersister creates a persister with the given basename and codec.
func NewPersister[T any](basename string, codec Codec) *Persister[T] {
	return &Persister[T]{
		basename: basename,
		codec:    codec,
	}
}

// Path returns the file the persister reads and writes under dir.
func (p *Persister[T]) Path(dir string) string {
	return StatePath(dir, p.basename, p.codec)
}

// Save writes state to the given directory.
func (p *Persister[T]) Save(dir string, state *T) error {
	return SaveState(dir, p.basename, p.codec, state)
}

// Load reads state from the given directory.
func (p *Persister[T]) Load(dir string) (*T, error) {
	var state T

	err := LoadState(dir, p.basename, p.codec, &state)
	if err != nil {
		return nil, err
	}

	return &state, nil
}
