package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"protogen/pkg/errors"
)

const manifestName = ".protogen-manifest.json"

func manifestPath(destRoot string) string {
	return filepath.Join(destRoot, manifestName)
}

// manifest records the content hash of the source that produced each
// target, keyed by target path. It backs the optional "hash" staleness
// mode, which survives checkout operations that rewrite timestamps.
type manifest struct {
	path string

	mu      sync.Mutex
	entries map[string]string
	dirty   bool
}

func newManifest(path string) *manifest {
	return &manifest{
		path:    path,
		entries: make(map[string]string),
	}
}

// Load reads the manifest from disk. A missing file is an empty manifest.
func (m *manifest) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapFilesystemError(m.path, "read", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return json.Unmarshal(data, &m.entries)
}

// Save writes the manifest back if any entry changed since Load.
func (m *manifest) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}

	data, err := json.MarshalIndent(m.entries, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return errors.WrapFilesystemError(filepath.Dir(m.path), "mkdir", err)
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return errors.WrapFilesystemError(m.path, "write", err)
	}

	m.dirty = false
	return nil
}

func (m *manifest) Get(targetPath string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hash, ok := m.entries[targetPath]
	return hash, ok
}

func (m *manifest) Record(targetPath, sourceHash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[targetPath] != sourceHash {
		m.entries[targetPath] = sourceHash
		m.dirty = true
	}
}

func (m *manifest) Forget(targetPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[targetPath]; ok {
		delete(m.entries, targetPath)
		m.dirty = true
	}
}

// Remove deletes the manifest file itself. Used by clean.
func (m *manifest) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]string)
	m.dirty = false

	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return errors.WrapFilesystemError(m.path, "remove", err)
	}
	return nil
}

// hashFile returns the hex sha256 of a file's content.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.WrapFilesystemError(path, "open", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.WrapFilesystemError(path, "read", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
