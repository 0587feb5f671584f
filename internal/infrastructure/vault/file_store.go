package vault

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

const (
	FileName    = "vault.json"
	FileVersion = 1

	filePerm = 0o600
	dirPerm  = 0o700
)

// File is the on-disk vault document. Only the configured flags are
// readable without the master password.
type File struct {
	Version       int                      `json:"version"`
	KDFSaltB64    string                   `json:"kdf_salt_b64"`
	KeyCheckB64   string                   `json:"key_check_b64"`
	Configured    map[entity.Provider]bool `json:"configured"`
	NonceB64      string                   `json:"nonce_b64"`
	CiphertextB64 string                   `json:"ciphertext_b64"`
}

// FileStore reads and atomically replaces the vault file under an
// advisory lock held in a sibling ".lock" file.
type FileStore struct {
	path  string
	flock *flock.Flock
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:  path,
		flock: flock.New(path + ".lock"),
	}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *FileStore) Load() (*File, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.flock.Unlock()
	return s.read()
}

// Update runs fn on the current file and writes the result, all under one
// lock. fn returning nil leaves the file untouched.
func (s *FileStore) Update(fn func(*File) (*File, error)) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.flock.Unlock()

	cur, err := s.read()
	if err != nil {
		return err
	}
	next, err := fn(cur)
	if err != nil || next == nil {
		return err
	}
	return s.write(next)
}

// Create writes f only when no vault exists yet.
func (s *FileStore) Create(f *File) error {
	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return domain.Newf(domain.CodeIOError, "create vault directory: %v", err)
	}
	if err := s.lock(); err != nil {
		return err
	}
	defer s.flock.Unlock()

	if s.Exists() {
		return domain.New(domain.CodeAlreadyInitialized, "Vault already exists")
	}
	return s.write(f)
}

func (s *FileStore) lock() error {
	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return domain.Newf(domain.CodeIOError, "create vault directory: %v", err)
	}
	if err := s.flock.Lock(); err != nil {
		return domain.Newf(domain.CodeIOError, "acquiring lock: %v", err)
	}
	return nil
}

func (s *FileStore) read() (*File, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.New(domain.CodeNotInitialized, "Vault is not initialized")
	}
	if err != nil {
		return nil, domain.Newf(domain.CodeIOError, "reading vault file %s: %v", s.path, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, domain.Newf(domain.CodeParseError, "parsing vault file %s: %v", s.path, err)
	}
	if f.Version != FileVersion {
		return nil, domain.Newf(domain.CodeUnsupportedVersion, "Unsupported vault version %d", f.Version)
	}
	return &f, nil
}

func (s *FileStore) write(f *File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return domain.Newf(domain.CodeSerializeError, "marshaling vault: %v", err)
	}

	tmpPath := filepath.Join(filepath.Dir(s.path), "."+filepath.Base(s.path)+".tmp")
	if err := os.WriteFile(tmpPath, data, filePerm); err != nil {
		return domain.Newf(domain.CodeIOError, "writing temp vault file %s: %v", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return domain.Newf(domain.CodeIOError, "renaming vault file from %s to %s: %v", tmpPath, s.path, err)
	}
	return nil
}
