package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"keymesh/domain"
)

const identityFile = "identity.enc"

// FileStore stores the local identity on disk, encrypted under a passphrase.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

// SaveIdentity seals the keypair under the passphrase and writes it.
func (s *FileStore) SaveIdentity(passphrase string, kp domain.Keypair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(kp)
	if err != nil {
		return err
	}
	N, r, p := scryptParamsDefault()
	blob, err := encrypt(passphrase, raw, N, r, p)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, identityFile), blob, 0o600)
}

// LoadIdentity reads and opens the stored keypair.
func (s *FileStore) LoadIdentity(passphrase string) (domain.Keypair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := os.ReadFile(filepath.Join(s.dir, identityFile))
	if err != nil {
		return domain.Keypair{}, err
	}
	raw, err := decrypt(passphrase, blob)
	if err != nil {
		return domain.Keypair{}, err
	}
	var kp domain.Keypair
	if err := json.Unmarshal(raw, &kp); err != nil {
		return domain.Keypair{}, err
	}
	return kp, nil
}

// HasIdentity reports whether an identity file exists.
func (s *FileStore) HasIdentity() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(filepath.Join(s.dir, identityFile))
	return err == nil
}

// writeFile writes bytes via a temp file, then atomically replaces the target.
func writeFile(path string, b []byte, mode os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
