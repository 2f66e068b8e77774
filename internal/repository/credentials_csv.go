package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"mediscan/internal/models"

	"github.com/spf13/afero"
)

var credentialsHeader = []string{"username", "password", "email"}

// ErrCorruptStore is returned by Register when the file cannot be parsed.
var ErrCorruptStore = errors.New("credential store is corrupt")

// CredentialsCSV keeps users in a flat CSV file that is read in full and
// rewritten in full on every registration.
//
// Calls are serialized inside one process. Two processes sharing the same
// file can still lose a registration or admit a duplicate username.
type CredentialsCSV struct {
	fs     afero.Fs
	path   string
	digest Digest
	mu     sync.Mutex
}

// Ensure implementation of Credentials interface at compile time.
var _ Credentials = (*CredentialsCSV)(nil)

func NewCredentialsCSV(fs afero.Fs, path string, digest Digest) *CredentialsCSV {
	if digest == nil {
		digest = sha256Hex
	}
	return &CredentialsCSV{fs: fs, path: path, digest: digest}
}

// EnsureInitialized writes the header when the file is missing or empty.
func (r *CredentialsCSV) EnsureInitialized() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureInitialized()
}

func (r *CredentialsCSV) ensureInitialized() error {
	info, err := r.fs.Stat(r.path)
	switch {
	case err == nil && info.Size() > 0:
		return nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("stat credential store %q: %w", r.path, err)
	}
	return r.write(nil)
}

// Register appends a user unless the username exists in any letter case.
// It returns false, nil for a taken username.
func (r *CredentialsCSV) Register(username, password, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureInitialized(); err != nil {
		return false, err
	}
	users, err := r.read()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	if _, ok := findUser(users, username); ok {
		return false, nil
	}

	users = append(users, models.User{
		Username:     username,
		PasswordHash: r.digest(password),
		Email:        email,
	})
	if err := r.write(users); err != nil {
		return false, err
	}
	return true, nil
}

// Verify reports whether password matches the stored digest for username.
// Any read or parse failure counts as a mismatch.
func (r *CredentialsCSV) Verify(username, password string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.read()
	if err != nil {
		return false
	}
	u, ok := findUser(users, username)
	if !ok {
		return false
	}
	return digestsEqual(u.PasswordHash, r.digest(password))
}

func findUser(users []models.User, username string) (models.User, bool) {
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return u, true
		}
	}
	return models.User{}, false
}

// read parses the whole file. A missing or empty file yields no users.
func (r *CredentialsCSV) read() ([]models.User, error) {
	f, err := r.fs.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open credential store %q: %w", r.path, err)
	}
	defer func() { _ = f.Close() }()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(credentialsHeader)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range credentialsHeader {
		if strings.TrimSpace(header[i]) != col {
			return nil, fmt.Errorf("unexpected header %v", header)
		}
	}

	var users []models.User
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		users = append(users, models.User{Username: rec[0], PasswordHash: rec[1], Email: rec[2]})
	}
	return users, nil
}

// write replaces the file through a temp file and rename.
func (r *CredentialsCSV) write(users []models.User) error {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := r.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create credential dir %q: %w", dir, err)
		}
	}

	tmp := r.path + ".tmp"
	f, err := r.fs.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open temp credential store: %w", err)
	}

	cw := csv.NewWriter(f)
	rows := make([][]string, 0, len(users)+1)
	rows = append(rows, credentialsHeader)
	for _, u := range users {
		rows = append(rows, []string{u.Username, u.PasswordHash, u.Email})
	}
	if err := cw.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write credential store: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp credential store: %w", err)
	}
	if err := r.fs.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace credential store: %w", err)
	}
	return nil
}
