package vault

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/contract"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
	"github.com/lite-lake/infra-dnsdesk/internal/infrastructure/logger"
)

const (
	EnvPath = "DNSDESK_VAULT"

	MinPasswordLength = 8

	argonMemoryKiB = 19456
	argonTime      = 2
	argonThreads   = 1
	keyLen         = 32
	saltLen        = 16
	nonceLen       = 12
)

// PasswordFunc supplies the master password on first use.
type PasswordFunc func() (string, error)

// DefaultPath is $DNSDESK_VAULT or ~/.config/dnsdesk/vault.json.
func DefaultPath() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "dnsdesk", FileName)
}

// plain is the decrypted payload: provider -> credential.
type plain map[entity.Provider]*entity.Credential

type Status struct {
	Path        string                   `json:"path"`
	Initialized bool                     `json:"initialized"`
	Version     int                      `json:"version,omitempty"`
	Configured  map[entity.Provider]bool `json:"configured,omitempty"`
}

// Vault is the encrypted credential store. The password is requested
// lazily and kept for the life of the process once it has been accepted.
type Vault struct {
	store    *FileStore
	prompt   PasswordFunc
	mu       sync.Mutex
	password string
}

var _ contract.CredentialStore = (*Vault)(nil)

func New(path string, prompt PasswordFunc) *Vault {
	return &Vault{store: NewFileStore(path), prompt: prompt}
}

func (v *Vault) Path() string {
	return v.store.Path()
}

func (v *Vault) Initialize(ctx context.Context, password string) error {
	if len(password) < MinPasswordLength {
		return domain.Newf(domain.CodeInvalidInput, "master password must be at least %d characters", MinPasswordLength)
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.store.Exists() {
		return domain.New(domain.CodeAlreadyInitialized, "Vault already exists")
	}

	salt, err := randomBytes(saltLen)
	if err != nil {
		return err
	}
	key := deriveKey(password, salt)
	defer clear(key)

	f := &File{
		Version:     FileVersion,
		KDFSaltB64:  base64.StdEncoding.EncodeToString(salt),
		KeyCheckB64: keyCheck(key),
		Configured:  map[entity.Provider]bool{},
	}
	if err := seal(f, key, plain{}); err != nil {
		return err
	}
	if err := v.store.Create(f); err != nil {
		return err
	}
	v.password = password
	logger.FromContext(ctx).Info("vault initialized", "path", v.store.Path())
	return nil
}

// Status needs no password.
func (v *Vault) Status(_ context.Context) (*Status, error) {
	st := &Status{Path: v.store.Path()}
	if !v.store.Exists() {
		return st, nil
	}
	f, err := v.store.Load()
	if err != nil {
		return nil, err
	}
	st.Initialized = true
	st.Version = f.Version
	st.Configured = f.Configured
	return st, nil
}

// Unlock checks the master password without changing anything.
func (v *Vault) Unlock(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, _, err := v.open()
	return err
}

func (v *Vault) Credential(_ context.Context, p entity.Provider) (*entity.Credential, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	_, data, err := v.open()
	if err != nil {
		return nil, err
	}
	cred, ok := data[p]
	if !ok || cred == nil {
		return nil, domain.Newf(domain.CodeNotConfigured, "%s is not configured", p.DisplayName())
	}
	return cred, nil
}

func (v *Vault) Statuses(_ context.Context) ([]entity.IntegrationStatus, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	_, data, err := v.open()
	if err != nil {
		return nil, err
	}
	out := make([]entity.IntegrationStatus, 0, len(entity.AllProviders()))
	for _, p := range entity.AllProviders() {
		st := entity.IntegrationStatus{Provider: p}
		if cred, ok := data[p]; ok && cred != nil {
			st.Configured = true
			st.LastVerifiedAt = cred.LastVerifiedAt
		}
		out = append(out, st)
	}
	return out, nil
}

func (v *Vault) Save(ctx context.Context, cred *entity.Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}
	err := v.mutate(func(data plain) error {
		data[cred.Provider] = cred
		return nil
	})
	if err == nil {
		logger.FromContext(ctx).ForProvider(string(cred.Provider)).Debug("credential stored", maskedFields(cred)...)
	}
	return err
}

// maskedFields lists the stored field names with their values masked.
func maskedFields(cred *entity.Credential) []any {
	keys := make([]string, 0, len(cred.Fields))
	for k := range cred.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, k, logger.Secret(cred.Fields[k]))
	}
	return args
}

func (v *Vault) Clear(_ context.Context, p entity.Provider) error {
	return v.mutate(func(data plain) error {
		delete(data, p)
		return nil
	})
}

func (v *Vault) MarkVerified(_ context.Context, p entity.Provider, at time.Time) error {
	return v.mutate(func(data plain) error {
		cred, ok := data[p]
		if !ok || cred == nil {
			return domain.Newf(domain.CodeNotConfigured, "%s is not configured", p.DisplayName())
		}
		t := at.UTC()
		cred.LastVerifiedAt = &t
		return nil
	})
}

// mutate decrypts, applies fn and re-encrypts with a fresh nonce, holding
// the file lock across the whole cycle.
func (v *Vault) mutate(fn func(plain) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	password, err := v.currentPassword()
	if err != nil {
		return err
	}
	err = v.store.Update(func(f *File) (*File, error) {
		key, data, err := decrypt(f, password)
		if err != nil {
			return nil, err
		}
		defer clear(key)

		if err := fn(data); err != nil {
			return nil, err
		}
		if err := seal(f, key, data); err != nil {
			return nil, err
		}
		return f, nil
	})
	if err == nil {
		v.password = password
	}
	return err
}

// open loads and decrypts the vault. Callers hold v.mu.
func (v *Vault) open() (*File, plain, error) {
	f, err := v.store.Load()
	if err != nil {
		return nil, nil, err
	}
	password, err := v.currentPassword()
	if err != nil {
		return nil, nil, err
	}
	key, data, err := decrypt(f, password)
	if err != nil {
		return nil, nil, err
	}
	clear(key)
	v.password = password
	return f, data, nil
}

func (v *Vault) currentPassword() (string, error) {
	if v.password != "" {
		return v.password, nil
	}
	if v.prompt == nil {
		return "", domain.New(domain.CodeInvalidMasterPassword, "master password is required")
	}
	return v.prompt()
}

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemoryKiB, argonThreads, keyLen)
}

func keyCheck(key []byte) string {
	sum := sha256.Sum256(key)
	defer clear(sum[:])
	return base64.StdEncoding.EncodeToString(sum[:])
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, domain.Newf(domain.CodeCryptoError, "random source: %v", err)
	}
	return b, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, domain.Newf(domain.CodeCryptoError, "%v", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, domain.Newf(domain.CodeCryptoError, "%v", err)
	}
	return gcm, nil
}

// decrypt returns the derived key along with the payload; the caller
// clears the key.
func decrypt(f *File, password string) ([]byte, plain, error) {
	salt, err := decodeB64(f.KDFSaltB64, saltLen, "salt")
	if err != nil {
		return nil, nil, err
	}
	key := deriveKey(password, salt)

	if subtle.ConstantTimeCompare([]byte(keyCheck(key)), []byte(f.KeyCheckB64)) != 1 {
		clear(key)
		return nil, nil, domain.New(domain.CodeInvalidMasterPassword, "Invalid master password")
	}

	nonce, err := decodeB64(f.NonceB64, nonceLen, "nonce")
	if err != nil {
		clear(key)
		return nil, nil, err
	}
	ciphertext, err := base64.StdEncoding.DecodeString(f.CiphertextB64)
	if err != nil {
		clear(key)
		return nil, nil, domain.Newf(domain.CodeParseError, "ciphertext: %v", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		clear(key)
		return nil, nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		clear(key)
		return nil, nil, domain.New(domain.CodeInvalidMasterPassword, "Invalid master password")
	}
	defer clear(plaintext)

	data := plain{}
	if err := json.Unmarshal(plaintext, &data); err != nil {
		clear(key)
		return nil, nil, domain.Newf(domain.CodeParseError, "vault payload: %v", err)
	}
	for p, cred := range data {
		if cred != nil {
			cred.Provider = p
		}
	}
	return key, data, nil
}

// seal encrypts data into f with a fresh nonce and refreshes the
// configured flags.
func seal(f *File, key []byte, data plain) error {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return domain.Newf(domain.CodeSerializeError, "%v", err)
	}
	defer clear(plaintext)

	nonce, err := randomBytes(nonceLen)
	if err != nil {
		return err
	}
	gcm, err := newGCM(key)
	if err != nil {
		return err
	}

	f.NonceB64 = base64.StdEncoding.EncodeToString(nonce)
	f.CiphertextB64 = base64.StdEncoding.EncodeToString(gcm.Seal(nil, nonce, plaintext, nil))
	f.Configured = make(map[entity.Provider]bool, len(entity.AllProviders()))
	for _, p := range entity.AllProviders() {
		cred, ok := data[p]
		f.Configured[p] = ok && cred != nil
	}
	return nil
}

func decodeB64(s string, n int, what string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, domain.Newf(domain.CodeParseError, "%s: %v", what, err)
	}
	if len(b) != n {
		return nil, domain.Newf(domain.CodeParseError, "Invalid %s length", what)
	}
	return b, nil
}
