package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
	"github.com/lite-lake/infra-dnsdesk/internal/infrastructure/logger"
)

const testPassword = "correct horse"

func fixed(password string) PasswordFunc {
	return func() (string, error) { return password, nil }
}

func newInitialized(t *testing.T) (*Vault, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", FileName)
	v := New(path, nil)
	require.NoError(t, v.Initialize(context.Background(), testPassword))
	return v, path
}

func TestVault_Initialize(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), FileName)
	v := New(path, nil)

	err := v.Initialize(ctx, "short")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NoFileExists(t, path)

	require.NoError(t, v.Initialize(ctx, testPassword))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	err = v.Initialize(ctx, testPassword)
	assert.Equal(t, domain.CodeAlreadyInitialized, domain.CodeOf(err))

	st, err := v.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Initialized)
	assert.Equal(t, FileVersion, st.Version)
	assert.Len(t, st.Configured, len(entity.AllProviders()))
	for _, configured := range st.Configured {
		assert.False(t, configured)
	}
}

func TestVault_StatusUninitialized(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	v := New(path, nil)

	st, err := v.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Initialized)
	assert.Equal(t, path, st.Path)

	_, err = New(path, fixed(testPassword)).Credential(context.Background(), entity.ProviderCloudflare)
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestVault_SaveAndRead(t *testing.T) {
	ctx := context.Background()
	_, path := newInitialized(t)
	v := New(path, fixed(testPassword))

	cred, err := entity.NewCredential(entity.ProviderCloudflare, map[string]string{"email": "ops@example.com", "api_key": "cf-secret"})
	require.NoError(t, err)
	require.NoError(t, v.Save(ctx, cred))

	got, err := v.Credential(ctx, entity.ProviderCloudflare)
	require.NoError(t, err)
	assert.Equal(t, entity.ProviderCloudflare, got.Provider)
	assert.Equal(t, "cf-secret", got.Get("api_key"))

	_, err = v.Credential(ctx, entity.ProviderRainyun)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "cf-secret")
	assert.NotContains(t, string(raw), "ops@example.com")

	var f File
	require.NoError(t, json.Unmarshal(raw, &f))
	assert.True(t, f.Configured[entity.ProviderCloudflare])
	assert.False(t, f.Configured[entity.ProviderRainyun])
}

func TestVault_SaveLogsMaskedFields(t *testing.T) {
	var buf bytes.Buffer
	l := &logger.Logger{Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	ctx := logger.ContextWithLogger(context.Background(), l)
	_, path := newInitialized(t)
	v := New(path, fixed(testPassword))

	cred, err := entity.NewCredential(entity.ProviderCloudflare, map[string]string{"email": "ops@example.com", "api_key": "cf-secret"})
	require.NoError(t, err)
	require.NoError(t, v.Save(ctx, cred))

	out := buf.String()
	assert.Contains(t, out, "credential stored")
	assert.Contains(t, out, "api_key=***")
	assert.Contains(t, out, "email=***")
	assert.NotContains(t, out, "cf-secret")
	assert.NotContains(t, out, "ops@example.com")
}

func TestVault_NonceChangesOnWrite(t *testing.T) {
	ctx := context.Background()
	v, path := newInitialized(t)

	before, err := v.store.Load()
	require.NoError(t, err)

	cred, err := entity.NewCredential(entity.ProviderRainyun, map[string]string{"api_key": "k"})
	require.NoError(t, err)
	require.NoError(t, v.Save(ctx, cred))

	after, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.NotEqual(t, before.NonceB64, after.NonceB64)
	assert.Equal(t, before.KDFSaltB64, after.KDFSaltB64)
	assert.Equal(t, before.KeyCheckB64, after.KeyCheckB64)
}

func TestVault_WrongPassword(t *testing.T) {
	ctx := context.Background()
	_, path := newInitialized(t)

	v := New(path, fixed("not the password"))
	err := v.Unlock(ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidMaster)

	cred, err := entity.NewCredential(entity.ProviderRainyun, map[string]string{"api_key": "k"})
	require.NoError(t, err)
	assert.ErrorIs(t, v.Save(ctx, cred), domain.ErrInvalidMaster)

	assert.ErrorIs(t, New(path, nil).Unlock(ctx), domain.ErrInvalidMaster)
	assert.NoError(t, New(path, fixed(testPassword)).Unlock(ctx))
}

func TestVault_TamperedCiphertext(t *testing.T) {
	ctx := context.Background()
	v, path := newInitialized(t)

	require.NoError(t, v.store.Update(func(f *File) (*File, error) {
		f.CiphertextB64 = "AAAAAAAAAAAAAAAAAAAAAAAAAAAA"
		return f, nil
	}))

	err := New(path, fixed(testPassword)).Unlock(ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidMaster)
}

func TestVault_PasswordCachedAfterUnlock(t *testing.T) {
	ctx := context.Background()
	_, path := newInitialized(t)

	calls := 0
	v := New(path, func() (string, error) {
		calls++
		return testPassword, nil
	})
	require.NoError(t, v.Unlock(ctx))
	_, err := v.Statuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestVault_ClearAndStatuses(t *testing.T) {
	ctx := context.Background()
	v, _ := newInitialized(t)

	for p, fields := range map[entity.Provider]map[string]string{
		entity.ProviderDNSPod:  {"token_id": "1", "token": "t"},
		entity.ProviderRainyun: {"api_key": "k"},
	} {
		cred, err := entity.NewCredential(p, fields)
		require.NoError(t, err)
		require.NoError(t, v.Save(ctx, cred))
	}
	require.NoError(t, v.Clear(ctx, entity.ProviderDNSPod))

	statuses, err := v.Statuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, len(entity.AllProviders()))

	configured := map[entity.Provider]bool{}
	for _, st := range statuses {
		configured[st.Provider] = st.Configured
	}
	assert.False(t, configured[entity.ProviderDNSPod])
	assert.True(t, configured[entity.ProviderRainyun])

	st, err := v.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.Configured[entity.ProviderDNSPod])
	assert.True(t, st.Configured[entity.ProviderRainyun])
}

func TestVault_MarkVerified(t *testing.T) {
	ctx := context.Background()
	v, _ := newInitialized(t)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("CST", 8*3600))

	err := v.MarkVerified(ctx, entity.ProviderHuawei, at)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	cred, err := entity.NewCredential(entity.ProviderHuawei, map[string]string{"token": "t"})
	require.NoError(t, err)
	require.NoError(t, v.Save(ctx, cred))
	require.NoError(t, v.MarkVerified(ctx, entity.ProviderHuawei, at))

	got, err := v.Credential(ctx, entity.ProviderHuawei)
	require.NoError(t, err)
	require.NotNil(t, got.LastVerifiedAt)
	assert.True(t, at.Equal(*got.LastVerifiedAt))
	assert.Equal(t, time.UTC, got.LastVerifiedAt.Location())
}

func TestVault_SaveRejectsInvalidCredential(t *testing.T) {
	v, _ := newInitialized(t)
	err := v.Save(context.Background(), &entity.Credential{Provider: entity.ProviderBaidu, Fields: map[string]string{"access_key_id": "ak"}})
	assert.ErrorIs(t, err, domain.ErrMissingField)
}

func TestFileStore_UnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"version":2}`), 0o600))

	_, err := NewFileStore(path).Load()
	assert.Equal(t, domain.CodeUnsupportedVersion, domain.CodeOf(err))
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := NewFileStore(path).Load()
	assert.Equal(t, domain.CodeParseError, domain.CodeOf(err))
}

func TestFileStore_UpdateNilSkipsWrite(t *testing.T) {
	v, path := newInitialized(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, v.store.Update(func(*File) (*File, error) { return nil, nil }))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
