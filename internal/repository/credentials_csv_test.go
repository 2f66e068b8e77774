package repository

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStorePath = "data/users.csv"

func newTestStore(t *testing.T) (*CredentialsCSV, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewCredentialsCSV(fs, testStorePath, nil), fs
}

func readStore(t *testing.T, fs afero.Fs) string {
	t.Helper()
	b, err := afero.ReadFile(fs, testStorePath)
	require.NoError(t, err)
	return string(b)
}

func TestCredentialsCSV_EnsureInitialized(t *testing.T) {
	t.Run("missing file gets header", func(t *testing.T) {
		store, fs := newTestStore(t)
		require.NoError(t, store.EnsureInitialized())
		assert.Equal(t, "username,password,email\n", readStore(t, fs))
	})

	t.Run("empty file gets header", func(t *testing.T) {
		store, fs := newTestStore(t)
		require.NoError(t, afero.WriteFile(fs, testStorePath, nil, 0o600))
		require.NoError(t, store.EnsureInitialized())
		assert.Equal(t, "username,password,email\n", readStore(t, fs))
	})

	t.Run("existing rows untouched", func(t *testing.T) {
		store, fs := newTestStore(t)
		body := "username,password,email\nasha,abc,a@x.in\n"
		require.NoError(t, afero.WriteFile(fs, testStorePath, []byte(body), 0o600))
		require.NoError(t, store.EnsureInitialized())
		assert.Equal(t, body, readStore(t, fs))
	})
}

func TestCredentialsCSV_RegisterThenVerify(t *testing.T) {
	store, fs := newTestStore(t)

	ok, err := store.Register("Asha", "s3cret", "asha@example.in")
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, store.Verify("Asha", "s3cret"))
	assert.True(t, store.Verify("asha", "s3cret"), "username is case-insensitive")
	assert.True(t, store.Verify("ASHA", "s3cret"))
	assert.False(t, store.Verify("Asha", "s3cretx"))
	assert.False(t, store.Verify("Asha", "S3CRET"))
	assert.False(t, store.Verify("ravi", "s3cret"))

	content := readStore(t, fs)
	assert.NotContains(t, content, "s3cret", "plaintext must never be stored")
	assert.Contains(t, content, sha256Hex("s3cret"))
}

func TestCredentialsCSV_DuplicateUsernameAnyCase(t *testing.T) {
	store, fs := newTestStore(t)

	ok, err := store.Register("ravi", "p1", "r@x.in")
	require.NoError(t, err)
	require.True(t, ok)

	for _, name := range []string{"ravi", "RAVI", "Ravi"} {
		ok, err = store.Register(name, "p2", "other@x.in")
		require.NoError(t, err)
		assert.False(t, ok, "register %q should fail", name)
	}

	assert.True(t, store.Verify("ravi", "p1"))
	assert.False(t, store.Verify("ravi", "p2"))
	assert.Equal(t, 2, strings.Count(readStore(t, fs), "\n"))
}

func TestCredentialsCSV_VerifyEmptyOrMissingStore(t *testing.T) {
	store, fs := newTestStore(t)
	assert.False(t, store.Verify("anyone", "anything"))

	require.NoError(t, afero.WriteFile(fs, testStorePath, nil, 0o600))
	assert.False(t, store.Verify("anyone", "anything"))

	require.NoError(t, store.EnsureInitialized())
	assert.False(t, store.Verify("anyone", "anything"))
	assert.False(t, store.Verify("", ""))
}

func TestCredentialsCSV_MalformedStoreFailsClosed(t *testing.T) {
	cases := map[string]string{
		"wrong header":     "user,pass\nasha,abc\n",
		"short row":        "username,password,email\nasha,abc\n",
		"unbalanced quote": "username,password,email\n\"asha,abc,x\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			store, fs := newTestStore(t)
			require.NoError(t, afero.WriteFile(fs, testStorePath, []byte(body), 0o600))

			assert.False(t, store.Verify("asha", "abc"))

			ok, err := store.Register("new", "pw", "n@x.in")
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrCorruptStore)
			assert.Equal(t, body, readStore(t, fs), "corrupt store must not be overwritten")
		})
	}
}

func TestCredentialsCSV_ReadsFilesWrittenByOtherTools(t *testing.T) {
	store, fs := newTestStore(t)
	body := "username,password,email\nmeena," + strings.ToUpper(sha256Hex("pw")) + ",m@x.in\n"
	require.NoError(t, afero.WriteFile(fs, testStorePath, []byte(body), 0o600))

	assert.True(t, store.Verify("Meena", "pw"))
}

func TestCredentialsCSV_SHA3Digest(t *testing.T) {
	digest, err := NewDigest(DigestSHA3256)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	store := NewCredentialsCSV(fs, testStorePath, digest)
	ok, err := store.Register("u", "pw", "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, store.Verify("u", "pw"))

	// a sha256 store cannot verify sha3 rows
	other := NewCredentialsCSV(fs, testStorePath, nil)
	assert.False(t, other.Verify("u", "pw"))
}

func TestCredentialsCSV_ConcurrentRegistrationsSerialized(t *testing.T) {
	store, _ := newTestStore(t)

	const n = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// half the goroutines race on the same name
			name := fmt.Sprintf("user%d", i)
			if i%2 == 0 {
				name = "shared"
			}
			ok, err := store.Register(name, "pw", "")
			if err != nil {
				t.Errorf("register: %v", err)
				return
			}
			if ok {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n/2+1, success)
}
