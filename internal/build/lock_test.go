package build

import (
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLock = "/run/user/1000/blackmagic/blackmagic.lock"

func TestAcquireLock(t *testing.T) {
	fsys := afero.NewMemMapFs()

	lock, err := AcquireLock(fsys, testLock)
	require.NoError(t, err)

	data, err := afero.ReadFile(fsys, testLock)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))

	require.NoError(t, lock.Release())
	exists, err := afero.Exists(fsys, testLock)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAcquireLockHeld(t *testing.T) {
	fsys := afero.NewMemMapFs()

	first, err := AcquireLock(fsys, testLock)
	require.NoError(t, err)

	_, err = AcquireLock(fsys, testLock)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocked)
	assert.Equal(t, KindEnvironment, KindOf(err))
	assert.Contains(t, err.Error(), testLock)

	require.NoError(t, first.Release())

	second, err := AcquireLock(fsys, testLock)
	require.NoError(t, err)
	require.NoError(t, second.Release())
}

func TestReleaseMissingLock(t *testing.T) {
	fsys := afero.NewMemMapFs()

	lock, err := AcquireLock(fsys, testLock)
	require.NoError(t, err)
	require.NoError(t, fsys.Remove(testLock))

	assert.Error(t, lock.Release())
}
