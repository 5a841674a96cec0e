package lockfile

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.lock")

	lock, err := Acquire(path)
	assert.NoError(t, err)
	assert.NotNil(t, lock)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	assert.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	lock.Release()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAcquireFailsWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.lock")

	lock, err := Acquire(path)
	assert.NoError(t, err)
	defer lock.Release()

	_, err = Acquire(path)
	assert.ErrorContains(t, err, "another instance is running")
}

func TestReleaseAllowsReacquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.lock")

	lock, err := Acquire(path)
	assert.NoError(t, err)
	lock.Release()

	again, err := Acquire(path)
	assert.NoError(t, err)
	again.Release()
}
