package repository

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFileLock_AcquireRelease(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "heygpt-lock-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	lockPath := filepath.Join(tempDir, "convo.lock")
	lock := NewFileLock(lockPath, "test")

	require.NoError(t, lock.Acquire())

	data, err := os.ReadFile(lockPath)
	require.NoError(t, err)
	var info LockInfo
	require.NoError(t, yaml.Unmarshal(data, &info))
	assert.Equal(t, os.Getpid(), info.PID)
	assert.Equal(t, "test", info.Owner)

	require.NoError(t, lock.Release())
	data, err = os.ReadFile(lockPath)
	require.NoError(t, err, "lock file stays in place after release")
	assert.Empty(t, data)

	// Releasing twice is a no-op.
	assert.NoError(t, lock.Release())
}

func TestFileLock_MultipleAcquire(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "heygpt-lock-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	lockPath := filepath.Join(tempDir, "convo.lock")
	lock1 := NewFileLock(lockPath, "first")
	lock2 := NewFileLock(lockPath, "second")

	require.NoError(t, lock1.Acquire())
	defer lock1.Release()

	err = lock2.Acquire()
	require.Error(t, err)

	var lockErr *LockError
	require.ErrorAs(t, err, &lockErr)
	require.NotNil(t, lockErr.Holder)
	assert.Equal(t, "first", lockErr.Holder.Owner)
	assert.Contains(t, err.Error(), "locked by first")
}

func TestFileLock_ReleaseThenContend(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "convo.lock")

	first := NewFileLock(lockPath, "first")
	require.NoError(t, first.Acquire())

	// A process that opened the lock file while it was held.
	waiting, err := os.OpenFile(lockPath, os.O_RDWR, 0o644)
	require.NoError(t, err)
	defer waiting.Close()

	require.NoError(t, first.Release())
	require.NoError(t, syscall.Flock(int(waiting.Fd()), syscall.LOCK_EX|syscall.LOCK_NB))
	defer func() { _ = syscall.Flock(int(waiting.Fd()), syscall.LOCK_UN) }()

	late := NewFileLock(lockPath, "late")
	err = late.Acquire()
	var lockErr *LockError
	require.ErrorAs(t, err, &lockErr, "only one holder may own the lock")
}

func TestFileLock_OldHolderIsNotTakenOver(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "convo.lock")
	holder := NewFileLock(lockPath, "holder")
	require.NoError(t, holder.Acquire())
	defer holder.Release()

	old, err := yaml.Marshal(LockInfo{
		PID:       os.Getpid(),
		Owner:     "holder",
		Timestamp: time.Now().Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(lockPath, old, 0o644))

	err = NewFileLock(lockPath, "other").Acquire()
	var lockErr *LockError
	require.ErrorAs(t, err, &lockErr)
	require.NotNil(t, lockErr.Holder)
	assert.Equal(t, "holder", lockErr.Holder.Owner)
}
