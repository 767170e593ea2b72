package repository

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"
)

// LockInfo is the metadata written into a held lock file.
type LockInfo struct {
	PID       int       `yaml:"pid"`
	Hostname  string    `yaml:"hostname"`
	Owner     string    `yaml:"owner"`
	Timestamp time.Time `yaml:"timestamp"`
}

// LockError reports a lock held by another live process.
type LockError struct {
	Path   string
	Holder *LockInfo
	Err    error
}

func (e *LockError) Error() string {
	if e.Holder != nil {
		age := time.Since(e.Holder.Timestamp).Round(time.Second)
		return fmt.Sprintf("%s is locked by %s (PID %d, %v ago)", e.Path, e.Holder.Owner, e.Holder.PID, age)
	}
	return fmt.Sprintf("failed to acquire lock %s: %v", e.Path, e.Err)
}

func (e *LockError) Unwrap() error {
	return e.Err
}

// FileLock is an advisory flock held on a sidecar file.
type FileLock struct {
	path  string
	owner string
	file  *os.File
}

// NewFileLock creates a lock at path. owner is recorded in the lock metadata.
func NewFileLock(path, owner string) *FileLock {
	return &FileLock{path: path, owner: owner}
}

// Acquire takes the lock without blocking. The lock file is never removed,
// so every process contends on the same inode. A held lock is reported with
// the holder's metadata.
func (l *FileLock) Acquire() error {
	if l.file != nil {
		return nil
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		if holder, readErr := l.readLockFile(); readErr == nil {
			return &LockError{Path: l.path, Holder: holder, Err: err}
		}
		return &LockError{Path: l.path, Err: err}
	}

	l.file = file

	hostname, _ := os.Hostname()
	data, err := yaml.Marshal(LockInfo{
		PID:       os.Getpid(),
		Hostname:  hostname,
		Owner:     l.owner,
		Timestamp: time.Now(),
	})
	if err != nil {
		return errors.Join(fmt.Errorf("encode lock metadata: %w", err), l.Release())
	}
	if err := file.Truncate(0); err != nil {
		return errors.Join(fmt.Errorf("truncate lock file: %w", err), l.Release())
	}
	if _, err := file.WriteAt(data, 0); err != nil {
		return errors.Join(fmt.Errorf("write lock metadata: %w", err), l.Release())
	}
	return nil
}

// Release clears the metadata and unlocks. The file stays in place.
func (l *FileLock) Release() error {
	if l.file == nil {
		return nil
	}
	file := l.file
	l.file = nil

	truncErr := file.Truncate(0)
	unlockErr := syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
	closeErr := file.Close()
	return errors.Join(truncErr, unlockErr, closeErr)
}

func (l *FileLock) readLockFile() (*LockInfo, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}
	var info LockInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	if info.PID == 0 {
		return nil, errors.New("lock file has no owner")
	}
	return &info, nil
}
