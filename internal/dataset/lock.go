package dataset

import (
	"fmt"
	"os"
	"path/filepath"
)

// lockFileName is the advisory lock file enforcing spec.md section 3's "no
// two commands may operate on the same dataset concurrently" invariant.
// Grounded on the guard/lock pattern in frnd1406-NasServer's operations
// services, simplified to a single O_EXCL create since the core contract
// only needs single-writer exclusion for the lifetime of one CLI command.
const lockFileName = ".lock"

// acquireLock creates dir/.lock exclusively. The returned release function
// removes it; callers should defer release() immediately after a successful
// acquireLock.
func acquireLock(dir string) (release func(), err error) {
	path := filepath.Join(dir, lockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("dataset: %s is locked by another command", dir)
		}
		return nil, fmt.Errorf("dataset: acquire lock: %w", err)
	}
	f.Close()

	return func() {
		os.Remove(path)
	}, nil
}
