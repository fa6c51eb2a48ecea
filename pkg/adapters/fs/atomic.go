package fs

import (
	"bytes"
	"fmt"

	"github.com/natefinch/atomic"
)

// writeFileAtomic writes data to filename through a temp file in the same
// directory followed by a rename, so readers never observe a partial document.
func writeFileAtomic(filename string, data []byte) error {
	if err := atomic.WriteFile(filename, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("atomic write %s: %w", filename, err)
	}
	return nil
}
