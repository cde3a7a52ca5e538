package app

import (
	"fmt"
	"os"
)

const outputFileMode = 0o644

// writeFile writes rendered output to a path.
func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, outputFileMode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
