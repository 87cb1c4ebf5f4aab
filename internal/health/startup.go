// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ManuGH/scenecue/internal/log"
)

// PrepareDirs creates each directory if missing and verifies it is writable.
// It runs before any listener starts.
func PrepareDirs(dirs ...string) error {
	logger := log.WithComponent("startup-check")
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := checkWritableDir(dir); err != nil {
			return err
		}
		logger.Debug().Str(log.FieldPath, dir).Msg("directory ready")
	}
	return nil
}

func checkWritableDir(path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	testFile := filepath.Join(path, ".write_test-"+uuid.NewString())
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("directory is not writable: %s: %w", path, err)
	}
	_ = os.Remove(testFile)
	return nil
}
