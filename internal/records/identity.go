package records

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Identity modes.
const (
	ModeContent = "content"
	ModeName    = "name"
)

// IdentityFor derives the record identity of the image at path. Content mode
// hashes the file so renamed copies share an identity; name mode uses the
// base name.
func IdentityFor(path, mode string) (string, error) {
	switch mode {
	case ModeName:
		return "name:" + filepath.Base(path), nil
	case ModeContent, "":
		file, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", path, err)
		}
		defer file.Close()
		hash := sha256.New()
		if _, err := io.Copy(hash, file); err != nil {
			return "", fmt.Errorf("hash %s: %w", path, err)
		}
		return "sha256:" + hex.EncodeToString(hash.Sum(nil)), nil
	default:
		return "", fmt.Errorf("unknown identity mode %q", mode)
	}
}
