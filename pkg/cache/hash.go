package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Fingerprint hashes the absolute path, size and modification time of every
// path. An empty path contributes nothing, so optional inputs can be passed
// as they are.
func Fingerprint(paths ...string) (string, error) {
	type stamp struct {
		Path    string
		Size    int64
		ModTime int64
	}
	var stamps []stamp
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", err
		}
		stamps = append(stamps, stamp{abs, info.Size(), info.ModTime().UnixNano()})
	}
	data, _ := json.Marshal(stamps)
	return Hash(data), nil
}
