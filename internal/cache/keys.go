package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

type KeyGenerator struct {
	Prefix string
}

// NewKeyGenerator creates a new key generator with the given prefix
func NewKeyGenerator(prefix string) *KeyGenerator {
	if prefix == "" {
		prefix = "sliceql"
	}
	return &KeyGenerator{Prefix: prefix}
}

// ReportKey builds the cache key for a compiled report.
func (kg *KeyGenerator) ReportKey(hash string) string {
	return fmt.Sprintf("%s:report:%s", kg.Prefix, hash)
}

// HashDefinition produces a deterministic content hash for a report
// definition, suitable for ReportKey. JSON marshaling keeps the hash
// stable across runs for the same definition.
func (kg *KeyGenerator) HashDefinition(def interface{}) string {
	jsonBytes, err := json.Marshal(def)
	if err != nil {
		// Fallback to string representation if JSON fails
		jsonBytes = []byte(fmt.Sprintf("%+v", def))
	}
	hash := md5.Sum(jsonBytes)
	return hex.EncodeToString(hash[:8])
}

// ShortHash hashes arbitrary text into a short readable key segment.
func (kg *KeyGenerator) ShortHash(data string) string {
	hash := md5.Sum([]byte(data))
	return hex.EncodeToString(hash[:8])
}

// ValidateKey checks if a key follows the expected format
func (kg *KeyGenerator) ValidateKey(key string) bool {
	return strings.HasPrefix(key, kg.Prefix+":")
}
