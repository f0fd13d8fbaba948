package storage

import (
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// keySuffixAlphabet is the alphabet for the random component of object keys.
const keySuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateObjectKey builds a collision-resistant object key:
// prefix/timestamp-random-sanitizedFilename.
func GenerateObjectKey(filename, prefix string) string {
	if prefix == "" {
		prefix = AudioKeyPrefix
	}
	random, err := gonanoid.Generate(keySuffixAlphabet, 6)
	if err != nil {
		// Entropy exhaustion is effectively unreachable; the timestamp
		// still keeps keys unique enough to not clobber uploads.
		random = "000000"
	}
	return fmt.Sprintf("%s/%d-%s-%s", prefix, time.Now().UnixMilli(), random, SanitizeFilename(filename))
}

// SanitizeFilename replaces any character outside [a-zA-Z0-9.-] with an underscore.
func SanitizeFilename(filename string) string {
	var b strings.Builder
	b.Grow(len(filename))
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// VariantKey derives the object key for a generated image variant from
// the original's key, e.g. "covers/123-abc-x.png" + "thumbnail" gives
// "covers/123-abc-x-thumbnail.jpg". Variants are always encoded as JPEG.
func VariantKey(baseKey, variant string) string {
	dir := ""
	name := baseKey
	if i := strings.LastIndex(baseKey, "/"); i >= 0 {
		dir = baseKey[:i+1]
		name = baseKey[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return dir + name + "-" + variant + ".jpg"
}
