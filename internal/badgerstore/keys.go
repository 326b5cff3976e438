package badgerstore

import (
	"bytes"
	"strings"

	"github.com/persistorai/pathfinder/internal/models"
)

// Key prefixes. Every key is prefix + components joined by 0x00.
const (
	prefixDocument  byte = 'd'
	prefixReference byte = 'r'
)

const sep = 0x00

// docKey creates a key for storing a document.
// Format: 'd' + 0x00 + collection + 0x00 + id
func docKey(collection string, id models.NodeKey) []byte {
	key := make([]byte, 0, 3+len(collection)+len(id))
	key = append(key, prefixDocument, sep)
	key = append(key, collection...)
	key = append(key, sep)
	key = append(key, id...)

	return key
}

// docPrefix returns the prefix for scanning a collection.
func docPrefix(collection string) []byte {
	key := make([]byte, 0, 3+len(collection))
	key = append(key, prefixDocument, sep)
	key = append(key, collection...)

	return append(key, sep)
}

// refKey creates an incoming reference index key: document id holds target
// at path.
// Format: 'r' + 0x00 + collection + 0x00 + path + 0x00 + target + 0x00 + id
func refKey(collection, path string, target, id models.NodeKey) []byte {
	key := refPrefix(collection, path, target)

	return append(key, id...)
}

// refPrefix returns the prefix for scanning references to target at path.
func refPrefix(collection, path string, target models.NodeKey) []byte {
	key := make([]byte, 0, 6+len(collection)+len(path)+len(target))
	key = append(key, prefixReference, sep)
	key = append(key, collection...)
	key = append(key, sep)
	key = append(key, path...)
	key = append(key, sep)
	key = append(key, target...)

	return append(key, sep)
}

// idFromKey extracts the trailing id from a document or reference key.
func idFromKey(key []byte) models.NodeKey {
	i := bytes.LastIndexByte(key, sep)

	return models.NodeKey(key[i+1:])
}

func safeComponent(s string) bool {
	return !strings.ContainsRune(s, sep)
}
