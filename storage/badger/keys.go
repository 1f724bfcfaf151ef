package badger

import "strings"

const (
	recordPrefix = "repo:"
)

// makeRecordKey generates the key for a record by identity key.
// Format: repo:platform:full_name
func makeRecordKey(id string) []byte {
	buf := make([]byte, len(recordPrefix)+len(id))
	offset := copy(buf, recordPrefix)
	copy(buf[offset:], id)
	return buf
}

// recordIDFromKey strips the record prefix.
func recordIDFromKey(key []byte) string {
	return strings.TrimPrefix(string(key), recordPrefix)
}
