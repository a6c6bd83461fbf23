package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// EncodeRecord returns the staged JSON payload of a record and its
// content hash. Equal payloads hash equally, which is what lets staging
// writers skip unchanged records.
func EncodeRecord(r Record) (payload []byte, hash string, err error) {
	payload, err = json.Marshal(r)
	if err != nil {
		return nil, "", fmt.Errorf("encode %s %s: %w", r.Entity(), r.Key(), err)
	}
	sum := sha256.Sum256(payload)
	return payload, hex.EncodeToString(sum[:]), nil
}
