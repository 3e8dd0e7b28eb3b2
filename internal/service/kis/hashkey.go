package kis

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hashkey computes the tamper-check digest the brokerage requires on
// mutating calls: the hex SHA-256 of the compact JSON serialization of
// the request body.
func Hashkey(body any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("hashkey marshal: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
