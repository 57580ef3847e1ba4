package repository

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// NewAPIKey hashes a user's attributes with a nanosecond timestamp and a random
// nonce. The result is unguessable in practice; uniqueness is backed by storage.
func NewAPIKey(attrs Attributes) (string, error) {
	seed, err := json.Marshal(attrs)
	if err != nil {
		return "", err
	}
	seed = strconv.AppendInt(seed, time.Now().UnixNano(), 10)
	seed = append(seed, uuid.NewString()...)
	sum := blake2b.Sum256(seed)
	return hex.EncodeToString(sum[:]), nil
}
