package util

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/arzfeed/pricegate-api/internal/domain/apikey"
)

func generateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func generateRandomString(length int) (string, error) {
	byteLength := (length*3 + 3) / 4
	b, err := generateRandomBytes(byteLength)
	if err != nil {
		return "", err
	}

	str := base64.URLEncoding.EncodeToString(b)
	str = strings.ReplaceAll(str, "-", "")
	str = strings.ReplaceAll(str, "_", "")
	if len(str) > length {
		return str[:length], nil
	}

	return str, nil
}

// GenerateAPIKey mints a fresh key of the form pg_<prefix>_<secret>. The
// secret carries well over 128 bits of entropy; the hash mixes in the
// server-side pepper so a leaked database alone cannot validate keys.
func GenerateAPIKey(pepper string) (fullKey, prefix, last4, keyHash string, err error) {
	prefix, err = generateRandomString(apikey.KeyPrefixLength)
	if err != nil {
		return "", "", "", "", fmt.Errorf("failed to generate prefix: %w", err)
	}

	secret, err := generateRandomString(apikey.KeySecretLength)
	if err != nil {
		return "", "", "", "", fmt.Errorf("failed to generate secret: %w", err)
	}

	fullKey = fmt.Sprintf(apikey.KeyFormat, prefix, secret)
	last4 = secret[len(secret)-4:]
	keyHash = HashAPIKey(pepper, fullKey)

	return fullKey, prefix, last4, keyHash, nil
}

func HashAPIKey(pepper, fullKey string) string {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(fullKey))
	return fmt.Sprintf("%x", mac.Sum(nil))
}

// SplitAPIKey extracts the lookup prefix from a presented key. It rejects
// anything not shaped like pg_<prefix>_<secret>.
func SplitAPIKey(fullKey string) (prefix string, ok bool) {
	parts := strings.SplitN(fullKey, "_", 3)
	if len(parts) < 3 || parts[0] != apikey.KeyFormatTag || parts[1] == "" || parts[2] == "" {
		return "", false
	}
	return parts[1], true
}
