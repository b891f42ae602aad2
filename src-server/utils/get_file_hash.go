package utils

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
)

// Fetch a URL and hash its content. Used to detect whether a remote
// calendar changed without parsing it.
func GetFileHash(url string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("GetFileHash: %w", err)
	}
	defer resp.Body.Close()

	h := sha256.New()
	if _, err := io.Copy(h, resp.Body); err != nil {
		return "", fmt.Errorf("GetFileHash: %w", err)
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
