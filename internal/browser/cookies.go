// SPDX-License-Identifier: AGPL-3.0-only
package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chromedp/cdproto/network"
)

// SaveCookies snapshots a session's cookies for a handle. Files are
// owner-only; the scraper reuses them across requests so the profile
// pages render without the login interstitial.
func SaveCookies(dir, handle string, cookies []*network.Cookie) error {
	safe, err := SanitizeHandle(handle)
	if err != nil {
		return fmt.Errorf("invalid handle: %w", err)
	}

	data, err := json.Marshal(cookies)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("x_%s.json", safe))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	return os.Chmod(path, 0600)
}

func LoadCookies(dir, handle string) ([]*network.Cookie, error) {
	safe, err := SanitizeHandle(handle)
	if err != nil {
		return nil, fmt.Errorf("invalid handle: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("x_%s.json", safe))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cookies []*network.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, err
	}
	return cookies, nil
}

// SanitizeHandle rejects handles that could escape the cookies
// directory or break a URL path.
func SanitizeHandle(handle string) (string, error) {
	if handle == "" {
		return "", fmt.Errorf("handle cannot be empty")
	}
	if strings.ContainsAny(handle, `/\`) {
		return "", fmt.Errorf("handle contains invalid characters")
	}
	if strings.Contains(handle, "..") {
		return "", fmt.Errorf("handle contains directory traversal sequence")
	}
	if handle == "." {
		return "", fmt.Errorf("handle cannot be .")
	}
	for _, r := range handle {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '.' || r == '-') {
			return "", fmt.Errorf("handle contains invalid characters")
		}
	}
	return handle, nil
}
