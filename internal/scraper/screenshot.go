// SPDX-License-Identifier: AGPL-3.0-only
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gen2brain/webp"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	captureAttempts = 3
	captureBackoff  = 250 * time.Millisecond
	maxCaptureWidth = 1200
)

// Capturer turns item fragments into WebP artifacts on disk. Capture is
// best-effort: every failure is swallowed and logged, and after the
// retry budget runs out the item goes through with an empty reference.
type Capturer struct {
	dir     string
	handle  string
	timeout time.Duration
}

func NewCapturer(dir, handle string, timeout time.Duration) *Capturer {
	return &Capturer{dir: dir, handle: handle, timeout: timeout}
}

// Capture retries up to three attempts with a short linear backoff and
// returns the artifact path, or "" once the attempts are exhausted.
func (c *Capturer) Capture(ctx context.Context, view FeedView, kind FeedKind, f Fragment, identity string) string {
	for attempt := 1; attempt <= captureAttempts; attempt++ {
		png, err := view.Capture(ctx, f, c.timeout)
		if err != nil {
			log.Printf("Capture: attempt %d/%d for %s failed: %v", attempt, captureAttempts, identity, err)
			if attempt < captureAttempts {
				time.Sleep(time.Duration(attempt) * captureBackoff)
			}
			continue
		}

		path, err := c.writeWebP(kind, identity, png)
		if err != nil {
			log.Printf("Capture: writing artifact for %s failed: %v", identity, err)
			if attempt < captureAttempts {
				time.Sleep(time.Duration(attempt) * captureBackoff)
			}
			continue
		}
		return path
	}
	return ""
}

// writeWebP re-encodes the CDP screenshot, downscaling oversized
// captures first. The file lands under its final name only after a
// complete write, via rename.
func (c *Capturer) writeWebP(kind FeedKind, identity string, pngData []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(pngData))
	if err != nil {
		return "", fmt.Errorf("decoding screenshot: %w", err)
	}

	if w := img.Bounds().Dx(); w > maxCaptureWidth {
		h := img.Bounds().Dy() * maxCaptureWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxCaptureWidth, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, webp.Options{Lossless: false, Quality: 85}); err != nil {
		return "", fmt.Errorf("encoding webp: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s_%s.webp", c.handle, kind, safeFileComponent(identity), uuid.NewString()[:8])
	final := filepath.Join(c.dir, name)

	tmp, err := os.CreateTemp(c.dir, ".capture-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return final, nil
}

func safeFileComponent(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	if b.Len() > 40 {
		return b.String()[:40]
	}
	return b.String()
}
