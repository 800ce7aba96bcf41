package reminder

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"os"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"sharebin/internal/domain"
)

const previewUserAgent = "Mozilla/5.0 (compatible; sharebin/1.0)"

// loadPreview resolves the item's visual for the notification: its first
// image ref, or the link's thumbnail URL. Best-effort with a bounded timeout;
// any failure means no preview.
func (m *Manager) loadPreview(ctx context.Context, item domain.Item) image.Image {
	src := ""
	remote := false
	switch {
	case len(item.ImageRefs) > 0:
		src = item.ImageRefs[0]
	case item.ThumbnailURL != "":
		src = item.ThumbnailURL
		remote = true
	default:
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.previewTimeout)
	defer cancel()

	var (
		img image.Image
		err error
	)
	if remote {
		img, err = fetchImage(ctx, src)
	} else {
		img, err = readImage(src)
	}
	if err != nil {
		m.log.WithError(err).WithField("src", src).Warn("Preview load failed")
		return nil
	}
	return downscale(img, m.previewEdge)
}

func readImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

func fetchImage(ctx context.Context, imgURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", imgURL, err)
	}
	req.Header.Set("User-Agent", previewUserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", imgURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, imgURL)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", imgURL, err)
	}
	return img, nil
}

// downscale shrinks the image so its long edge is at most maxEdge, keeping
// the aspect ratio. Images already within bounds pass through unchanged; it
// never upscales.
func downscale(img image.Image, maxEdge int) image.Image {
	if img == nil || maxEdge <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	long := w
	if h > w {
		long = h
	}
	if long <= maxEdge {
		return img
	}

	scale := float64(maxEdge) / float64(long)
	dw := int(float64(w)*scale + 0.5)
	dh := int(float64(h)*scale + 0.5)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// previewTimeoutDefault bounds how long a fire handler waits on a preview.
const previewTimeoutDefault = 5 * time.Second
