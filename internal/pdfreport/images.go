package pdfreport

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

const (
	thumbMaxPx   = 360
	jpegQuality  = 80
	decodeWorker = 4
)

// thumb is a photo ready to embed: re-encoded as JPEG at thumbnail size.
type thumb struct {
	data []byte
	w, h int
}

// decodePayload strips an optional data-URI prefix and base64-decodes the rest.
func decodePayload(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty image payload")
	}
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, errors.New("malformed data uri")
		}
		if !strings.Contains(s[:i], ";base64") {
			return nil, errors.New("data uri is not base64")
		}
		s = s[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return raw, nil
}

// makeThumb decodes any registered format, flattens alpha onto white,
// downscales to thumbMaxPx on the long side and encodes as JPEG.
func makeThumb(payload string) (*thumb, error) {
	raw, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return nil, errors.New("empty image")
	}

	w, h := sb.Dx(), sb.Dy()
	if w > thumbMaxPx || h > thumbMaxPx {
		if w >= h {
			h = max(1, h*thumbMaxPx/w)
			w = thumbMaxPx
		} else {
			w = max(1, w*thumbMaxPx/h)
			h = thumbMaxPx
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return &thumb{data: buf.Bytes(), w: w, h: h}, nil
}

type photoRef struct {
	report int
	slot   int
}

// prepareThumbs decodes the first grid photos of every report in parallel.
// A bad image leaves a nil slot and is counted; only cancellation fails the
// whole batch.
func prepareThumbs(ctx context.Context, log zerolog.Logger, set []reportPhotos) (map[photoRef]*thumb, int, error) {
	var (
		mu      sync.Mutex
		skipped int
	)
	out := map[photoRef]*thumb{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(decodeWorker)
	for i, rp := range set {
		for j, payload := range rp.photos {
			if j >= maxGridPhotos {
				break
			}
			ref, payload, id := photoRef{report: i, slot: j}, payload, rp.id
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				t, err := makeThumb(payload)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					skipped++
					log.Warn().Err(err).Str("report_id", id).Int("photo", ref.slot+1).Msg("skipping unreadable photo")
					return nil
				}
				out[ref] = t
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return out, skipped, nil
}

type reportPhotos struct {
	id     string
	photos []string
}
