package server

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"sync"

	"vision_backend/sdruntime"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
)

// previewMaxDim is the longest edge of the served thumbnail.
const previewMaxDim = 128

// previewState holds the thumbnail of the most recent successful
// generation. Only the downscaled PNG lives here; the full-size image is
// discarded after the response is sent, and nothing touches disk.
type previewState struct {
	mu   sync.RWMutex
	data []byte
}

func (p *previewState) set(data []byte) {
	p.mu.Lock()
	p.data = data
	p.mu.Unlock()
}

func (p *previewState) get() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data
}

// storePreview downscales the latest result into the in-memory preview.
// Failures are logged and ignored: the preview is cosmetic.
func (s *Server) storePreview(result *sdruntime.GenerateResult) {
	thumb, err := makeThumbnail(result.ImageData, previewMaxDim)
	if err != nil {
		s.logger.Warn("Failed to build preview thumbnail", zap.Error(err))
		return
	}
	s.preview.set(thumb)
}

// makeThumbnail decodes a PNG and rescales it so its longest edge is at
// most maxDim pixels, preserving aspect ratio. Images already small
// enough are re-encoded unchanged.
func makeThumbnail(pngData []byte, maxDim int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxDim || h > maxDim {
		if w >= h {
			h = h * maxDim / w
			w = maxDim
		} else {
			w = w * maxDim / h
			h = maxDim
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// handleAPIPreview serves the thumbnail of the last successful
// generation, or 404 when nothing has been generated yet.
func (s *Server) handleAPIPreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	data := s.preview.get()
	if len(data) == 0 {
		s.writeDetail(w, http.StatusNotFound, "no generation yet")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
