package asset

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/gorilla/mux"

	"github.com/inamate/artboard/internal/typeid"
)

const maxUploadSize = 10 << 20 // 10MB

var (
	// ErrNotFound is returned by Delete when no file exists for the asset.
	ErrNotFound  = errors.New("asset not found")
	ErrInvalidID = errors.New("invalid asset id")
)

// UploadResponse is returned from the upload endpoint. Width and height are the
// original pixel size, which image layers use for cover and contain placement.
type UploadResponse struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Format       string `json:"format"`
	Name         string `json:"name"`
}

// Handler serves asset upload and retrieval endpoints.
type Handler struct {
	dir       string // directory to store asset files
	thumbSize int    // longest side of generated thumbnails
}

// NewHandler creates a new asset handler that stores files in dir.
func NewHandler(dir string, thumbSize int) *Handler {
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("create asset dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir, thumbSize: thumbSize}
}

// Upload handles POST /assets/upload (multipart form with "file" field). Any format the
// registered decoders understand is accepted and stored as PNG.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 10MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		http.Error(w, "invalid image: "+err.Error(), http.StatusBadRequest)
		return
	}

	bounds := img.Bounds()
	assetID := typeid.NewAssetID()

	if err := writePNG(filepath.Join(h.dir, assetID+".png"), img); err != nil {
		slog.Error("save asset", "error", err, "asset", assetID)
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}
	if err := writePNG(filepath.Join(h.dir, assetID+"_thumb.png"), Thumbnail(img, h.thumbSize)); err != nil {
		slog.Error("save thumbnail", "error", err, "asset", assetID)
		os.Remove(filepath.Join(h.dir, assetID+".png"))
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}

	resp := UploadResponse{
		ID:           assetID,
		URL:          fmt.Sprintf("/assets/%s.png", assetID),
		ThumbnailURL: fmt.Sprintf("/assets/%s_thumb.png", assetID),
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		Format:       format,
		Name:         header.Filename,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// Serve returns an http.Handler that serves stored asset files with caching headers.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.StripPrefix("/assets/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Asset IDs are unique, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}

// Delete removes an asset and its thumbnail from disk.
func (h *Handler) Delete(assetID string) error {
	if err := typeid.Validate(assetID, typeid.PrefixAsset); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	if err := os.Remove(filepath.Join(h.dir, assetID+".png")); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete asset: %w", err)
	}
	os.Remove(filepath.Join(h.dir, assetID+"_thumb.png"))
	return nil
}

// Remove handles DELETE /api/assets/{assetId}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	err := h.Delete(mux.Vars(r)["assetId"])
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("delete asset", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// Thumbnail scales img so its longest side is at most size, keeping the aspect ratio.
// Images already small enough are returned unchanged.
func Thumbnail(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if size <= 0 || (w <= size && h <= size) {
		return img
	}
	tw, th := size, size
	if w >= h {
		th = max(1, h*size/w)
	} else {
		tw = max(1, w*size/h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func writePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("encode png: %w", err)
	}
	return out.Close()
}
