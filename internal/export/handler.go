package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/inamate/artboard/internal/document"
)

const maxBodySize = 20 << 20 // 20MB

type Handler struct {
	dir      string // rendered HTML files
	assetDir string // uploaded images referenced as /assets/<file>
}

func NewHandler(dir, assetDir string) *Handler {
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("create export dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir, assetDir: assetDir}
}

type exportResponse struct {
	URL string `json:"url"`
}

// ExportHTML handles POST /export/html. The body is a project; the rendered page is
// stored under the export directory and its URL returned.
func (h *Handler) ExportHTML(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	p, ok := h.decodeProject(w, r)
	if !ok {
		return
	}

	page, err := HTML(p)
	if err != nil {
		slog.Error("export html", "error", err, "project", p.Meta.ID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
		return
	}

	filename := fmt.Sprintf("%s_%s.html", safeName(p.Meta.Name), uuid.New().String())
	if err := os.WriteFile(filepath.Join(h.dir, filename), page, 0644); err != nil {
		slog.Error("write html export", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
		return
	}

	writeJSON(w, http.StatusOK, exportResponse{URL: "/exports/" + filename})
}

// ExportPDF handles POST /export/pdf and streams the document back.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	p, ok := h.decodeProject(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := PDF(&buf, p, h.openAsset); err != nil {
		slog.Error("export pdf", "error", err, "project", p.Meta.ID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, safeName(p.Meta.Name)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Serve returns an http.Handler for stored HTML exports.
func (h *Handler) Serve() http.Handler {
	return http.StripPrefix("/exports/", http.FileServer(http.Dir(h.dir)))
}

func (h *Handler) decodeProject(w http.ResponseWriter, r *http.Request) (*document.Project, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var p document.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project"})
		return nil, false
	}
	if err := p.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}
	return &p, true
}

// openAsset resolves /assets/<file> sources against the asset directory.
func (h *Handler) openAsset(src string) (io.ReadCloser, string, error) {
	name, ok := strings.CutPrefix(src, "/assets/")
	if !ok || name == "" || name != filepath.Base(name) {
		return nil, "", errors.New("not a local asset")
	}
	f, err := os.Open(filepath.Join(h.assetDir, name))
	if err != nil {
		return nil, "", err
	}
	imageType := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return f, imageType, nil
}

// safeName keeps ASCII letters and digits, lowercased, and replaces the rest with '_'.
func safeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, name)
	if name == "" {
		return "export"
	}
	return strings.ToLower(name)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
