package httpadapter

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/slidespace/backend/internal/core/domain"
	"github.com/slidespace/backend/internal/core/ports"
)

type exportResponse struct {
	Artifact      domain.PPTXArtifact `json:"artifact"`
	ContentBase64 string              `json:"content_base64"`
}

func (rt *Router) exportPPTX(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Variant string         `json:"variant"`
		Slides  []domain.Slide `json:"slides"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	variant := domain.PPTXVariant(req.Variant)
	if req.Variant == "" {
		variant = domain.VariantDefault
	}

	result, err := rt.exports.Generate(r.Context(), callerID(r), r.PathValue("id"), variant, req.Slides)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordExport(serviceName, string(result.Artifact.Variant))
	}
	writeExport(w, result)
}

func (rt *Router) listExports(w http.ResponseWriter, r *http.Request) {
	variant := domain.PPTXVariant(r.URL.Query().Get("variant"))

	artifacts, err := rt.exports.List(r.Context(), callerID(r), r.PathValue("id"), variant)
	if err != nil {
		writeError(w, err)
		return
	}
	if artifacts == nil {
		artifacts = []domain.PPTXArtifact{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"exports": artifacts})
}

func (rt *Router) downloadExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Variant string `json:"variant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	result, err := rt.exports.Download(r.Context(), callerID(r), r.PathValue("id"), domain.PPTXVariant(req.Variant))
	if err != nil {
		writeError(w, err)
		return
	}
	writeExport(w, result)
}

func writeExport(w http.ResponseWriter, result *ports.ExportResult) {
	writeJSON(w, http.StatusOK, exportResponse{
		Artifact:      result.Artifact,
		ContentBase64: base64.StdEncoding.EncodeToString(result.Data),
	})
}
