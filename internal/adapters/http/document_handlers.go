package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/slidespace/backend/internal/core/domain"
)

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(rt.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.documents.Upload(r.Context(), callerID(r), fileHeader.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, doc.MimeType, int(fileHeader.Size))
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, state, err := rt.documents.Get(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document": doc,
		"workflow": state,
	})
}

func (rt *Router) extractTitles(w http.ResponseWriter, r *http.Request) {
	extraction, err := rt.titles.Extract(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, extraction)
}

func (rt *Router) saveTitles(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Titles []domain.TitleInput `json:"titles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	set, err := rt.titles.Save(r.Context(), callerID(r), r.PathValue("id"), req.Titles)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (rt *Router) getTitles(w http.ResponseWriter, r *http.Request) {
	set, err := rt.titles.Get(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (rt *Router) generateSlides(w http.ResponseWriter, r *http.Request) {
	deck, err := rt.decks.Generate(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (rt *Router) getSlides(w http.ResponseWriter, r *http.Request) {
	deck, err := rt.decks.Get(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (rt *Router) saveSlides(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slides []domain.Slide `json:"slides"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	deck, err := rt.decks.Save(r.Context(), callerID(r), r.PathValue("id"), req.Slides)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (rt *Router) clearWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := rt.workspace.Clear(r.Context(), callerID(r), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordWorkspaceClear(serviceName)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
