package tryon

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"magic-mirror-server/modules/capture"
	"magic-mirror-server/modules/catalog"
	"magic-mirror-server/modules/common/domain"
	"magic-mirror-server/modules/common/utils"
)

// Handler exposes the try-on session API to the mirror UI.
type Handler struct {
	manager *Manager
	worker  *Worker
	catalog *catalog.Service
	domain  *domain.Domain
}

func NewHandler(manager *Manager, worker *Worker, catalogService *catalog.Service, d *domain.Domain) *Handler {
	return &Handler{
		manager: manager,
		worker:  worker,
		catalog: catalogService,
		domain:  d,
	}
}

// RegisterRoutes wires the try-on endpoints onto the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/tryon/sessions", h.CreateSession).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/tryon/sessions/{sessionId}", h.GetSession).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/tryon/sessions/{sessionId}/capture", h.Capture).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/tryon/sessions/{sessionId}/catalog", h.GetCatalog).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/tryon/sessions/{sessionId}/select", h.SelectItem).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/tryon/sessions/{sessionId}/styles", h.UploadStyle).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/tryon/sessions/{sessionId}/generate", h.Generate).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/tryon/sessions/{sessionId}/gallery", h.BackToGallery).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/tryon/sessions/{sessionId}/reset", h.Reset).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/tryon/sessions/{sessionId}/result", h.DownloadResult).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/tryon/sessions/{sessionId}/camera-denied", h.CameraDenied).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/tryon/sessions/{sessionId}/pose", h.TriggerPose).Methods("POST", "OPTIONS")
	log.Println("✅ Try-on routes registered under /api/tryon")
}

// CaptureRequest carries one frame from either capture provider.
type CaptureRequest struct {
	Image  string `json:"image"`  // data URL or raw base64
	Source string `json:"source"` // "camera" or "upload"
}

// SelectRequest picks a catalog item by id.
type SelectRequest struct {
	ItemID string `json:"itemId"`
}

// StyleUploadRequest carries a user-provided reference style image.
type StyleUploadRequest struct {
	Image string `json:"image"`
}

// CreateSession starts a new Idle session.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	controller := h.manager.Create()
	writeJSON(w, http.StatusCreated, controller.Snapshot())
}

// GetSession returns the current session snapshot.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	controller := h.session(w, r)
	if controller == nil {
		return
	}
	writeJSON(w, http.StatusOK, controller.Snapshot())
}

// Capture accepts a camera frame or an uploaded photo and kicks off analysis.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	controller := h.session(w, r)
	if controller == nil {
		return
	}

	var req CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if req.Image == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: image")
		return
	}
	if req.Source == "" {
		req.Source = string(capture.SourceCamera)
	}

	raw, err := utils.StripDataURL(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Image payload is not valid base64")
		return
	}

	frame, err := capture.Still(capture.Source(req.Source), raw)
	if err != nil {
		log.Printf("❌ Capture failed: %v", err)
		writeError(w, http.StatusBadRequest, "Could not read the captured image")
		return
	}

	inv, err := controller.BeginCapture(frame)
	if err != nil {
		h.writePhaseConflict(w, err)
		return
	}

	h.worker.Enqueue(inv)
	writeJSON(w, http.StatusAccepted, controller.Snapshot())
}

// GetCatalog returns the merged style list: session uploads first, then the
// provider items.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	controller := h.session(w, r)
	if controller == nil {
		return
	}

	items := h.catalog.Merged(controller.CustomItems())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

// SelectItem records the user's choice from the merged catalog.
func (h *Handler) SelectItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	controller := h.session(w, r)
	if controller == nil {
		return
	}

	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: itemId")
		return
	}

	var chosen *catalog.Item
	for _, item := range h.catalog.Merged(controller.CustomItems()) {
		if item.ID == req.ItemID {
			match := item
			chosen = &match
			break
		}
	}
	if chosen == nil {
		writeError(w, http.StatusNotFound, "Unknown catalog item")
		return
	}

	if err := controller.SelectItem(*chosen); err != nil {
		h.writePhaseConflict(w, err)
		return
	}
	writeJSON(w, http.StatusOK, controller.Snapshot())
}

// UploadStyle adds a custom reference item to the session gallery and
// selects it.
func (h *Handler) UploadStyle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	controller := h.session(w, r)
	if controller == nil {
		return
	}

	var req StyleUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: image")
		return
	}
	if _, err := utils.StripDataURL(req.Image); err != nil {
		writeError(w, http.StatusBadRequest, "Image payload is not valid base64")
		return
	}

	item := catalog.Item{
		ID:          fmt.Sprintf("custom-%d", time.Now().UnixMilli()),
		Name:        "Custom Look",
		Category:    "Uploaded",
		Description: h.domain.CustomItemDescription,
		Image:       req.Image,
		IsCustom:    true,
	}

	if err := controller.AddCustomItem(item); err != nil {
		h.writePhaseConflict(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, controller.Snapshot())
}

// Generate triggers synthesis for the current capture + selection.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	controller := h.session(w, r)
	if controller == nil {
		return
	}

	inv, err := controller.BeginSynthesis()
	if err != nil {
		h.writePhaseConflict(w, err)
		return
	}

	h.worker.Enqueue(inv)
	writeJSON(w, http.StatusAccepted, controller.Snapshot())
}

// BackToGallery drops the result and returns to the selection gallery.
func (h *Handler) BackToGallery(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	controller := h.session(w, r)
	if controller == nil {
		return
	}

	if err := controller.BackToGallery(); err != nil {
		h.writePhaseConflict(w, err)
		return
	}
	writeJSON(w, http.StatusOK, controller.Snapshot())
}

// Reset clears the session back to Idle. Always succeeds, idempotently.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	controller := h.session(w, r)
	if controller == nil {
		return
	}

	controller.Reset()
	writeJSON(w, http.StatusOK, controller.Snapshot())
}

// DownloadResult serializes the synthesized image, optionally as WebP.
func (h *Handler) DownloadResult(w http.ResponseWriter, r *http.Request) {
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	controller := h.session(w, r)
	if controller == nil {
		return
	}

	image := controller.ResultImage()
	if image == nil {
		writeError(w, http.StatusNotFound, "No result available")
		return
	}

	filename := fmt.Sprintf("magic-mirror-%s-%d", h.domain.Key, time.Now().UnixMilli())

	if r.URL.Query().Get("format") == "webp" {
		webpData, err := utils.ConvertToWebP(image, 80)
		if err != nil {
			log.Printf("⚠️  WebP conversion failed, serving original: %v", err)
		} else {
			w.Header().Set("Content-Type", "image/webp")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.webp", filename))
			w.WriteHeader(http.StatusOK)
			w.Write(webpData)
			return
		}
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.png", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(image)
}

// CameraDenied records a persistent capture capability failure. The session
// itself is untouched; the upload path remains the sole alternative.
func (h *Handler) CameraDenied(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	controller := h.session(w, r)
	if controller == nil {
		return
	}

	controller.MarkCaptureUnavailable()
	writeJSON(w, http.StatusOK, controller.Snapshot())
}

// TriggerPose raises the cosmetic pose-success flag.
func (h *Handler) TriggerPose(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	controller := h.session(w, r)
	if controller == nil {
		return
	}

	controller.TriggerPoseSuccess()
	writeJSON(w, http.StatusOK, controller.Snapshot())
}

// session resolves the controller for the request, writing a 404 when the
// session does not exist.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *Controller {
	vars := mux.Vars(r)
	sessionID := vars["sessionId"]

	controller := h.manager.Get(sessionID)
	if controller == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return nil
	}
	return controller
}

func (h *Handler) writePhaseConflict(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidPhase) {
		writeError(w, http.StatusConflict, "Action not allowed in the current phase")
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal error")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
