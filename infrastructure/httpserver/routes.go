package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// BlurRequest is the body of POST /blur
type BlurRequest struct {
	VideoURL string `json:"videoUrl"`
}

// BlurResponse is the body returned by POST /blur. Pipeline failures still
// produce this shape with UsedFallback set; the submission flow upstream
// must never be blocked by an anonymization error.
type BlurResponse struct {
	Success          bool   `json:"success"`
	FacesFound       int    `json:"facesFound"`
	BlurredVideoURL  string `json:"blurredVideoUrl"`
	OriginalVideoURL string `json:"originalVideoUrl"`
	UsedFallback     bool   `json:"usedFallback"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	UptimeS int64  `json:"uptime_s"`
}

// ErrorResponse is the body of a client error
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewRouter builds the chi router for the face-blur API
func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Post("/blur", blurHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:  "healthy",
			Service: "face-blur-service",
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func blurHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BlurRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
			return
		}
		if req.VideoURL == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing videoUrl parameter"})
			return
		}

		result := cfg.Pipeline.ProcessVideo(r.Context(), req.VideoURL)

		writeJSON(w, http.StatusOK, BlurResponse{
			Success:          true,
			FacesFound:       result.FacesFound,
			BlurredVideoURL:  result.BlurredVideoURL,
			OriginalVideoURL: result.OriginalVideoURL,
			UsedFallback:     result.UsedFallback,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
