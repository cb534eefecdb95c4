// Package handlers implements the HTTP handlers for the AgroSage
// diagnostic plane. Handlers own all I/O: image analysis and weather
// lookup happen here, so the diagnosis engine below stays pure.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/agrosage/agrosage/diagnostic-plane/internal/diagnosis"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/knowledge"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/treatment"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/vision"
	"github.com/agrosage/agrosage/diagnostic-plane/internal/weather"
	"github.com/agrosage/agrosage/diagnostic-plane/pkg/models"
)

// Form defaults for the diagnose endpoint. Farmers rarely know the
// per-hectare crop value offhand; the default is a mid-range vegetable
// crop figure in INR.
const (
	defaultCropValuePerHectare = 150000
	defaultRegion              = "India"
	defaultGrowthStage         = "vegetative"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Engine        *diagnosis.Engine
	Vision        vision.Provider
	Weather       weather.Provider
	KB            *knowledge.Base
	MaxImageBytes int64

	validate *validator.Validate
}

// New creates a Handlers instance with all dependencies.
func New(engine *diagnosis.Engine, vp vision.Provider, wp weather.Provider, kb *knowledge.Base, maxImageBytes int64) *Handlers {
	return &Handlers{
		Engine:        engine,
		Vision:        vp,
		Weather:       wp,
		KB:            kb,
		MaxImageBytes: maxImageBytes,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ── Pest catalog handlers ────────────────────────────────────

// ListPests returns the names of all pests in the knowledge base.
func (h *Handlers) ListPests(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"pests":   h.KB.Pests(),
		"default": h.KB.DefaultProfileName(),
	})
}

// GetPest returns the full knowledge-base profile for one pest,
// including the lifecycle table and weather preferences. With a
// `region` or `severity` query parameter the treatment lists are
// filtered through the same gates the engine applies.
func (h *Handlers) GetPest(w http.ResponseWriter, r *http.Request) {
	pestName := chi.URLParam(r, "pestName")
	profile, ok := h.KB.Profile(pestName)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown pest: "+pestName)
		return
	}

	regionParam := r.URL.Query().Get("region")
	severityParam := r.URL.Query().Get("severity")
	if regionParam == "" && severityParam == "" {
		respondJSON(w, http.StatusOK, profile)
		return
	}

	severity := models.SeverityMedium
	if severityParam != "" {
		parsed, err := models.ParseSeverityLevel(severityParam)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		severity = parsed
	}
	region := regionParam
	if region == "" {
		region = defaultRegion
	}

	sel := treatment.Select(profile, severity, region)
	resp := map[string]any{
		"pest":               profile.Name,
		"region":             region,
		"severity":           severity,
		"chemicals":          sel.Chemicals,
		"organics":           sel.Organics,
		"cultural_practices": sel.CulturalPractices,
	}
	if len(sel.Chemicals) == 0 && len(sel.Organics) == 0 {
		resp["note"] = "No registered treatment is applicable; consult a local agricultural extension expert"
	}
	respondJSON(w, http.StatusOK, resp)
}

// ── Diagnose (image upload) ──────────────────────────────────

// Diagnose accepts a multipart crop image plus farm context, runs
// vision analysis and weather lookup concurrently, and returns the
// assembled diagnostic report.
//
// Form fields: image (file, required), crop_type (required), location,
// region, growth_stage, crop_value_per_hectare.
func (h *Handlers) Diagnose(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxImageBytes)
	if err := r.ParseMultipartForm(h.MaxImageBytes); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "image upload too large or malformed")
		return
	}

	cropType := r.FormValue("crop_type")
	if cropType == "" {
		respondError(w, http.StatusBadRequest, "crop_type is required")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()
	imageData, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	location := r.FormValue("location")
	region := formValueOr(r, "region", defaultRegion)
	stage, err := models.ParseGrowthStage(formValueOr(r, "growth_stage", defaultGrowthStage))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	cropValue, err := formFloatOr(r, "crop_value_per_hectare", defaultCropValuePerHectare)
	if err != nil {
		respondError(w, http.StatusBadRequest, "crop_value_per_hectare must be a number")
		return
	}

	// Vision and weather are independent upstreams.
	var (
		visionRes *vision.Result
		obs       weather.Observation
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var verr error
		visionRes, verr = h.Vision.Analyze(gctx, imageData, cropType)
		return verr
	})
	g.Go(func() error {
		var werr error
		obs, werr = h.Weather.Current(gctx, location)
		return werr
	})
	if err := g.Wait(); err != nil {
		var provErr *vision.ProviderError
		if errors.As(err, &provErr) {
			respondError(w, http.StatusBadGateway, provErr.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	det := models.Detection{
		PestName:            visionRes.PestName,
		RawConfidence:       visionRes.Confidence,
		LesionPct:           visionRes.LesionPct,
		GrowthStage:         stage,
		CropType:            cropType,
		CropValuePerHectare: cropValue,
		Location:            location,
		Region:              region,
		Symptoms:            visionRes.VisualSymptoms,
		DetectedAt:          time.Now().UTC(),
	}

	report, err := h.Engine.Diagnose(r.Context(), det, obs)
	if err != nil {
		respondDiagnosisError(w, err)
		return
	}

	log.Info().
		Str("report_id", report.ID).
		Str("provider", h.Vision.Name()).
		Str("crop_type", cropType).
		Msg("diagnose request complete")
	respondJSON(w, http.StatusOK, report)
}

// ── Reports (pre-resolved detection) ─────────────────────────

// reportRequest is the JSON body for POST /api/v1/reports: a detection
// already resolved by an external vision pipeline.
type reportRequest struct {
	PestName            string   `json:"pest_name" validate:"required"`
	RawConfidence       float64  `json:"raw_confidence" validate:"gte=0,lte=1"`
	LesionPct           float64  `json:"lesion_pct" validate:"gte=0,lte=100"`
	GrowthStage         string   `json:"growth_stage" validate:"required"`
	CropType            string   `json:"crop_type" validate:"required"`
	CropValuePerHectare float64  `json:"crop_value_per_hectare" validate:"gte=0"`
	Location            string   `json:"location"`
	Region              string   `json:"region"`
	Symptoms            []string `json:"symptoms"`
}

// CreateReport builds a diagnostic report from an already-resolved
// detection, skipping image analysis. Weather is still looked up by
// location.
func (h *Handlers) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	stage, err := models.ParseGrowthStage(req.GrowthStage)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	region := req.Region
	if region == "" {
		region = defaultRegion
	}

	obs, err := h.Weather.Current(r.Context(), req.Location)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	det := models.Detection{
		PestName:            req.PestName,
		RawConfidence:       req.RawConfidence,
		LesionPct:           req.LesionPct,
		GrowthStage:         stage,
		CropType:            req.CropType,
		CropValuePerHectare: req.CropValuePerHectare,
		Location:            req.Location,
		Region:              region,
		Symptoms:            req.Symptoms,
		DetectedAt:          time.Now().UTC(),
	}

	report, err := h.Engine.Diagnose(r.Context(), det, obs)
	if err != nil {
		respondDiagnosisError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, report)
}

// ── Helpers ──────────────────────────────────────────────────

// respondDiagnosisError maps engine errors onto HTTP statuses. An
// empty treatment set is reported as 422 with guidance rather than a
// bare failure.
func respondDiagnosisError(w http.ResponseWriter, err error) {
	var invalidErr *models.InvalidInputError
	if errors.As(err, &invalidErr) {
		respondError(w, http.StatusBadRequest, invalidErr.Error())
		return
	}
	var emptyErr *models.EmptyTreatmentSetError
	if errors.As(err, &emptyErr) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":    emptyErr.Error(),
			"guidance": "No registered treatment is applicable; consult a local agricultural extension expert",
		})
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

func formValueOr(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}

func formFloatOr(r *http.Request, key string, fallback float64) (float64, error) {
	v := r.FormValue(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
