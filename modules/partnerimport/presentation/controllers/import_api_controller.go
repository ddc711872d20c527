package controllers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importprofile"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importrun"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/services"
	"github.com/fieldops-hq/fieldops/pkg/application"
	"github.com/fieldops-hq/fieldops/pkg/configuration"
	"github.com/fieldops-hq/fieldops/pkg/middleware"
)

type ImportAPIController struct {
	app      application.Application
	imports  *services.ImportService
	profiles *services.ProfileService
	runs     *services.RunHistoryService
	basePath string
}

func NewImportAPIController(app application.Application) application.Controller {
	return &ImportAPIController{
		app:      app,
		imports:  app.Service(services.ImportService{}).(*services.ImportService),
		profiles: app.Service(services.ProfileService{}).(*services.ProfileService),
		runs:     app.Service(services.RunHistoryService{}).(*services.RunHistoryService),
		basePath: "/partner-import/api",
	}
}

func (c *ImportAPIController) Key() string {
	return c.basePath
}

func (c *ImportAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.WithTransaction())
	router.HandleFunc("/runs", c.Run).Methods(http.MethodPost)
	router.HandleFunc("/profiles", c.CreateProfile).Methods(http.MethodPost)
	router.HandleFunc("/profiles", c.ListProfiles).Methods(http.MethodGet)
	router.HandleFunc("/profiles/{id}", c.GetProfile).Methods(http.MethodGet)
	router.HandleFunc("/profiles/{id}/active", c.SetProfileActive).Methods(http.MethodPut)
	router.HandleFunc("/profiles/{id}/runs", c.ListRuns).Methods(http.MethodGet)
}

type runRequestBody struct {
	ProfileID           string `json:"profileId"`
	DryRun              bool   `json:"dryRun"`
	CreateMissingOrders bool   `json:"createMissingOrders"`
	CSVData             string `json:"csvData"`
	// XLSXData carries a base64-encoded workbook for xlsx-source profiles.
	XLSXData string `json:"xlsxData"`
}

func (c *ImportAPIController) Run(w http.ResponseWriter, r *http.Request) {
	if max := configuration.Use().Import.MaxUploadBytes; max > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, max)
	}

	var body runRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeAPIError(w, r, http.StatusRequestEntityTooLarge, "IMPORT_PAYLOAD_TOO_LARGE", "payload exceeds the upload limit")
			return
		}
		writeAPIError(w, r, http.StatusBadRequest, "IMPORT_INVALID_JSON", "invalid json")
		return
	}

	profileID, err := uuid.Parse(strings.TrimSpace(body.ProfileID))
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "IMPORT_INVALID_PROFILE_ID", "profileId must be a uuid")
		return
	}

	var workbook []byte
	if body.XLSXData != "" {
		workbook, err = base64.StdEncoding.DecodeString(body.XLSXData)
		if err != nil {
			writeAPIError(w, r, http.StatusBadRequest, "IMPORT_INVALID_WORKBOOK", "xlsxData must be base64")
			return
		}
	}

	summary, err := c.imports.Run(r.Context(), services.RunRequest{
		ProfileID:           profileID,
		DryRun:              body.DryRun,
		CreateMissingOrders: body.CreateMissingOrders,
		CSVData:             body.CSVData,
		XLSXData:            workbook,
	})
	if err != nil {
		var configErr *services.ConfigError
		switch {
		case errors.Is(err, importprofile.ErrNotFound):
			writeAPIError(w, r, http.StatusNotFound, "IMPORT_PROFILE_NOT_FOUND", "import profile not found")
		case errors.As(err, &configErr):
			writeAPIError(w, r, http.StatusUnprocessableEntity, "IMPORT_CONFIG_ERROR", configErr.Error())
		default:
			writeAPIError(w, r, http.StatusInternalServerError, "IMPORT_INTERNAL", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary": summary,
	})
}

func (c *ImportAPIController) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var dto importprofile.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "IMPORT_INVALID_JSON", "invalid json")
		return
	}

	if errs, ok := dto.Ok(); !ok {
		message := "validation failed"
		for _, v := range errs {
			if strings.TrimSpace(v) != "" {
				message = v
				break
			}
		}
		writeAPIError(w, r, http.StatusUnprocessableEntity, "IMPORT_VALIDATION_FAILED", message)
		return
	}

	created, err := c.profiles.Create(r.Context(), &dto)
	if err != nil {
		writeAPIError(w, r, http.StatusUnprocessableEntity, "IMPORT_VALIDATION_FAILED", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, profileToView(created))
}

func (c *ImportAPIController) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := c.profiles.List(r.Context())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "IMPORT_INTERNAL", "internal error")
		return
	}

	out := make([]map[string]any, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileToView(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
	})
}

func (c *ImportAPIController) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "IMPORT_INVALID_PROFILE_ID", "profile id must be a uuid")
		return
	}

	profile, err := c.profiles.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, importprofile.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "IMPORT_PROFILE_NOT_FOUND", "import profile not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "IMPORT_INTERNAL", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, profileToView(profile))
}

func (c *ImportAPIController) SetProfileActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "IMPORT_INVALID_PROFILE_ID", "profile id must be a uuid")
		return
	}

	var body struct {
		IsActive bool `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "IMPORT_INVALID_JSON", "invalid json")
		return
	}

	updated, err := c.profiles.SetActive(r.Context(), id, body.IsActive)
	if err != nil {
		if errors.Is(err, importprofile.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "IMPORT_PROFILE_NOT_FOUND", "import profile not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "IMPORT_INTERNAL", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, profileToView(updated))
}

func (c *ImportAPIController) ListRuns(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "IMPORT_INVALID_PROFILE_ID", "profile id must be a uuid")
		return
	}

	limit := 20
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	runs, err := c.runs.ListByProfile(r.Context(), id, limit)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "IMPORT_INTERNAL", "internal error")
		return
	}

	out := make([]map[string]any, 0, len(runs))
	for _, run := range runs {
		out = append(out, runToView(run))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
	})
}

func profileToView(p importprofile.ImportProfile) map[string]any {
	view := map[string]any{
		"id":                  p.ID(),
		"partnerId":           p.PartnerID(),
		"name":                p.Name(),
		"sourceType":          p.SourceType(),
		"defaultInsertStatus": p.DefaultInsertStatus(),
		"isActive":            p.IsActive(),
		"createdAt":           p.CreatedAt(),
		"updatedAt":           p.UpdatedAt(),
	}
	if ref := p.SpreadsheetRef(); ref != nil {
		view["spreadsheetId"] = ref.SpreadsheetID
		view["sheetName"] = ref.SheetName
	}
	return view
}

func runToView(run importrun.ImportRun) map[string]any {
	return map[string]any{
		"id":         run.ID,
		"profileId":  run.ProfileID,
		"partnerId":  run.PartnerID,
		"dryRun":     run.DryRun,
		"summary":    run.Summary,
		"startedAt":  run.StartedAt,
		"finishedAt": run.FinishedAt,
	}
}
