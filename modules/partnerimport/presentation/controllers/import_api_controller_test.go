package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/aggregates/partnerorder"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/entities/importprofile"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/infrastructure/persistence"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/presentation/controllers"
	"github.com/fieldops-hq/fieldops/modules/partnerimport/services"
	"github.com/fieldops-hq/fieldops/pkg/application"
	"github.com/fieldops-hq/fieldops/pkg/eventbus"
)

var partnerID = uuid.MustParse("3fa23f5d-9f3a-4a8e-8f2e-5a8cc16c9101")

func setupRouter(t *testing.T) (*mux.Router, *persistence.InMemImportProfileRepository, *persistence.InMemPartnerOrderRepository) {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	profiles := persistence.NewInMemImportProfileRepository()
	orders := persistence.NewInMemPartnerOrderRepository()
	runs := persistence.NewInMemImportRunRepository()

	app := application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	app.RegisterServices(
		services.NewProfileService(profiles),
		services.NewRunHistoryService(runs),
		services.NewImportService(services.ImportServiceConfig{
			Profiles: profiles,
			Orders:   orders,
			Runs:     runs,
			EventBus: app.EventPublisher(),
		}),
	)

	router := mux.NewRouter()
	controllers.NewImportAPIController(app).Register(router)
	return router, profiles, orders
}

func seedProfile(t *testing.T, profiles *persistence.InMemImportProfileRepository) importprofile.ImportProfile {
	t.Helper()

	profile := importprofile.New(
		partnerID,
		"Acme CSV feed",
		importprofile.SourceCSV,
		nil,
		map[importprofile.TargetField]string{
			importprofile.FieldPartnerExternalID: "Job Ref",
			importprofile.FieldClientName:        "Customer",
			importprofile.FieldStatus:            "State",
		},
		map[string]partnerorder.Status{
			"Booked": partnerorder.StatusInstallBooked,
		},
		nil,
		nil,
		partnerorder.StatusAwaitingInstallBooking,
	)
	created, err := profiles.Create(t.Context(), profile)
	require.NoError(t, err)
	return created
}

func postJSON(t *testing.T, router *mux.Router, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRunEndpoint_AppliesImport(t *testing.T) {
	t.Parallel()
	router, profiles, orders := setupRouter(t)
	profile := seedProfile(t, profiles)

	rec := postJSON(t, router, "/partner-import/api/runs", map[string]any{
		"profileId":           profile.ID().String(),
		"createMissingOrders": true,
		"csvData":             "Job Ref,Customer,State\nA-100,Alice,Booked\n",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Summary struct {
			Processed int `json:"processed"`
			Inserted  int `json:"insertedCount"`
			Updated   int `json:"updatedCount"`
			Skipped   int `json:"skippedCount"`
			Warnings  int `json:"warningCount"`
			Errors    []struct {
				RowIndex int    `json:"rowIndex"`
				Message  string `json:"message"`
			} `json:"errors"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Summary.Processed)
	assert.Equal(t, 1, resp.Summary.Inserted)
	assert.Empty(t, resp.Summary.Errors)
	assert.Equal(t, 1, orders.Count())
}

func TestRunEndpoint_UnknownProfileIs404(t *testing.T) {
	t.Parallel()
	router, _, _ := setupRouter(t)

	rec := postJSON(t, router, "/partner-import/api/runs", map[string]any{
		"profileId": uuid.NewString(),
		"csvData":   "Job Ref\nA-1\n",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunEndpoint_ConfigErrorIs422(t *testing.T) {
	t.Parallel()
	router, profiles, _ := setupRouter(t)
	profile := seedProfile(t, profiles)

	// csv-source profile with no csv payload
	rec := postJSON(t, router, "/partner-import/api/runs", map[string]any{
		"profileId": profile.ID().String(),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRunEndpoint_BadProfileIDIs400(t *testing.T) {
	t.Parallel()
	router, _, _ := setupRouter(t)

	rec := postJSON(t, router, "/partner-import/api/runs", map[string]any{
		"profileId": "not-a-uuid",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileEndpoints_CreateAndFetch(t *testing.T) {
	t.Parallel()
	router, _, _ := setupRouter(t)

	rec := postJSON(t, router, "/partner-import/api/profiles", map[string]any{
		"partnerId":  partnerID.String(),
		"name":       "Acme CSV feed",
		"sourceType": "csv",
		"columnMappings": map[string]string{
			"partner_external_id": "Job Ref",
		},
		"defaultInsertStatus": "awaiting_install_booking",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	getReq := httptest.NewRequest(http.MethodGet, "/partner-import/api/profiles/"+created.ID, nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	require.Equal(t, http.StatusOK, getRec.Code)

	listReq := httptest.NewRequest(http.MethodGet, "/partner-import/api/profiles", nil)
	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, listReq)
	require.Equal(t, http.StatusOK, listRec.Code)

	var listed struct {
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &listed))
	assert.Len(t, listed.Items, 1)
}

func TestProfileEndpoints_ActivationToggle(t *testing.T) {
	t.Parallel()
	router, profiles, _ := setupRouter(t)
	profile := seedProfile(t, profiles)

	rec := postJSON(t, router, "/partner-import/api/runs", map[string]any{
		"profileId":           profile.ID().String(),
		"createMissingOrders": true,
		"csvData":             "Job Ref\nA-100\n",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	putReq := httptest.NewRequest(http.MethodPut,
		"/partner-import/api/profiles/"+profile.ID().String()+"/active",
		bytes.NewReader([]byte(`{"isActive":false}`)))
	putRec := httptest.NewRecorder()
	router.ServeHTTP(putRec, putReq)
	require.Equal(t, http.StatusOK, putRec.Code)

	// Runs against the deactivated profile are now rejected.
	rec = postJSON(t, router, "/partner-import/api/runs", map[string]any{
		"profileId": profile.ID().String(),
		"csvData":   "Job Ref\nA-100\n",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	runsReq := httptest.NewRequest(http.MethodGet,
		"/partner-import/api/profiles/"+profile.ID().String()+"/runs", nil)
	runsRec := httptest.NewRecorder()
	router.ServeHTTP(runsRec, runsReq)
	require.Equal(t, http.StatusOK, runsRec.Code)

	var history struct {
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(runsRec.Body.Bytes(), &history))
	assert.Len(t, history.Items, 1)
}

func TestProfileEndpoints_ValidationFailureIs422(t *testing.T) {
	t.Parallel()
	router, _, _ := setupRouter(t)

	rec := postJSON(t, router, "/partner-import/api/profiles", map[string]any{
		"partnerId":           partnerID.String(),
		"name":                "Broken",
		"sourceType":          "csv",
		"columnMappings":      map[string]string{"client_name": "Customer"},
		"defaultInsertStatus": "awaiting_install_booking",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
