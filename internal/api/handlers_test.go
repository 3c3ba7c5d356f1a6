package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sicfor/sicfor/internal/models"
	"github.com/sicfor/sicfor/internal/render"
	"github.com/sicfor/sicfor/internal/repository"
	"github.com/sicfor/sicfor/internal/services"
	"github.com/sicfor/sicfor/internal/store"
)

type stubSlotRepository struct {
	values map[string]string
}

func (s *stubSlotRepository) Read(key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", repository.ErrSlotNotFound
	}
	return value, nil
}

func (s *stubSlotRepository) Write(key, value string) error {
	s.values[key] = value
	return nil
}

func (s *stubSlotRepository) Delete(key string) error {
	delete(s.values, key)
	return nil
}

type stubVerificationRepository struct {
	rows []models.Verification
}

func (s *stubVerificationRepository) CreateVerification(v *models.Verification) error {
	s.rows = append(s.rows, *v)
	return nil
}

func (s *stubVerificationRepository) CountByCertificateID(certificateID string) (int, error) {
	count := 0
	for _, row := range s.rows {
		if row.CertificateID == certificateID {
			count++
		}
	}
	return count, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *services.CertificateService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	certStore := store.NewCertificateStore(&stubSlotRepository{values: map[string]string{}}, "")
	certService := services.NewCertificateService(certStore, &stubVerificationRepository{})

	renderer, err := render.NewRenderer()
	require.NoError(t, err)

	// Reset the global channel so each test gets a fresh buffer.
	VerificationEventsChannel = nil

	router := gin.New()
	SetupRoutes(router, certService, renderer, 16)
	return router, certService
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateCertificateHandler(t *testing.T) {
	t.Run("valid input creates a record", func(t *testing.T) {
		router, certService := newTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/certificates", gin.H{
			"name":   "Ana Ruiz",
			"title":  "Curso de Primeros Auxilios",
			"issuer": "Centro X",
			"date":   "2024-03-01",
			"note":   "Completó el curso satisfactoriamente.",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var record models.Certificate
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
		assert.Equal(t, "Ana Ruiz", record.Name)
		assert.NotEmpty(t, record.ID)
		assert.NotEmpty(t, record.VerificationCode)

		require.Len(t, certService.List(), 1)
	})

	t.Run("empty name is rejected at the boundary", func(t *testing.T) {
		router, certService := newTestRouter(t)

		w := doJSON(router, http.MethodPost, "/api/v1/certificates", gin.H{
			"name":  "   ",
			"title": "No recipient",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, certService.List(), "no record may be created on validation failure")
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		router, _ := newTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", strings.NewReader("{broken"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListAndGetHandlers(t *testing.T) {
	router, certService := newTestRouter(t)

	first, err := certService.CreateCertificate(services.CertificateInput{Name: "First"})
	require.NoError(t, err)
	_, err = certService.CreateCertificate(services.CertificateInput{Name: "Second"})
	require.NoError(t, err)

	t.Run("list returns most-recent-first", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/v1/certificates", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Certificates []models.Certificate `json:"certificates"`
			Count        int                  `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
		require.Len(t, resp.Certificates, 2)
		assert.Equal(t, "Second", resp.Certificates[0].Name)
	})

	t.Run("get by id", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/v1/certificates/"+first.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var record models.Certificate
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
		assert.Equal(t, first.ID, record.ID)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/v1/certificates/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestVerifyHandler(t *testing.T) {
	router, certService := newTestRouter(t)

	record, err := certService.CreateCertificate(services.CertificateInput{Name: "Ana Ruiz"})
	require.NoError(t, err)

	t.Run("lower-cased code resolves the record and queues an event", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/verify/"+strings.ToLower(record.VerificationCode), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var found models.Certificate
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
		assert.Equal(t, record.ID, found.ID)

		select {
		case event := <-VerificationEventsChannel:
			assert.Equal(t, record.ID, event.CertificateID)
			assert.Equal(t, record.VerificationCode, event.Code)
		default:
			t.Fatal("expected a verification event to be queued")
		}
	})

	t.Run("unknown code is a 404, not a failure", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/verify/AAAABBBBCCCC", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteHandlers(t *testing.T) {
	router, certService := newTestRouter(t)

	record, err := certService.CreateCertificate(services.CertificateInput{Name: "Victim"})
	require.NoError(t, err)
	_, err = certService.CreateCertificate(services.CertificateInput{Name: "Survivor"})
	require.NoError(t, err)

	w := doJSON(router, http.MethodDelete, "/api/v1/certificates/"+record.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, certService.List(), 1)

	w = doJSON(router, http.MethodDelete, "/api/v1/certificates", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, certService.List())
}

func TestExportCertificatesHandler(t *testing.T) {
	router, certService := newTestRouter(t)

	for _, name := range []string{"One", "Two", "Three"} {
		_, err := certService.CreateCertificate(services.CertificateInput{Name: name})
		require.NoError(t, err)
	}

	w := doJSON(router, http.MethodGet, "/api/v1/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "certificates-export-")

	var exported []models.Certificate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exported))
	assert.Len(t, exported, 3)
}

func TestCertificateImageHandler(t *testing.T) {
	router, certService := newTestRouter(t)

	record, err := certService.CreateCertificate(services.CertificateInput{
		Name:  "Ana Ruiz",
		Title: "Curso de Primeros Auxilios",
	})
	require.NoError(t, err)

	w := doJSON(router, http.MethodGet, "/api/v1/certificates/"+record.ID+"/image", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), record.ID)
	// PNG magic header
	require.True(t, len(w.Body.Bytes()) > 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, w.Body.Bytes()[:4])
}

func TestGetCertificateStatsHandler(t *testing.T) {
	router, certService := newTestRouter(t)

	record, err := certService.CreateCertificate(services.CertificateInput{Name: "Ana Ruiz"})
	require.NoError(t, err)

	w := doJSON(router, http.MethodGet, "/api/v1/certificates/"+record.ID+"/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ID                 string `json:"id"`
		TotalVerifications int    `json:"total_verifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, record.ID, resp.ID)
	assert.Equal(t, 0, resp.TotalVerifications)
}
