package api

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	customerrors "github.com/sicfor/sicfor/internal/errors"
	"github.com/sicfor/sicfor/internal/models"
	"github.com/sicfor/sicfor/internal/render"
	"github.com/sicfor/sicfor/internal/services"
)

// VerificationEventsChannel is the global channel used to send verification events.
// This channel enables asynchronous recording of lookups without blocking the
// public verify endpoint.
var VerificationEventsChannel chan models.VerificationEvent

// SetupRoutes configures all Gin API routes and injects necessary dependencies.
// Parameters:
//   - router: Gin engine instance to configure routes on
//   - certService: business logic service for certificate operations
//   - renderer: the image renderer used by the image endpoint
//   - bufferSize: size of the verification events channel buffer
func SetupRoutes(router *gin.Engine, certService *services.CertificateService, renderer *render.Renderer, bufferSize int) {
	// Initialize the global verification events channel if it hasn't been
	// created yet. It is drained by the worker pool started in cmd/server.
	if VerificationEventsChannel == nil {
		VerificationEventsChannel = make(chan models.VerificationEvent, bufferSize)
	}

	// Health Check Route - used for monitoring service availability
	router.GET("/health", HealthCheckHandler)

	// API Routes Group - all business logic endpoints under /api/v1 prefix
	api := router.Group("/api/v1")
	{
		api.POST("/certificates", CreateCertificateHandler(certService))
		api.GET("/certificates", ListCertificatesHandler(certService))
		api.GET("/certificates/:id", GetCertificateHandler(certService))
		api.GET("/certificates/:id/image", CertificateImageHandler(certService, renderer))
		api.GET("/certificates/:id/stats", GetCertificateStatsHandler(certService))
		api.DELETE("/certificates/:id", DeleteCertificateHandler(certService))
		api.DELETE("/certificates", ClearCertificatesHandler(certService))
		api.GET("/export", ExportCertificatesHandler(certService))
	}

	// Public lookup route - resolves a verification code to its record
	// (e.g. localhost:8080/verify/7KQ2MB9XTRZC)
	router.GET("/verify/:code", VerifyHandler(certService))
}

// HealthCheckHandler handles the /health route to verify service status
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateCertificateRequest represents the JSON request body for issuing a
// certificate. Only the recipient name is mandatory; every other field may be
// empty, matching the form boundary of the original UI.
type CreateCertificateRequest struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
	Note   string `json:"note"`
}

// CreateCertificateHandler handles the issuance of a new certificate.
// Validation of the required recipient name happens here, at the boundary,
// before any record is created.
func CreateCertificateHandler(certService *services.CertificateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCertificateRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		// The recipient name is the only blocking validation in the system.
		if strings.TrimSpace(req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": customerrors.ErrEmptyRecipientName.Error()})
			return
		}

		record, err := certService.CreateCertificate(services.CertificateInput{
			Name:   req.Name,
			Title:  req.Title,
			Issuer: req.Issuer,
			Date:   req.Date,
			Note:   req.Note,
		})
		if err != nil {
			// Handle the specific case where we can't generate a unique code
			if errors.Is(err, customerrors.ErrCodeGenerationFailed) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Unable to generate unique verification code. Please try again later."})
				return
			}
			log.Printf("Error creating certificate: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create certificate"})
			return
		}

		c.JSON(http.StatusCreated, record)
	}
}

// ListCertificatesHandler returns the full history, most-recently-created
// first, as shown in the history list view.
func ListCertificatesHandler(certService *services.CertificateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		records := certService.List()
		c.JSON(http.StatusOK, gin.H{
			"certificates": records,
			"count":        len(records),
		})
	}
}

// GetCertificateHandler returns a single record by id.
func GetCertificateHandler(certService *services.CertificateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, err := certService.GetByID(c.Param("id"))
		if err != nil {
			if errors.Is(err, customerrors.ErrCertificateNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Certificate not found"})
				return
			}
			log.Printf("Error retrieving certificate %s: %v", c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

// CertificateImageHandler renders the record as a PNG and offers it as a
// download named after the record id.
func CertificateImageHandler(certService *services.CertificateService, renderer *render.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, err := certService.GetByID(c.Param("id"))
		if err != nil {
			if errors.Is(err, customerrors.ErrCertificateNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Certificate not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		data, err := renderer.ExportPNG(record)
		if err != nil {
			log.Printf("Error rendering certificate %s: %v", record.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render certificate image"})
			return
		}

		c.Header("Content-Disposition", `attachment; filename="`+render.ImageFileName(record)+`"`)
		c.Data(http.StatusOK, "image/png", data)
	}
}

// GetCertificateStatsHandler returns a record's metadata together with the
// number of times its verification code has been looked up.
func GetCertificateStatsHandler(certService *services.CertificateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, totalVerifications, err := certService.GetVerificationStats(c.Param("id"))
		if err != nil {
			if errors.Is(err, customerrors.ErrCertificateNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Certificate not found"})
				return
			}
			log.Printf("Error retrieving stats for %s: %v", c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":                  record.ID,
			"verification_code":   record.VerificationCode,
			"name":                record.Name,
			"title":               record.Title,
			"total_verifications": totalVerifications,
			"created_at":          record.CreatedAt,
		})
	}
}

// DeleteCertificateHandler removes a single record by id. Deleting an unknown
// id still answers 204: the store ends up in the requested state either way.
func DeleteCertificateHandler(certService *services.CertificateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		certService.Delete(c.Param("id"))
		c.Status(http.StatusNoContent)
	}
}

// ClearCertificatesHandler removes the whole history and its storage slot.
func ClearCertificatesHandler(certService *services.CertificateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		certService.DeleteAll()
		c.Status(http.StatusNoContent)
	}
}

// ExportCertificatesHandler offers the full serialized history as a JSON file
// download named with the current date.
func ExportCertificatesHandler(certService *services.CertificateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, filename, err := certService.ExportJSON(time.Now())
		if err != nil {
			log.Printf("Error exporting certificates: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export certificates"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "application/json", data)
	}
}

// VerifyHandler resolves a verification code to its certificate record. The
// lookup is case-insensitive. Each successful lookup queues a
// VerificationEvent for asynchronous recording; a full buffer drops the event
// rather than delaying the response.
func VerifyHandler(certService *services.CertificateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")

		record, err := certService.VerifyByCode(code)
		if err != nil {
			// A miss is a normal "not found" result, not a failure.
			if errors.Is(err, customerrors.ErrCertificateNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "No certificate matches this verification code"})
				return
			}
			log.Printf("Error verifying code %s: %v", code, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		event := models.VerificationEvent{
			CertificateID: record.ID,
			Code:          record.VerificationCode,
			Timestamp:     time.Now(),
			UserAgent:     c.GetHeader("User-Agent"),
			IPAddress:     c.ClientIP(),
		}

		// Send the event to the recording channel using non-blocking select so
		// analytics never delay the lookup response.
		select {
		case VerificationEventsChannel <- event:
			log.Printf("Verification event queued for certificate %s", record.ID)
		default:
			log.Printf("WARNING: VerificationEventsChannel is full, dropping event for certificate %s", record.ID)
		}

		c.JSON(http.StatusOK, record)
	}
}
