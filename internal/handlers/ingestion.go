package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/devaaa008/document-management/internal/models"
	"github.com/devaaa008/document-management/internal/mykafka"
)

type IngestionHandler struct {
	DB           *gorm.DB
	Client       *http.Client
	IngestionURL string
	Producer     *mykafka.Producer
}

type ingestionPayload struct {
	DocumentID uint   `json:"documentId"`
	S3Path     string `json:"s3_path"`
}

// TriggerIngestion posts the document location to the external processor and
// records the job. The document is marked ingested so a second trigger is
// rejected.
func (h *IngestionHandler) TriggerIngestion(c echo.Context) error {
	documentID, err := strconv.Atoi(c.Param("documentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}

	var doc models.Document
	if err := h.DB.First(&doc, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if doc.Ingested {
		return echo.NewHTTPError(http.StatusBadRequest, "document already ingested")
	}

	payload := ingestionPayload{
		DocumentID: doc.ID,
		S3Path:     doc.S3Location,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not build payload")
	}

	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, h.IngestionURL, bytes.NewReader(body))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not build request")
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	resp, err := h.Client.Do(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "ingestion service unavailable")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return echo.NewHTTPError(http.StatusBadGateway, "ingestion service rejected the request")
	}

	jobID := uuid.NewString()
	job := models.IngestionJob{
		JobID:   jobID,
		Payload: string(body),
		Status:  models.IngestionInProgress,
	}
	if err := h.DB.Create(&job).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	doc.Ingested = true
	if err := h.DB.Save(&doc).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "ingestion_events", jobID, map[string]interface{}{
		"type":       "ingestion_triggered",
		"jobID":      jobID,
		"documentID": doc.ID,
	}); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"jobId": jobID,
	})
}

func (h *IngestionHandler) GetIngestionStatus(c echo.Context) error {
	jobID := c.QueryParam("jobId")
	if jobID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "jobId is required")
	}

	var job models.IngestionJob
	if err := h.DB.Where("job_id = ?", jobID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("job %s not found", jobID))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"jobId":  job.JobID,
		"status": job.Status,
	})
}
