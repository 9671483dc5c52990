package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/devaaa008/document-management/internal/middleware/auth"
	"github.com/devaaa008/document-management/internal/models"
	"github.com/devaaa008/document-management/internal/mykafka"
	"github.com/devaaa008/document-management/internal/service/search"
	"github.com/devaaa008/document-management/internal/storage"
	"github.com/devaaa008/document-management/internal/util"
)

type DocumentHandler struct {
	DB       *gorm.DB
	Store    storage.Uploader
	ES       *elasticsearch.Client
	Index    string
	Producer *mykafka.Producer
}

func (h *DocumentHandler) publish(c echo.Context, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "document_events", fmt.Sprint(event["documentID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// index failures never fail the request; search just lags behind.
func (h *DocumentHandler) index(c echo.Context, doc *models.Document) {
	if h.ES == nil {
		return
	}
	if err := search.IndexDocument(c.Request().Context(), h.ES, h.Index, doc); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

// CreateDocument expects a multipart form with title, description and a file.
// The creator is stamped from the authenticated identity, never from the body.
func (h *DocumentHandler) CreateDocument(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
	}

	title := c.FormValue("title")
	if title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	description := c.FormValue("description")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}
	defer file.Close()

	location, err := h.Store.Upload(c.Request().Context(), fileHeader.Filename, file)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "upload failed")
	}

	doc := models.Document{
		Title:       title,
		Description: description,
		S3Location:  location,
		Ingested:    false,
		CreatedBy:   userID,
		CreatedOn:   time.Now(),
	}
	if err := h.DB.Create(&doc).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	h.index(c, &doc)
	h.publish(c, map[string]interface{}{
		"type":       "document_created",
		"documentID": doc.ID,
		"createdBy":  doc.CreatedBy,
	})

	return c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) GetDocuments(c echo.Context) error {
	var docs []models.Document
	if err := h.DB.Order("id ASC").Find(&docs).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c.JSON(http.StatusOK, docs)
}

func (h *DocumentHandler) GetDocument(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}

	var doc models.Document
	if err := h.DB.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) UpdateDocument(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var doc models.Document
	if err := h.DB.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if req.Title != "" {
		doc.Title = req.Title
	}
	if req.Description != "" {
		doc.Description = req.Description
	}
	if err := h.DB.Save(&doc).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	h.index(c, &doc)
	h.publish(c, map[string]interface{}{
		"type":       "document_updated",
		"documentID": doc.ID,
	})

	return c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) DeleteDocument(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}

	if err := h.DB.Delete(&models.Document{}, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if h.ES != nil {
		if err := search.DeleteDocument(c.Request().Context(), h.ES, h.Index, uint(id)); err != nil {
			c.Logger().Errorf("ES delete error: %v", err)
		}
	}
	h.publish(c, map[string]interface{}{
		"type":       "document_deleted",
		"documentID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *DocumentHandler) SearchDocuments(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not available")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	total, hits, err := search.Search(c.Request().Context(), h.ES, h.Index, q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "search failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "documents": hits})
}
