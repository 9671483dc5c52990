package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/devaaa008/document-management/internal/middleware/auth"
	"github.com/devaaa008/document-management/internal/models"
	"github.com/devaaa008/document-management/internal/mykafka"
)

type fakeUploader struct {
	uploads  int
	lastName string
	lastBody []byte
	fail     bool
}

func (f *fakeUploader) Upload(_ context.Context, filename string, body io.Reader) (string, error) {
	if f.fail {
		return "", fmt.Errorf("upload failed")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.uploads++
	f.lastName = filename
	f.lastBody = data
	return "https://bucket.s3.amazonaws.com/" + filename, nil
}

func newDocumentHandler(t *testing.T) (*DocumentHandler, *fakeUploader, *gorm.DB) {
	db := initTestDB(t)
	up := &fakeUploader{}
	return &DocumentHandler{
		DB:       db,
		Store:    up,
		Index:    "documents",
		Producer: &mykafka.Producer{},
	}, up, db
}

func multipartRequest(t *testing.T, target string, fields map[string]string, filename, content string) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req, httptest.NewRecorder()
}

func seedDocument(t *testing.T, db *gorm.DB, title string, ingested bool) models.Document {
	doc := models.Document{
		Title:      title,
		S3Location: "https://bucket.s3.amazonaws.com/" + title,
		Ingested:   ingested,
		CreatedBy:  1,
		CreatedOn:  time.Now(),
	}
	require.NoError(t, db.Create(&doc).Error)
	return doc
}

func TestCreateDocument(t *testing.T) {
	h, up, db := newDocumentHandler(t)

	e := echo.New()
	req, rec := multipartRequest(t, "/document", map[string]string{
		"title":       "quarterly report",
		"description": "Q3 numbers",
	}, "report.pdf", "file-content")
	c := e.NewContext(req, rec)
	c.Set(auth.CtxUserID, uint(7))
	c.Set(auth.CtxRole, models.RoleEditor)

	require.NoError(t, h.CreateDocument(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Equal(t, 1, up.uploads)
	require.Equal(t, "report.pdf", up.lastName)
	require.Equal(t, []byte("file-content"), up.lastBody)

	var doc models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "quarterly report", doc.Title)
	require.Equal(t, uint(7), doc.CreatedBy)
	require.False(t, doc.Ingested)
	require.Contains(t, doc.S3Location, "report.pdf")

	var stored models.Document
	require.NoError(t, db.First(&stored, doc.ID).Error)
	require.Equal(t, uint(7), stored.CreatedBy)
}

// A handler reached without the auth gate has no identity and must fail.
func TestCreateDocumentWithoutIdentity(t *testing.T) {
	h, up, _ := newDocumentHandler(t)

	e := echo.New()
	req, rec := multipartRequest(t, "/document", map[string]string{"title": "x"}, "f.txt", "y")
	err := h.CreateDocument(e.NewContext(req, rec))
	requireHTTPError(t, err, http.StatusUnauthorized)
	require.Equal(t, 0, up.uploads)
}

func TestCreateDocumentMissingFile(t *testing.T) {
	h, _, _ := newDocumentHandler(t)

	e := echo.New()
	req, rec := multipartRequest(t, "/document", map[string]string{"title": "x"}, "", "")
	c := e.NewContext(req, rec)
	c.Set(auth.CtxUserID, uint(7))

	err := h.CreateDocument(c)
	requireHTTPError(t, err, http.StatusBadRequest)
}

func TestCreateDocumentUploadFailure(t *testing.T) {
	h, up, db := newDocumentHandler(t)
	up.fail = true

	e := echo.New()
	req, rec := multipartRequest(t, "/document", map[string]string{"title": "x"}, "f.txt", "y")
	c := e.NewContext(req, rec)
	c.Set(auth.CtxUserID, uint(7))

	err := h.CreateDocument(c)
	requireHTTPError(t, err, http.StatusInternalServerError)

	var count int64
	require.NoError(t, db.Model(&models.Document{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestGetDocuments(t *testing.T) {
	h, _, db := newDocumentHandler(t)
	seedDocument(t, db, "first", false)
	seedDocument(t, db, "second", true)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/document/documents", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.GetDocuments(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var docs []models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 2)
	require.Equal(t, "first", docs[0].Title)
}

func TestGetDocumentNotFound(t *testing.T) {
	h, _, _ := newDocumentHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/document/42", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("42")

	err := h.GetDocument(c)
	requireHTTPError(t, err, http.StatusNotFound)
}

func TestUpdateDocument(t *testing.T) {
	h, _, db := newDocumentHandler(t)
	doc := seedDocument(t, db, "old title", false)

	e := echo.New()
	req, rec := jsonRequest(t, http.MethodPut, "/document/1", map[string]string{
		"title": "new title",
	})
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(doc.ID))

	require.NoError(t, h.UpdateDocument(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Document
	require.NoError(t, db.First(&stored, doc.ID).Error)
	require.Equal(t, "new title", stored.Title)
}

func TestUpdateDocumentNotFound(t *testing.T) {
	h, _, _ := newDocumentHandler(t)

	e := echo.New()
	req, rec := jsonRequest(t, http.MethodPut, "/document/99", map[string]string{"title": "x"})
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := h.UpdateDocument(c)
	requireHTTPError(t, err, http.StatusNotFound)
}

func TestDeleteDocument(t *testing.T) {
	h, _, db := newDocumentHandler(t)
	doc := seedDocument(t, db, "doomed", false)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/document/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(doc.ID))

	require.NoError(t, h.DeleteDocument(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.Document{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestSearchDocumentsWithoutES(t *testing.T) {
	h, _, _ := newDocumentHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/document/search?q=report", nil)
	rec := httptest.NewRecorder()

	err := h.SearchDocuments(e.NewContext(req, rec))
	requireHTTPError(t, err, http.StatusServiceUnavailable)
}

func TestSearchDocumentsMissingQuery(t *testing.T) {
	h, _, _ := newDocumentHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/document/search", nil)
	rec := httptest.NewRecorder()

	err := h.SearchDocuments(e.NewContext(req, rec))
	requireHTTPError(t, err, http.StatusBadRequest)
}
