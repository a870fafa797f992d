package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cfl-legal/chambers-backend/internal/documents"
	"github.com/cfl-legal/chambers-backend/internal/policy"
	"github.com/cfl-legal/chambers-backend/pkg/config"
	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	"github.com/google/uuid"
)

type stubDocumentService struct {
	doc  *models.Document
	err  error
	got  documents.UploadInput
	body string
}

func (s *stubDocumentService) ListAll(context.Context, policy.Actor) ([]models.Document, error) {
	return nil, s.err
}

func (s *stubDocumentService) ListByCase(context.Context, policy.Actor, uuid.UUID) ([]models.Document, error) {
	return nil, s.err
}

func (s *stubDocumentService) ListByFolder(context.Context, policy.Actor, uuid.UUID) ([]models.Document, error) {
	return nil, s.err
}

func (s *stubDocumentService) ListForUser(context.Context, policy.Actor, uuid.UUID) ([]models.Document, error) {
	return nil, s.err
}

func (s *stubDocumentService) Get(context.Context, policy.Actor, uuid.UUID) (*models.Document, error) {
	return s.doc, s.err
}

func (s *stubDocumentService) Upload(_ context.Context, _ policy.Actor, input documents.UploadInput) (*models.Document, error) {
	s.got = input
	if input.Body != nil {
		data, _ := io.ReadAll(input.Body)
		s.body = string(data)
	}
	return s.doc, s.err
}

func (s *stubDocumentService) Download(context.Context, policy.Actor, uuid.UUID) (*models.Document, io.ReadCloser, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.doc, io.NopCloser(strings.NewReader(s.body)), nil
}

func (s *stubDocumentService) Delete(context.Context, policy.Actor, uuid.UUID) error {
	return s.err
}

func uploadsConfig() config.UploadsConfig {
	return config.UploadsConfig{Dir: "uploads", MaxUploadMB: 10}
}

func multipartUpload(t *testing.T, fields map[string]string, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write file content: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUploadDocumentAgainstCase(t *testing.T) {
	caseID := uuid.New()
	svc := &stubDocumentService{doc: &models.Document{Name: "brief.pdf", Type: "PDF", Size: "1 KB"}}
	handler := UploadDocument(svc, uploadsConfig(), nil)

	buf, contentType := multipartUpload(t, map[string]string{"case_id": caseID.String()}, "brief.pdf", "hello")
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/documents", buf), "lawyer")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.got.CaseID == nil || *svc.got.CaseID != caseID {
		t.Fatalf("expected case target %s, got %+v", caseID, svc.got.CaseID)
	}
	if svc.got.FolderID != nil {
		t.Fatal("expected no folder target")
	}
	if svc.got.FileName != "brief.pdf" {
		t.Fatalf("expected filename forwarded, got %q", svc.got.FileName)
	}
	if svc.body != "hello" {
		t.Fatalf("expected file body forwarded, got %q", svc.body)
	}
}

func TestUploadDocumentRequiresFileField(t *testing.T) {
	handler := UploadDocument(&stubDocumentService{}, uploadsConfig(), nil)

	buf, contentType := multipartUpload(t, map[string]string{"case_id": uuid.NewString()}, "", "")
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/documents", buf), "lawyer")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file part got %d", rec.Code)
	}
}

func TestUploadDocumentRejectsMalformedTarget(t *testing.T) {
	handler := UploadDocument(&stubDocumentService{}, uploadsConfig(), nil)

	buf, contentType := multipartUpload(t, map[string]string{"case_id": "nope"}, "brief.pdf", "x")
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/documents", buf), "lawyer")
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad case_id got %d", rec.Code)
	}
}

func TestGetDocumentReturnsMetadata(t *testing.T) {
	svc := &stubDocumentService{doc: &models.Document{Name: "retainer.docx", Type: "DOCX", Size: "3 KB", Version: "1"}}
	handler := GetDocument(svc, nil)

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/documents/x", nil), "lawyer")
	req = withURLParam(req, "documentID", uuid.NewString())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data models.Document `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Type != "DOCX" || envelope.Data.Size != "3 KB" {
		t.Fatalf("unexpected metadata: %+v", envelope.Data)
	}
}

func TestDownloadDocumentStreamsAttachment(t *testing.T) {
	svc := &stubDocumentService{doc: &models.Document{Name: "brief.pdf", MimeType: "application/pdf"}, body: "pdf-bytes"}
	handler := DownloadDocument(svc, nil)

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/documents/x/download", nil), "lawyer")
	req = withURLParam(req, "documentID", uuid.NewString())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected pdf content type, got %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "brief.pdf") {
		t.Fatalf("expected filename in disposition, got %q", got)
	}
	if rec.Body.String() != "pdf-bytes" {
		t.Fatalf("expected streamed bytes, got %q", rec.Body.String())
	}
}
