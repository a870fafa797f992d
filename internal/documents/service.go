package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cfl-legal/chambers-backend/internal/policy"
	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	pkgerrors "github.com/cfl-legal/chambers-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type documentRepository interface {
	ListAll(ctx context.Context) ([]models.Document, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]models.Document, error)
	ListByFolder(ctx context.Context, folderID uuid.UUID) ([]models.Document, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Document, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	Create(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type caseAccessRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Case, error)
	IsAssigned(ctx context.Context, caseID, userID uuid.UUID) (bool, error)
}

type folderAccessRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Folder, error)
}

type blobStore interface {
	Save(ctx context.Context, r io.Reader) (string, int64, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
}

// Service exposes document operations. Access follows the containing case or
// folder; a document belongs to exactly one of the two.
type Service interface {
	ListAll(ctx context.Context, actor policy.Actor) ([]models.Document, error)
	ListByCase(ctx context.Context, actor policy.Actor, caseID uuid.UUID) ([]models.Document, error)
	ListByFolder(ctx context.Context, actor policy.Actor, folderID uuid.UUID) ([]models.Document, error)
	ListForUser(ctx context.Context, actor policy.Actor, userID uuid.UUID) ([]models.Document, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Document, error)
	Upload(ctx context.Context, actor policy.Actor, input UploadInput) (*models.Document, error)
	Download(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Document, io.ReadCloser, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

type service struct {
	repo    documentRepository
	cases   caseAccessRepository
	folders folderAccessRepository
	blobs   blobStore
}

// NewService builds a document service with the provided dependencies.
func NewService(repo documentRepository, cases caseAccessRepository, folders folderAccessRepository, blobs blobStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("document repository required")
	}
	if cases == nil {
		return nil, fmt.Errorf("case repository required")
	}
	if folders == nil {
		return nil, fmt.Errorf("folder repository required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob store required")
	}
	return &service{repo: repo, cases: cases, folders: folders, blobs: blobs}, nil
}

// UploadInput carries one uploaded file and its destination. Exactly one of
// CaseID and FolderID must be set.
type UploadInput struct {
	FileName string
	MimeType string
	CaseID   *uuid.UUID
	FolderID *uuid.UUID
	Body     io.Reader
}

func (s *service) ListAll(ctx context.Context, actor policy.Actor) ([]models.Document, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required")
	}
	docs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list documents")
	}
	return docs, nil
}

func (s *service) ListByCase(ctx context.Context, actor policy.Actor, caseID uuid.UUID) ([]models.Document, error) {
	if err := s.authorizeCase(ctx, actor, caseID, policy.OpRead); err != nil {
		return nil, err
	}
	docs, err := s.repo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list case documents")
	}
	return docs, nil
}

func (s *service) ListByFolder(ctx context.Context, actor policy.Actor, folderID uuid.UUID) ([]models.Document, error) {
	if err := s.authorizeFolder(ctx, actor, folderID, policy.OpRead); err != nil {
		return nil, err
	}
	docs, err := s.repo.ListByFolder(ctx, folderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list folder documents")
	}
	return docs, nil
}

func (s *service) ListForUser(ctx context.Context, actor policy.Actor, userID uuid.UUID) ([]models.Document, error) {
	rel := policy.Relationship{Self: actor.UserID == userID}
	if err := policy.Authorize(policy.ResourceDocuments, policy.OpList, actor, rel); err != nil {
		return nil, err
	}
	docs, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list user documents")
	}
	return docs, nil
}

func (s *service) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Document, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeDocument(ctx, actor, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *service) Upload(ctx context.Context, actor policy.Actor, input UploadInput) (*models.Document, error) {
	if (input.CaseID == nil) == (input.FolderID == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document must target exactly one case or folder")
	}
	if strings.TrimSpace(input.FileName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}

	if input.CaseID != nil {
		if err := s.authorizeCase(ctx, actor, *input.CaseID, policy.OpRead); err != nil {
			return nil, err
		}
	} else {
		if err := s.authorizeFolder(ctx, actor, *input.FolderID, policy.OpRead); err != nil {
			return nil, err
		}
	}

	path, size, err := s.blobs.Save(ctx, input.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store file")
	}

	doc := &models.Document{
		Name:         filepath.Base(input.FileName),
		Type:         documentType(input.FileName),
		MimeType:     input.MimeType,
		Size:         formatSize(size),
		CaseID:       input.CaseID,
		FolderID:     input.FolderID,
		UploadedByID: actor.UserID,
		Version:      "1",
		FilePath:     path,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		// The row failed, so the blob is orphaned; drop it.
		_ = s.blobs.Remove(ctx, path)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create document")
	}
	return doc, nil
}

func (s *service) Download(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Document, io.ReadCloser, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorizeDocument(ctx, actor, doc); err != nil {
		return nil, nil, err
	}
	reader, err := s.blobs.Open(ctx, doc.FilePath)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open file")
	}
	return doc, reader, nil
}

func (s *service) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	doc, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete document")
	}
	// Blob removal is best effort; the row is already gone.
	_ = s.blobs.Remove(ctx, doc.FilePath)
	return nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load document")
	}
	return doc, nil
}

func (s *service) authorizeDocument(ctx context.Context, actor policy.Actor, doc *models.Document) error {
	switch {
	case doc.CaseID != nil:
		return s.authorizeCase(ctx, actor, *doc.CaseID, policy.OpRead)
	case doc.FolderID != nil:
		return s.authorizeFolder(ctx, actor, *doc.FolderID, policy.OpRead)
	default:
		// Orphaned rows should not exist; only the uploader and admins may
		// still reach them.
		rel := policy.Relationship{Self: doc.UploadedByID == actor.UserID}
		return policy.Authorize(policy.ResourceDocuments, policy.OpList, actor, rel)
	}
}

func (s *service) authorizeCase(ctx context.Context, actor policy.Actor, caseID uuid.UUID, op policy.Operation) error {
	kase, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "case not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load case")
	}
	rel := policy.Relationship{Creator: kase.CreatedByID == actor.UserID}
	if !actor.IsAdmin() && !rel.Creator {
		assigned, err := s.cases.IsAssigned(ctx, caseID, actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check assignment")
		}
		rel.Assigned = assigned
	}
	return policy.Authorize(policy.ResourceCase, op, actor, rel)
}

func (s *service) authorizeFolder(ctx context.Context, actor policy.Actor, folderID uuid.UUID, op policy.Operation) error {
	folder, err := s.folders.FindByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "folder not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load folder")
	}
	rel := policy.Relationship{Creator: folder.CreatedByID == actor.UserID}
	return policy.Authorize(policy.ResourceFolder, op, actor, rel)
}

// documentType derives the stored type label from the file extension, e.g.
// "brief.PDF" -> "PDF". Files without an extension are labeled FILE.
func documentType(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return "FILE"
	}
	return strings.ToUpper(ext)
}

// formatSize renders a byte count the way the rest of the firm's tooling
// displays it, rounding up to whole kilobytes.
func formatSize(bytes int64) string {
	kb := (bytes + 1023) / 1024
	if kb < 1 {
		kb = 1
	}
	return fmt.Sprintf("%d KB", kb)
}
