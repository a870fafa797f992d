package documents

import (
	"context"
	"fmt"
	"testing"

	"github.com/cfl-legal/chambers-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS documents (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  mime_type TEXT,
  size TEXT NOT NULL,
  case_id TEXT,
  folder_id TEXT,
  uploaded_by_id TEXT NOT NULL,
  version TEXT NOT NULL DEFAULT '1',
  file_path TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS case_assignments (
  id TEXT PRIMARY KEY,
  case_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  assigned_at DATETIME
);
CREATE TABLE IF NOT EXISTS folders (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  created_by_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedDoc(t *testing.T, db *gorm.DB, name string, caseID, folderID *uuid.UUID, uploadedBy uuid.UUID) *models.Document {
	t.Helper()
	doc := &models.Document{
		ID: uuid.New(), Name: name, Type: "PDF", Size: "1 KB",
		CaseID: caseID, FolderID: folderID, UploadedByID: uploadedBy, Version: "1", FilePath: name,
	}
	require.NoError(t, db.Create(doc).Error)
	return doc
}

func TestListForUserCoversAssignedCasesAndOwnFolders(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user, colleague := uuid.New(), uuid.New()
	assignedCase, otherCase := uuid.New(), uuid.New()
	ownFolder, otherFolder := uuid.New(), uuid.New()

	require.NoError(t, db.Create(&models.CaseAssignment{ID: uuid.New(), CaseID: assignedCase, UserID: user}).Error)
	require.NoError(t, db.Create(&models.Folder{ID: ownFolder, Name: "research", CreatedByID: user}).Error)
	require.NoError(t, db.Create(&models.Folder{ID: otherFolder, Name: "drafts", CreatedByID: colleague}).Error)

	// A colleague's upload into an assigned case is still reachable.
	inCase := seedDoc(t, db, "pleadings.pdf", &assignedCase, nil, colleague)
	inFolder := seedDoc(t, db, "notes.pdf", nil, &ownFolder, user)
	seedDoc(t, db, "unrelated.pdf", &otherCase, nil, user)
	seedDoc(t, db, "private.pdf", nil, &otherFolder, colleague)

	docs, err := repo.ListForUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	ids := []uuid.UUID{docs[0].ID, docs[1].ID}
	require.Contains(t, ids, inCase.ID)
	require.Contains(t, ids, inFolder.ID)
}

func TestListForUserWithNoAccessReturnsEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	uploader := uuid.New()
	caseID := uuid.New()
	seedDoc(t, db, "lonely.pdf", &caseID, nil, uploader)

	// Uploading a document does not by itself grant listing access.
	docs, err := repo.ListForUser(ctx, uploader)
	require.NoError(t, err)
	require.Empty(t, docs)
}
