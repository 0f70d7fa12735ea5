package parties

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
)

func setupPartiesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	parties := `
CREATE TABLE IF NOT EXISTS parties (
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL,
  city_id TEXT NOT NULL,
  name TEXT NOT NULL,
  date DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'DRAFT',
  created_at DATETIME,
  updated_at DATETIME
);`
	partyServices := `
CREATE TABLE IF NOT EXISTS party_services (
  id TEXT PRIMARY KEY,
  party_id TEXT NOT NULL,
  service_id TEXT NOT NULL,
  address TEXT,
  comments TEXT,
  addons TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, ddl := range []string{parties, partyServices} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedParty(t *testing.T, db *gorm.DB, status enums.PartyStatus) models.Party {
	t.Helper()
	p := models.Party{
		ID:       uuid.New(),
		ClientID: uuid.New(),
		CityID:   uuid.New(),
		Name:     "Birthday",
		Date:     time.Now().Add(72 * time.Hour),
		Status:   status,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func partyStatus(t *testing.T, db *gorm.DB, id uuid.UUID) enums.PartyStatus {
	t.Helper()
	var p models.Party
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return p.Status
}

func TestRepository_FindByIDPreloadsServices(t *testing.T) {
	db := setupPartiesTestDB(t)
	repo := NewRepository(db)
	party := seedParty(t, db, enums.PartyStatusDraft)

	ps := models.PartyService{
		ID:        uuid.New(),
		PartyID:   party.ID,
		ServiceID: uuid.New(),
		Addons:    []string{"balloons", "photographer"},
	}
	require.NoError(t, db.Create(&ps).Error)

	loaded, err := repo.FindByID(context.Background(), party.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Services, 1)
	require.Equal(t, ps.ID, loaded.Services[0].ID)
	require.Equal(t, []string{"balloons", "photographer"}, loaded.Services[0].Addons)
}

func TestRepository_UpdateStatusConditional(t *testing.T) {
	db := setupPartiesTestDB(t)
	repo := NewRepository(db)
	party := seedParty(t, db, enums.PartyStatusDraft)

	moved, err := repo.UpdateStatus(context.Background(), party.ID, enums.PartyStatusDraft, enums.PartyStatusPublished)
	require.NoError(t, err)
	require.True(t, moved)

	// Second publish finds no DRAFT row.
	moved, err = repo.UpdateStatus(context.Background(), party.ID, enums.PartyStatusDraft, enums.PartyStatusPublished)
	require.NoError(t, err)
	require.False(t, moved)
	require.Equal(t, enums.PartyStatusPublished, partyStatus(t, db, party.ID))
}

func TestRepository_AdvanceStatusForwardOnly(t *testing.T) {
	db := setupPartiesTestDB(t)
	repo := NewRepository(db)

	draft := seedParty(t, db, enums.PartyStatusDraft)
	require.NoError(t, repo.AdvanceStatus(context.Background(), draft.ID, enums.PartyStatusInProgress))
	require.Equal(t, enums.PartyStatusInProgress, partyStatus(t, db, draft.ID))

	// Already past target: no backwards move.
	completed := seedParty(t, db, enums.PartyStatusCompleted)
	require.NoError(t, repo.AdvanceStatus(context.Background(), completed.ID, enums.PartyStatusInProgress))
	require.Equal(t, enums.PartyStatusCompleted, partyStatus(t, db, completed.ID))

	// CANCELLED sits outside the progression and is never advanced.
	cancelled := seedParty(t, db, enums.PartyStatusCancelled)
	require.NoError(t, repo.AdvanceStatus(context.Background(), cancelled.ID, enums.PartyStatusInProgress))
	require.Equal(t, enums.PartyStatusCancelled, partyStatus(t, db, cancelled.ID))
}
