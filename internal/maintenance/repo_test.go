package maintenance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/balcao-pos/backend/pkg/db/models"
)

func setupMaintenanceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	windows := `
CREATE TABLE IF NOT EXISTS maintenance_windows (
  id INTEGER PRIMARY KEY,
  enabled INTEGER NOT NULL DEFAULT 0,
  message TEXT NOT NULL DEFAULT '',
  starts_at DATETIME,
  ends_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(windows).Error)
	return db
}

func TestCurrentWithoutRow(t *testing.T) {
	db := setupMaintenanceTestDB(t)

	status, err := NewRepository(db).Current(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.False(t, status.Enabled)
	assert.Empty(t, status.Message)
}

func TestCurrentReturnsWindow(t *testing.T) {
	db := setupMaintenanceTestDB(t)

	starts := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	window := &models.MaintenanceWindow{
		ID:       1,
		Enabled:  true,
		Message:  "scheduled maintenance tonight",
		StartsAt: &starts,
	}
	require.NoError(t, db.Create(window).Error)

	status, err := NewRepository(db).Current(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Enabled)
	assert.Equal(t, "scheduled maintenance tonight", status.Message)
	require.NotNil(t, status.StartsAt)
	assert.Equal(t, starts.Unix(), status.StartsAt.Unix())
}
