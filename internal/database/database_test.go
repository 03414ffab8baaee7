package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/farm-helper/internal/database/migrations"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
)

func TestOpenInMemoryMigrates(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)

	for _, table := range []string{"soil_tests", "crops", "crop_recommendations", "farm_tasks", "disease_detections", "notifications", "profiles"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&Notification{}, "idx_notifications_user_unread"))

	var records []migrations.MigrationRecord
	require.NoError(t, db.Find(&records).Error)
	assert.Len(t, records, 2)

	// Re-running is a no-op.
	require.NoError(t, Migrate(db, nil))
	require.NoError(t, db.Find(&records).Error)
	assert.Len(t, records, 2)
}

func TestBeforeCreateAssignsID(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)

	crop := &Crop{UserID: uuid.New(), Name: "Wheat"}
	require.NoError(t, db.Create(crop).Error)
	assert.NotEqual(t, uuid.Nil, crop.ID)

	var loaded Crop
	require.NoError(t, db.First(&loaded, "id = ?", crop.ID).Error)
	assert.Equal(t, domain.StagePlanning, loaded.GrowthStage)
	assert.Equal(t, domain.CropActive, loaded.Status)
}
