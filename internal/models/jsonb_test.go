// internal/models/jsonb_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestJSONBColumnMigratesAndRoundTrips(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:models_jsonb?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&User{}, &Order{}, &AuditLog{}))

	user := User{
		Username:    "dolphin",
		Email:       "dolphin@example.com",
		Role:        UserRoleBuyer,
		Status:      UserStatusActive,
		ProfileData: JSONB{"bias": "Haerin", "country": "KR"},
	}
	require.NoError(t, user.SetPassword("Sup3r$ecret"))
	require.NoError(t, db.Create(&user).Error)

	var loaded User
	require.NoError(t, db.First(&loaded, "id = ?", user.ID).Error)
	assert.Equal(t, "Haerin", loaded.ProfileData["bias"])
	assert.Equal(t, "KR", loaded.ProfileData["country"])

	// A nil map stays nil through the database.
	bare := User{Username: "otter", Email: "otter@example.com", Role: UserRoleBuyer}
	require.NoError(t, bare.SetPassword("Sup3r$ecret"))
	require.NoError(t, db.Create(&bare).Error)

	var loadedBare User
	require.NoError(t, db.First(&loadedBare, "id = ?", bare.ID).Error)
	assert.Nil(t, loadedBare.ProfileData)
}
