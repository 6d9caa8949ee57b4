package user

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stockpix/stockpix-backend/pkg/config"
	"github.com/stockpix/stockpix-backend/pkg/db/models"
	"github.com/stockpix/stockpix-backend/pkg/enums"
	"github.com/stockpix/stockpix-backend/pkg/logger"
	"github.com/stockpix/stockpix-backend/pkg/security"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func newTestService(t *testing.T, tx *gorm.DB) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test"})
	return NewService(NewRepository(tx), testPasswordConfig(), logg)
}

func mustCreateUser(t *testing.T, tx *gorm.DB, mutate func(*models.User)) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        fmt.Sprintf("spx_%s@example.com", uuid.NewString()),
		Username:     "u_" + uuid.NewString()[:8],
		PasswordHash: "hash",
		Role:         "user",
		Status:       enums.UserStatusActive,
		Subscription: enums.SubscriptionTierFree,
	}
	if mutate != nil {
		mutate(u)
	}
	if err := tx.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}
