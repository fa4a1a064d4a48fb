package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/repos"
	"github.com/fluxclass/fluxclass-backend/internal/types"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "services_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.UserClassXP{},
		&types.ClassConfig{},
		&types.Submission{},
		&types.QuestionAward{},
		&types.WhitelistEntry{},
		&types.Message{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, repo repos.UserRepo, classes ...string) *types.User {
	t.Helper()
	user := &types.User{
		ID:          uuid.New(),
		Email:       uuid.New().String() + "@fluxclass.test",
		Password:    "x",
		DisplayName: "Test Student",
		Role:        types.RoleStudent,
		Classes:     classes,
	}
	if _, err := repo.Create(context.Background(), nil, []*types.User{user}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// fakeAwardRepo models the store-side conditional write: the mutex plays the
// role of the database's conflict handling, letting exactly one concurrent
// caller insert a given key.
type fakeAwardRepo struct {
	mu   sync.Mutex
	rows map[string]*types.QuestionAward
}

func newFakeAwardRepo() *fakeAwardRepo {
	return &fakeAwardRepo{rows: map[string]*types.QuestionAward{}}
}

func awardKey(userID uuid.UUID, resourceID, questionID string) string {
	return userID.String() + "|" + resourceID + "|" + questionID
}

func (f *fakeAwardRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, row *types.QuestionAward) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := awardKey(row.UserID, row.ResourceID, row.QuestionID)
	if _, ok := f.rows[key]; ok {
		return false, nil
	}
	f.rows[key] = row
	return true, nil
}

func (f *fakeAwardRepo) GetByUserAndResource(ctx context.Context, tx *gorm.DB, userID uuid.UUID, resourceID string) ([]*types.QuestionAward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.QuestionAward
	for _, row := range f.rows {
		if row.UserID == userID && row.ResourceID == resourceID {
			out = append(out, row)
		}
	}
	return out, nil
}

// fakeUserRepo is a concurrency-safe in-memory ledger.
type fakeUserRepo struct {
	mu      sync.Mutex
	xp      map[uuid.UUID]int
	flux    map[uuid.UUID]int
	classXP map[uuid.UUID]map[string]int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		xp:      map[uuid.UUID]int{},
		flux:    map[uuid.UUID]int{},
		classXP: map[uuid.UUID]map[string]int{},
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.User) ([]*types.User, error) {
	return rows, nil
}
func (f *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	return false, nil
}
func (f *fakeUserRepo) Save(ctx context.Context, tx *gorm.DB, row *types.User) error { return nil }
func (f *fakeUserRepo) TouchLastLogin(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	return nil
}

func (f *fakeUserRepo) IncrementXP(ctx context.Context, tx *gorm.DB, id uuid.UUID, xp, currency int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.xp[id] += xp
	f.flux[id] += currency
	return nil
}

func (f *fakeUserRepo) IncrementClassXP(ctx context.Context, tx *gorm.DB, id uuid.UUID, classType string, xp int) error {
	if classType == "" || xp == 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.classXP[id] == nil {
		f.classXP[id] = map[string]int{}
	}
	f.classXP[id][classType] += xp
	return nil
}

func (f *fakeUserRepo) GetClassXP(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]*types.UserClassXP, error) {
	return nil, nil
}

func (f *fakeUserRepo) totalXP(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.xp[id]
}
