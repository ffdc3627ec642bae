package repository

import (
	"testing"
	"time"

	"github.com/holdcart/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupReservationRepositoryTest(t *testing.T) (*GormReservationRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Reservation{}); err != nil {
		t.Fatalf("migrate reservation failed: %v", err)
	}
	return NewReservationRepository(db), db
}

func createTestReservation(t *testing.T, repo *GormReservationRepository, userID, productID uint, quantity int, expiresAt time.Time) *models.Reservation {
	t.Helper()
	reservation := &models.Reservation{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		ExpiresAt: expiresAt,
	}
	if err := repo.Create(reservation); err != nil {
		t.Fatalf("create reservation failed: %v", err)
	}
	return reservation
}

func TestDeleteReservationByIDIsConsumedOnce(t *testing.T) {
	repo, _ := setupReservationRepositoryTest(t)
	reservation := createTestReservation(t, repo, 201, 1, 3, time.Now().Add(15*time.Minute))

	affected, err := repo.DeleteByID(reservation.ID)
	if err != nil {
		t.Fatalf("delete reservation failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("delete affected want 1 got %d", affected)
	}

	// 重复删除表示预留已被消费
	affected, err = repo.DeleteByID(reservation.ID)
	if err != nil {
		t.Fatalf("delete again failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("delete again affected want 0 got %d", affected)
	}

	got, err := repo.GetByID(reservation.ID)
	if err != nil {
		t.Fatalf("get deleted reservation failed: %v", err)
	}
	if got != nil {
		t.Fatalf("deleted reservation should not be found")
	}
}

func TestListReservationsByUserProductNewestFirst(t *testing.T) {
	repo, db := setupReservationRepositoryTest(t)
	first := createTestReservation(t, repo, 202, 7, 2, time.Now().Add(15*time.Minute))
	second := createTestReservation(t, repo, 202, 7, 3, time.Now().Add(15*time.Minute))
	createTestReservation(t, repo, 202, 8, 1, time.Now().Add(15*time.Minute))

	// 保证排序不依赖同一秒内的 created_at
	if err := db.Model(&models.Reservation{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("backdate reservation failed: %v", err)
	}

	list, err := repo.ListByUserProduct(202, 7)
	if err != nil {
		t.Fatalf("list reservations failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list length want 2 got %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("list order want [%d %d] got [%d %d]", second.ID, first.ID, list[0].ID, list[1].ID)
	}
}

func TestDeleteReservationsByUserProducts(t *testing.T) {
	repo, _ := setupReservationRepositoryTest(t)
	createTestReservation(t, repo, 203, 11, 1, time.Now().Add(15*time.Minute))
	createTestReservation(t, repo, 203, 11, 2, time.Now().Add(15*time.Minute))
	createTestReservation(t, repo, 203, 12, 1, time.Now().Add(15*time.Minute))
	keep := createTestReservation(t, repo, 204, 11, 1, time.Now().Add(15*time.Minute))

	affected, err := repo.DeleteByUserProducts(203, []uint{11, 12})
	if err != nil {
		t.Fatalf("delete by user products failed: %v", err)
	}
	if affected != 3 {
		t.Fatalf("delete affected want 3 got %d", affected)
	}

	got, err := repo.GetByID(keep.ID)
	if err != nil {
		t.Fatalf("get other user reservation failed: %v", err)
	}
	if got == nil {
		t.Fatalf("other user reservation should survive")
	}

	affected, err = repo.DeleteByUserProducts(203, nil)
	if err != nil {
		t.Fatalf("delete with empty products failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("empty product list affected want 0 got %d", affected)
	}
}

func TestListDueReservations(t *testing.T) {
	repo, _ := setupReservationRepositoryTest(t)
	now := time.Now()
	expired := createTestReservation(t, repo, 205, 21, 2, now.Add(-time.Minute))
	createTestReservation(t, repo, 205, 22, 1, now.Add(15*time.Minute))

	due, err := repo.ListDue(now, 0)
	if err != nil {
		t.Fatalf("list due failed: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("due length want 1 got %d", len(due))
	}
	if due[0].ID != expired.ID {
		t.Fatalf("due reservation want %d got %d", expired.ID, due[0].ID)
	}

	due, err = repo.ListDue(now.Add(20*time.Minute), 1)
	if err != nil {
		t.Fatalf("list due with limit failed: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("limited due length want 1 got %d", len(due))
	}
}
