package service

import (
	"errors"
	"testing"
	"time"

	"github.com/holdcart/internal/config"
	"github.com/holdcart/internal/models"
	"github.com/holdcart/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupReservationServiceTest(t *testing.T) (*ReservationService, *CartService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Cart{}, &models.CartItem{}, &models.Reservation{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	releaseSvc := NewReservationService(db, cartRepo, productRepo, reservationRepo)
	cartSvc := NewCartService(db, &config.Config{}, cartRepo, productRepo, reservationRepo, nil)
	return releaseSvc, cartSvc, db
}

func TestReleaseRestoresStockAndRollsBackCartLine(t *testing.T) {
	releaseSvc, cartSvc, db := setupReservationServiceTest(t)
	const userID = 401
	product := createCartTestProduct(t, db, "release-full-line", 5, 10)

	cart, err := cartSvc.CreateCart(userID)
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if _, err := cartSvc.AddItem(cart.ID, userID, product.ID, 4); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	reservations := listUserReservations(t, db, userID, product.ID)
	if len(reservations) != 1 {
		t.Fatalf("reservations want 1 got %d", len(reservations))
	}

	if err := releaseSvc.Release(reservations[0].ID); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	if stock := reloadProductStock(t, db, product.ID); stock != 10 {
		t.Fatalf("stock want 10 got %d", stock)
	}
	got, err := cartSvc.GetCart(cart.ID, userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("cart line should be rolled back, items %d", len(got.Items))
	}
	if got.Total.String() != "0.00" {
		t.Fatalf("total want 0.00 got %s", got.Total.String())
	}

	// 预留只能被消费一次
	if err := releaseSvc.Release(reservations[0].ID); !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("second release want ErrReservationNotFound got %v", err)
	}
}

func TestReleaseShrinksPartialLine(t *testing.T) {
	releaseSvc, cartSvc, db := setupReservationServiceTest(t)
	const userID = 402
	product := createCartTestProduct(t, db, "release-partial-line", 5, 10)

	cart, err := cartSvc.CreateCart(userID)
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if _, err := cartSvc.AddItem(cart.ID, userID, product.ID, 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if _, err := cartSvc.AddItem(cart.ID, userID, product.ID, 3); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	var target models.Reservation
	if err := db.Where("user_id = ? AND product_id = ? AND quantity = ?", userID, product.ID, 2).
		First(&target).Error; err != nil {
		t.Fatalf("load reservation failed: %v", err)
	}
	if err := releaseSvc.Release(target.ID); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	if stock := reloadProductStock(t, db, product.ID); stock != 7 {
		t.Fatalf("stock want 7 got %d", stock)
	}
	got, err := cartSvc.GetCart(cart.ID, userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 3 {
		t.Fatalf("line quantity want 3, items %d", len(got.Items))
	}
	if got.Items[0].ItemPrice.String() != "15.00" {
		t.Fatalf("item price want 15.00 got %s", got.Items[0].ItemPrice.String())
	}
	if got.Total.String() != "15.00" {
		t.Fatalf("total want 15.00 got %s", got.Total.String())
	}
}

func TestReleaseDueSweepsExpiredReservations(t *testing.T) {
	releaseSvc, cartSvc, db := setupReservationServiceTest(t)
	const userID = 403
	product := createCartTestProduct(t, db, "release-due-sweep", 5, 10)

	cart, err := cartSvc.CreateCart(userID)
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if _, err := cartSvc.AddItem(cart.ID, userID, product.ID, 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if _, err := cartSvc.AddItem(cart.ID, userID, product.ID, 1); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	// 把该用户的预留改为已到期
	if err := db.Model(&models.Reservation{}).
		Where("user_id = ?", userID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("backdate reservations failed: %v", err)
	}

	released, err := releaseSvc.ReleaseDue(time.Now(), 0)
	if err != nil {
		t.Fatalf("release due failed: %v", err)
	}
	if released != 2 {
		t.Fatalf("released want 2 got %d", released)
	}

	if stock := reloadProductStock(t, db, product.ID); stock != 10 {
		t.Fatalf("stock want 10 got %d", stock)
	}
	got, err := cartSvc.GetCart(cart.ID, userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(got.Items) != 0 || got.Total.String() != "0.00" {
		t.Fatalf("cart should be empty after sweep, items %d total %s", len(got.Items), got.Total.String())
	}

	// 再次扫描无可释放项
	released, err = releaseSvc.ReleaseDue(time.Now(), 0)
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if released != 0 {
		t.Fatalf("second sweep released want 0 got %d", released)
	}
}

func TestReleaseMissingReservation(t *testing.T) {
	releaseSvc, _, _ := setupReservationServiceTest(t)
	if err := releaseSvc.Release(999999); !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("want ErrReservationNotFound got %v", err)
	}
}
