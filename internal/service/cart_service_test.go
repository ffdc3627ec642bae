package service

import (
	"errors"
	"testing"
	"time"

	"github.com/holdcart/internal/config"
	"github.com/holdcart/internal/models"
	"github.com/holdcart/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Cart{}, &models.CartItem{}, &models.Reservation{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	svc := NewCartService(
		db,
		&config.Config{},
		repository.NewCartRepository(db),
		repository.NewProductRepository(db),
		repository.NewReservationRepository(db),
		nil,
	)
	return svc, db
}

func createCartTestProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:  name,
		Price: models.NewMoneyFromDecimal(decimal.NewFromFloat(price)),
		Stock: stock,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func reloadProductStock(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	return product.Stock
}

func listUserReservations(t *testing.T, db *gorm.DB, userID, productID uint) []models.Reservation {
	t.Helper()
	var reservations []models.Reservation
	if err := db.Where("user_id = ? AND product_id = ?", userID, productID).Find(&reservations).Error; err != nil {
		t.Fatalf("list reservations failed: %v", err)
	}
	return reservations
}

func TestAddItemDeductsStockAndCreatesReservation(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	const userID = 301
	product := createCartTestProduct(t, db, "cart-add-basic", 5, 10)

	cart, err := svc.CreateCart(userID)
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}

	before := time.Now()
	got, err := svc.AddItem(cart.ID, userID, product.ID, 4)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	if got.Total.String() != "20.00" {
		t.Fatalf("cart total want 20.00 got %s", got.Total.String())
	}
	if len(got.Items) != 1 {
		t.Fatalf("cart items want 1 got %d", len(got.Items))
	}
	if got.Items[0].Quantity != 4 {
		t.Fatalf("item quantity want 4 got %d", got.Items[0].Quantity)
	}
	if got.Items[0].ItemPrice.String() != "20.00" {
		t.Fatalf("item price want 20.00 got %s", got.Items[0].ItemPrice.String())
	}
	if stock := reloadProductStock(t, db, product.ID); stock != 6 {
		t.Fatalf("stock want 6 got %d", stock)
	}

	reservations := listUserReservations(t, db, userID, product.ID)
	if len(reservations) != 1 {
		t.Fatalf("reservations want 1 got %d", len(reservations))
	}
	if reservations[0].Quantity != 4 {
		t.Fatalf("reservation quantity want 4 got %d", reservations[0].Quantity)
	}
	if !reservations[0].ExpiresAt.After(before) {
		t.Fatalf("reservation should expire in the future")
	}
	if reservations[0].ExpiresAt.After(before.Add(16 * time.Minute)) {
		t.Fatalf("reservation expiry exceeds default hold window")
	}
}

func TestAddItemMergesExistingLine(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	const userID = 302
	product := createCartTestProduct(t, db, "cart-add-merge", 5, 10)

	cart, err := svc.CreateCart(userID)
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if _, err := svc.AddItem(cart.ID, userID, product.ID, 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	got, err := svc.AddItem(cart.ID, userID, product.ID, 3)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	if len(got.Items) != 1 {
		t.Fatalf("merged cart items want 1 got %d", len(got.Items))
	}
	if got.Items[0].Quantity != 5 {
		t.Fatalf("merged quantity want 5 got %d", got.Items[0].Quantity)
	}
	if got.Items[0].ItemPrice.String() != "25.00" {
		t.Fatalf("merged item price want 25.00 got %s", got.Items[0].ItemPrice.String())
	}
	if got.Total.String() != "25.00" {
		t.Fatalf("merged total want 25.00 got %s", got.Total.String())
	}
	if stock := reloadProductStock(t, db, product.ID); stock != 5 {
		t.Fatalf("stock want 5 got %d", stock)
	}

	// 每次加购各建一条预留
	reservations := listUserReservations(t, db, userID, product.ID)
	if len(reservations) != 2 {
		t.Fatalf("reservations want 2 got %d", len(reservations))
	}
}

func TestAddItemInsufficientStockLeavesStateUnchanged(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	const userID = 303
	product := createCartTestProduct(t, db, "cart-add-insufficient", 5, 3)

	cart, err := svc.CreateCart(userID)
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}

	_, err = svc.AddItem(cart.ID, userID, product.ID, 5)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock got %v", err)
	}
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) || stockErr.ProductID != product.ID {
		t.Fatalf("error should carry product id, got %v", err)
	}

	if stock := reloadProductStock(t, db, product.ID); stock != 3 {
		t.Fatalf("stock want 3 got %d", stock)
	}
	if reservations := listUserReservations(t, db, userID, product.ID); len(reservations) != 0 {
		t.Fatalf("reservations want 0 got %d", len(reservations))
	}
	got, err := svc.GetCart(cart.ID, userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if got.Total.String() != "0.00" || len(got.Items) != 0 {
		t.Fatalf("cart should be unchanged, total %s items %d", got.Total.String(), len(got.Items))
	}
}

func TestUpdateItemDecreaseRestoresStock(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	const userID = 304
	product := createCartTestProduct(t, db, "cart-update-decrease", 5, 10)

	cart, err := svc.CreateCart(userID)
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if _, err := svc.AddItem(cart.ID, userID, product.ID, 4); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	got, err := svc.UpdateItem(cart.ID, userID, product.ID, 2)
	if err != nil {
		t.Fatalf("update item failed: %v", err)
	}
	if got.Items[0].Quantity != 2 {
		t.Fatalf("quantity want 2 got %d", got.Items[0].Quantity)
	}
	if got.Items[0].ItemPrice.String() != "10.00" {
		t.Fatalf("item price want 10.00 got %s", got.Items[0].ItemPrice.String())
	}
	if got.Total.String() != "10.00" {
		t.Fatalf("total want 10.00 got %s", got.Total.String())
	}
	if stock := reloadProductStock(t, db, product.ID); stock != 8 {
		t.Fatalf("stock want 8 got %d", stock)
	}

	held := 0
	for _, reservation := range listUserReservations(t, db, userID, product.ID) {
		held += reservation.Quantity
	}
	if held != 2 {
		t.Fatalf("held reservation quantity want 2 got %d", held)
	}
}

func TestUpdateItemIncreaseDeductsDelta(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	const userID = 305
	product := createCartTestProduct(t, db, "cart-update-increase", 5, 10)

	cart, err := svc.CreateCart(userID)
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if _, err := svc.AddItem(cart.ID, userID, product.ID, 2); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	got, err := svc.UpdateItem(cart.ID, userID, product.ID, 5)
	if err != nil {
		t.Fatalf("update item failed: %v", err)
	}
	if got.Items[0].Quantity != 5 {
		t.Fatalf("quantity want 5 got %d", got.Items[0].Quantity)
	}
	if got.Total.String() != "25.00" {
		t.Fatalf("total want 25.00 got %s", got.Total.String())
	}
	if stock := reloadProductStock(t, db, product.ID); stock != 5 {
		t.Fatalf("stock want 5 got %d", stock)
	}

	// 增量部分建立自己的限时预留，而不是并入加购时的那条
	reservations := listUserReservations(t, db, userID, product.ID)
	if len(reservations) != 2 {
		t.Fatalf("reservations want 2 got %d", len(reservations))
	}
	held := 0
	for _, reservation := range reservations {
		held += reservation.Quantity
	}
	if held != 5 {
		t.Fatalf("held reservation quantity want 5 got %d", held)
	}
}

func TestUpdateItemMissingLine(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	const userID = 306
	product := createCartTestProduct(t, db, "cart-update-missing", 5, 10)

	cart, err := svc.CreateCart(userID)
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if _, err := svc.UpdateItem(cart.ID, userID, product.ID, 2); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("want ErrCartItemNotFound got %v", err)
	}
}

func TestRemoveItemRestoresStockAndDropsReservations(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	const userID = 307
	product := createCartTestProduct(t, db, "cart-remove", 5, 10)

	cart, err := svc.CreateCart(userID)
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if _, err := svc.AddItem(cart.ID, userID, product.ID, 3); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	got, err := svc.RemoveItem(cart.ID, userID, product.ID)
	if err != nil {
		t.Fatalf("remove item failed: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("items want 0 got %d", len(got.Items))
	}
	if got.Total.String() != "0.00" {
		t.Fatalf("total want 0.00 got %s", got.Total.String())
	}
	if stock := reloadProductStock(t, db, product.ID); stock != 10 {
		t.Fatalf("stock want 10 got %d", stock)
	}
	if reservations := listUserReservations(t, db, userID, product.ID); len(reservations) != 0 {
		t.Fatalf("reservations want 0 got %d", len(reservations))
	}
}

func TestClearCartRestoresAllStock(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	const userID = 308
	first := createCartTestProduct(t, db, "cart-clear-a", 5, 10)
	second := createCartTestProduct(t, db, "cart-clear-b", 3, 6)

	cart, err := svc.CreateCart(userID)
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if _, err := svc.AddItem(cart.ID, userID, first.ID, 2); err != nil {
		t.Fatalf("add first failed: %v", err)
	}
	if _, err := svc.AddItem(cart.ID, userID, second.ID, 4); err != nil {
		t.Fatalf("add second failed: %v", err)
	}

	got, err := svc.ClearCart(cart.ID, userID)
	if err != nil {
		t.Fatalf("clear cart failed: %v", err)
	}
	if len(got.Items) != 0 || got.Total.String() != "0.00" {
		t.Fatalf("cart should be empty, items %d total %s", len(got.Items), got.Total.String())
	}
	if stock := reloadProductStock(t, db, first.ID); stock != 10 {
		t.Fatalf("first stock want 10 got %d", stock)
	}
	if stock := reloadProductStock(t, db, second.ID); stock != 6 {
		t.Fatalf("second stock want 6 got %d", stock)
	}
	if reservations := listUserReservations(t, db, userID, first.ID); len(reservations) != 0 {
		t.Fatalf("first reservations want 0 got %d", len(reservations))
	}
	if reservations := listUserReservations(t, db, userID, second.ID); len(reservations) != 0 {
		t.Fatalf("second reservations want 0 got %d", len(reservations))
	}

	// 清空空购物车同样成功
	if _, err := svc.ClearCart(cart.ID, userID); err != nil {
		t.Fatalf("clear empty cart failed: %v", err)
	}
}

func TestCreateCartTwice(t *testing.T) {
	svc, _ := setupCartServiceTest(t)
	const userID = 309

	if _, err := svc.CreateCart(userID); err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if _, err := svc.CreateCart(userID); !errors.Is(err, ErrCartAlreadyExists) {
		t.Fatalf("want ErrCartAlreadyExists got %v", err)
	}
}

func TestGetCartChecksOwnership(t *testing.T) {
	svc, _ := setupCartServiceTest(t)
	const userID = 310

	cart, err := svc.CreateCart(userID)
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if _, err := svc.GetCart(cart.ID, userID+1); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("want ErrCartNotFound got %v", err)
	}
	if _, err := svc.GetCart(cart.ID+1000, userID); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("missing cart want ErrCartNotFound got %v", err)
	}
}

func TestUpdateItemRepricesLineAtCurrentPrice(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	const userID = 311
	product := createCartTestProduct(t, db, "cart-update-reprice", 5, 10)

	cart, err := svc.CreateCart(userID)
	if err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if _, err := svc.AddItem(cart.ID, userID, product.ID, 4); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	// 商品调价后更新数量，行小计按当前单价整体重算
	var stored models.Product
	if err := db.First(&stored, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	stored.Price = models.NewMoneyFromDecimal(decimal.NewFromInt(6))
	if err := db.Save(&stored).Error; err != nil {
		t.Fatalf("update price failed: %v", err)
	}

	got, err := svc.UpdateItem(cart.ID, userID, product.ID, 2)
	if err != nil {
		t.Fatalf("update item failed: %v", err)
	}
	if got.Items[0].ItemPrice.String() != "12.00" {
		t.Fatalf("item price want 12.00 got %s", got.Items[0].ItemPrice.String())
	}
	if got.Total.String() != "12.00" {
		t.Fatalf("total want 12.00 got %s", got.Total.String())
	}
	if stock := reloadProductStock(t, db, product.ID); stock != 8 {
		t.Fatalf("stock want 8 got %d", stock)
	}
}
