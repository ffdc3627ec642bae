package repository

import (
	"testing"

	"github.com/holdcart/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupProductRepositoryTest(t *testing.T) (*GormProductRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate product failed: %v", err)
	}
	return NewProductRepository(db), db
}

func createStockProduct(t *testing.T, repo *GormProductRepository, name string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:  name,
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Stock: stock,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestDeductAndRestoreStock(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	product := createStockProduct(t, repo, "stock-deduct-restore", 10)

	affected, err := repo.DeductStock(product.ID, 4)
	if err != nil {
		t.Fatalf("deduct stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("deduct affected want 1 got %d", affected)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Stock != 6 {
		t.Fatalf("stock want 6 got %d", got.Stock)
	}

	// 超过剩余库存时不扣减
	affected, err = repo.DeductStock(product.ID, 7)
	if err != nil {
		t.Fatalf("deduct over available failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("deduct over available affected want 0 got %d", affected)
	}
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Stock != 6 {
		t.Fatalf("stock after rejected deduct want 6 got %d", got.Stock)
	}

	affected, err = repo.RestoreStock(product.ID, 4)
	if err != nil {
		t.Fatalf("restore stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("restore affected want 1 got %d", affected)
	}
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Stock != 10 {
		t.Fatalf("stock after restore want 10 got %d", got.Stock)
	}
}

func TestDeductStockRejectsInvalidQuantity(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	product := createStockProduct(t, repo, "stock-invalid-quantity", 5)

	if _, err := repo.DeductStock(product.ID, 0); err == nil {
		t.Fatalf("deduct zero quantity should fail")
	}
	if _, err := repo.RestoreStock(product.ID, -1); err == nil {
		t.Fatalf("restore negative quantity should fail")
	}
}

func TestDeleteProduct(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	product := createStockProduct(t, repo, "stock-delete", 5)

	affected, err := repo.Delete(product.ID)
	if err != nil {
		t.Fatalf("delete product failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("delete affected want 1 got %d", affected)
	}

	got, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("get deleted product failed: %v", err)
	}
	if got != nil {
		t.Fatalf("deleted product should not be found")
	}

	affected, err = repo.Delete(product.ID)
	if err != nil {
		t.Fatalf("delete again failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("delete again affected want 0 got %d", affected)
	}
}
