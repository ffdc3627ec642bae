package service

import (
	"strings"

	"github.com/holdcart/internal/models"
	"github.com/holdcart/internal/repository"
)

// ProductService 商品业务服务
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// ProductUpdate 商品部分更新字段（nil 表示不修改）
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *models.Money
	Stock       *int
}

// List 商品列表
func (s *ProductService) List() ([]models.Product, error) {
	return s.productRepo.List()
}

// Get 获取商品详情
func (s *ProductService) Get(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(name, description string, price models.Money, stock int) (*models.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" || !price.IsPositive() || stock < 0 {
		return nil, ErrInvalidProduct
	}
	product := &models.Product{
		Name:        name,
		Description: strings.TrimSpace(description),
		Price:       price,
		Stock:       stock,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update 部分更新商品
func (s *ProductService) Update(id uint, update ProductUpdate) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, ErrInvalidProduct
		}
		product.Name = name
	}
	if update.Description != nil {
		product.Description = strings.TrimSpace(*update.Description)
	}
	if update.Price != nil {
		if !update.Price.IsPositive() {
			return nil, ErrInvalidProduct
		}
		product.Price = *update.Price
	}
	if update.Stock != nil {
		if *update.Stock < 0 {
			return nil, ErrInvalidProduct
		}
		product.Stock = *update.Stock
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 删除商品
func (s *ProductService) Delete(id uint) error {
	affected, err := s.productRepo.Delete(id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
