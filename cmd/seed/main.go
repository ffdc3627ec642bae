package main

import (
	"fmt"
	"os"

	"github.com/holdcart/internal/config"
	"github.com/holdcart/internal/constants"
	"github.com/holdcart/internal/logger"
	"github.com/holdcart/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 初始化管理员账号
	adminEmail := os.Getenv("HC_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@holdcart.local"
	}
	adminPassword := os.Getenv("HC_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin12345"
		stdLog.Printf("HC_ADMIN_PASSWORD not set, using default dev password")
	}

	var existingAdmin models.User
	if err := models.DB.Where("email = ?", adminEmail).First(&existingAdmin).Error; err != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash admin password: %v", err)
		}
		admin := models.User{
			Name:         "Admin",
			Email:        adminEmail,
			PasswordHash: string(hash),
			Role:         constants.UserRoleAdmin,
		}
		if err := models.DB.Create(&admin).Error; err != nil {
			stdLog.Printf("Failed to create admin user: %v", err)
		} else {
			stdLog.Printf("Created admin user: %s", adminEmail)
		}
	} else {
		stdLog.Printf("Admin user already exists: %s", adminEmail)
	}

	// 添加演示商品
	products := []models.Product{
		{
			Name:        "Wireless Bluetooth Earphones",
			Description: "High quality sound, long battery life, comfortable to wear",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
			Stock:       50,
		},
		{
			Name:        "Smart Watch",
			Description: "Health monitoring, fitness tracking, message notifications",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(199.99)),
			Stock:       30,
		},
		{
			Name:        "Portable Power Bank",
			Description: "High capacity, fast charging, multi-device compatible",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(49.99)),
			Stock:       100,
		},
		{
			Name:        "Multi-function Backpack",
			Description: "Large capacity, waterproof and anti-theft, USB charging port",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(79.99)),
			Stock:       40,
		},
		{
			Name:        "Demo Product - Low Stock",
			Description: "用于演示库存预留与释放：初始库存很低",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(29.90)),
			Stock:       3,
		},
		{
			Name:        "Demo Product - Sold Out",
			Description: "用于演示 insufficient stock 响应：库存为零",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(39.90)),
			Stock:       0,
		},
	}

	for _, prod := range products {
		var existing models.Product
		if err := models.DB.Where("name = ?", prod.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Name, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Name)
			}
		} else {
			existing.Description = prod.Description
			existing.Price = prod.Price
			existing.Stock = prod.Stock
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Name, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.Name)
			}
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 1 Admin user")
	fmt.Println("- 6 Products (含库存演示商品)")
}
