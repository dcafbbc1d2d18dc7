package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Owujuah/apex-living/config"
	"github.com/Owujuah/apex-living/internal/api"
	"github.com/Owujuah/apex-living/internal/database"
	"github.com/Owujuah/apex-living/internal/models"
	"github.com/Owujuah/apex-living/internal/notifier"
	"github.com/Owujuah/apex-living/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}

	bus := notifier.NewBus()
	defer bus.Close()

	svc := api.BuildServices(cfg, db, rdb, bus)

	// Contract and wallet writes touch user counters outside the user
	// service, so drop the cached copy whenever a user change is announced.
	bus.Subscribe(notifier.KindUser, nil, func(e notifier.Event) {
		svc.Users.InvalidateCache(context.Background(), e.ID)
	})

	if err := initAdminUser(db); err != nil {
		log.Fatalf("failed to init admin user: %v", err)
	}
	if err := initDefaultGateway(db, cfg); err != nil {
		log.Fatalf("failed to init deposit gateway: %v", err)
	}

	router := api.NewRouter(cfg, svc)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

func initAdminUser(db *gorm.DB) error {
	adminEmail := "admin@apexliving.io"
	adminPassword := "ChangeMe1234"

	var admin models.User
	err := db.Where("email = ?", adminEmail).First(&admin).Error
	if err == nil {
		log.Println("Admin user already exists.")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin = models.User{
		ID:          uuid.New().String(),
		Email:       adminEmail,
		DisplayName: "Administrator",
		Password:    string(hashedPassword),
		Role:        models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Println("Admin user created successfully!")
	return nil
}

func initDefaultGateway(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&models.GatewayConfig{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	driverConfig, err := json.Marshal(map[string]string{
		"address": cfg.DepositAddress,
		"secret":  cfg.GatewaySecret,
	})
	if err != nil {
		return err
	}

	gateway := models.GatewayConfig{
		UUID:   uuid.New().String(),
		Name:   "USDT TRC20",
		Driver: "usdt",
		Config: datatypes.JSON(driverConfig),
		Enable: true,
	}
	if err := db.Create(&gateway).Error; err != nil {
		return err
	}
	log.Println("Default USDT gateway created.")
	return nil
}
