package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Owujuah/apex-living/internal/models"
	"github.com/Owujuah/apex-living/internal/payment"
	"github.com/Owujuah/apex-living/internal/payment/usdt"
)

var ErrGatewayNotFound = errors.New("gateway not found")
var ErrGatewayDisabled = errors.New("gateway is disabled")
var ErrUnsupportedDriver = errors.New("unsupported gateway driver")

// GatewayService manages deposit gateway configurations and builds the
// configured driver for the wallet's deposit flow.
type GatewayService struct {
	db *gorm.DB
}

func NewGatewayService(db *gorm.DB) *GatewayService {
	return &GatewayService{db: db}
}

func (s *GatewayService) GetEnabledGateways(ctx context.Context) ([]models.GatewayConfig, error) {
	var gateways []models.GatewayConfig
	if err := s.db.WithContext(ctx).Where("enable = ?", true).Find(&gateways).Error; err != nil {
		return nil, err
	}
	return gateways, nil
}

func (s *GatewayService) GetAllGateways(ctx context.Context) ([]models.GatewayConfig, error) {
	var gateways []models.GatewayConfig
	if err := s.db.WithContext(ctx).Find(&gateways).Error; err != nil {
		return nil, err
	}
	return gateways, nil
}

func (s *GatewayService) CreateGateway(ctx context.Context, name, driver string, config map[string]interface{}, enable bool) (*models.GatewayConfig, error) {
	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}

	gateway := &models.GatewayConfig{
		UUID:   uuid.New().String(),
		Name:   name,
		Driver: driver,
		Config: datatypes.JSON(configJSON),
		Enable: enable,
	}

	if err := s.db.WithContext(ctx).Create(gateway).Error; err != nil {
		return nil, err
	}
	return gateway, nil
}

func (s *GatewayService) UpdateGateway(ctx context.Context, id uint, name string, config map[string]interface{}, enable *bool) (*models.GatewayConfig, error) {
	var gateway models.GatewayConfig
	if err := s.db.WithContext(ctx).First(&gateway, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGatewayNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if config != nil {
		configJSON, err := json.Marshal(config)
		if err != nil {
			return nil, err
		}
		updates["config"] = datatypes.JSON(configJSON)
	}
	if enable != nil {
		updates["enable"] = *enable
	}

	if err := s.db.WithContext(ctx).Model(&gateway).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &gateway, nil
}

func (s *GatewayService) DeleteGateway(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.GatewayConfig{}, id).Error
}

// DriverFor builds the configured driver for a gateway by UUID.
func (s *GatewayService) DriverFor(ctx context.Context, gatewayUUID string) (payment.Driver, error) {
	var gateway models.GatewayConfig
	if err := s.db.WithContext(ctx).Where("uuid = ?", gatewayUUID).First(&gateway).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGatewayNotFound
		}
		return nil, err
	}
	if !gateway.Enable {
		return nil, ErrGatewayDisabled
	}

	var driver payment.Driver
	switch gateway.Driver {
	case "usdt":
		driver = usdt.NewUSDTDriver()
	default:
		return nil, ErrUnsupportedDriver
	}

	var configMap map[string]interface{}
	if err := json.Unmarshal(gateway.Config, &configMap); err != nil {
		return nil, err
	}
	if err := driver.SetConfig(configMap); err != nil {
		return nil, err
	}
	return driver, nil
}

// DefaultDriver returns the first enabled gateway's driver, used by the
// wallet deposit flow when the client does not pick one.
func (s *GatewayService) DefaultDriver(ctx context.Context) (payment.Driver, error) {
	gateways, err := s.GetEnabledGateways(ctx)
	if err != nil {
		return nil, err
	}
	if len(gateways) == 0 {
		return nil, ErrGatewayNotFound
	}
	return s.DriverFor(ctx, gateways[0].UUID)
}
