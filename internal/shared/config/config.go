package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"restaurant-waste/internal/shared/models"
)

// envPattern matches ${VAR} and ${VAR:-default}.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

func LoadConfig(filename string) (*models.Config, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (*models.Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(ExpandEnv(string(raw))), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ExpandEnv substitutes environment variables, falling back to the inline
// default when the variable is unset.
func ExpandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(m string) string {
		parts := envPattern.FindStringSubmatch(m)
		if v, ok := os.LookupEnv(parts[1]); ok {
			return v
		}
		return parts[2]
	})
}

func Defaults() *models.Config {
	return &models.Config{
		Database: models.DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "waste",
			Password: "waste",
			Database: "restaurant_waste",
			MaxConns: 10,
		},
		RabbitMQ: models.RabbitMQConfig{Host: "localhost", Port: "5672", User: "guest", Password: "guest"},
		Redis:    models.RedisConfig{Addr: "localhost:6379"},
		JWT:      models.JWTConfig{AccessTTL: 15 * time.Minute, RefreshTTL: 7 * 24 * time.Hour},
		Services: models.ServicesConfig{
			AuthService:    "4000",
			DriverService:  "3001",
			PickupService:  "3000",
			RewardsService: "3002",
			AdminService:   "3004",
			AllInOne:       "8080",
		},
		Pickup: models.PickupConfig{
			DefaultLatitude:  7.0731,
			DefaultLongitude: 125.6128,
			DefaultAddress:   "Davao City",
			CompletionPoints: 10,
			PastSchedule:     models.PastScheduleReject,
		},
		Donation: models.DonationConfig{CompletionPoints: 20},
		Log:      models.LogConfig{Level: "info", Format: "text"},
	}
}

func Validate(cfg *models.Config) error {
	var errs []error
	if cfg.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if cfg.JWT.AccessTTL <= 0 || cfg.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("jwt ttl values must be positive"))
	}
	if cfg.Pickup.CompletionPoints <= 0 {
		errs = append(errs, errors.New("pickup.completion_points must be positive"))
	}
	if cfg.Donation.CompletionPoints <= 0 {
		errs = append(errs, errors.New("donation.completion_points must be positive"))
	}
	switch cfg.Pickup.PastSchedule {
	case models.PastScheduleReject, models.PastScheduleClamp:
	default:
		errs = append(errs, fmt.Errorf("pickup.past_schedule must be reject or clamp, got %q", cfg.Pickup.PastSchedule))
	}
	if cfg.Pickup.DefaultLatitude < -90 || cfg.Pickup.DefaultLatitude > 90 ||
		cfg.Pickup.DefaultLongitude < -180 || cfg.Pickup.DefaultLongitude > 180 {
		errs = append(errs, errors.New("pickup default coordinates out of range"))
	}
	return errors.Join(errs...)
}
