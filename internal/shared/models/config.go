package models

import "time"

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	MaxConns int32  `yaml:"max_conns"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	// Addr is either host:port or a redis:// URL.
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	AccessTTL  time.Duration `yaml:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
}

type ServicesConfig struct {
	AuthService    string `yaml:"auth_service"`
	DriverService  string `yaml:"driver_service"`
	PickupService  string `yaml:"pickup_service"`
	RewardsService string `yaml:"rewards_service"`
	AdminService   string `yaml:"admin_service"`
	AllInOne       string `yaml:"all_in_one"`
}

// PastSchedulePolicy decides what happens to a pickup scheduled before now.
type PastSchedulePolicy string

const (
	PastScheduleReject PastSchedulePolicy = "reject"
	PastScheduleClamp  PastSchedulePolicy = "clamp"
)

type PickupConfig struct {
	DefaultLatitude  float64            `yaml:"default_latitude"`
	DefaultLongitude float64            `yaml:"default_longitude"`
	DefaultAddress   string             `yaml:"default_address"`
	CompletionPoints int                `yaml:"completion_points"`
	PastSchedule     PastSchedulePolicy `yaml:"past_schedule"`
}

type DonationConfig struct {
	CompletionPoints int `yaml:"completion_points"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Services ServicesConfig `yaml:"services"`
	Pickup   PickupConfig   `yaml:"pickup"`
	Donation DonationConfig `yaml:"donation"`
	Log      LogConfig      `yaml:"log"`
}
