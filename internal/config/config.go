package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/pkg/calendar"
	"github.com/geoattend/attendance-backend-go/internal/pkg/geo"
	"github.com/joho/godotenv"
)

var ErrOfficeNotConfigured = errors.New("OFFICE_LAT and OFFICE_LNG must be set to numeric coordinates")

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Office     OfficeConfig
	Attendance AttendanceConfig
	Reconcile  ReconcileConfig
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	Timeout  time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Version        string
	AllowedOrigins []string
}

// OfficeConfig describes the single office geofence and its working day.
type OfficeConfig struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	StartTime    calendar.TimeOfDay
	UTCOffset    time.Duration
}

type AttendanceConfig struct {
	MinFullDayHours float64
}

// ReconcileConfig controls the day-end absence sweep.
type ReconcileConfig struct {
	Time         calendar.TimeOfDay
	TrackedRoles []string
	ChunkSize    int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	storeTimeout, err := time.ParseDuration(getEnv("STORE_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEOUT: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:   getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		Timeout:  storeTimeout,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	origins := getEnvSlice("CORS_ALLOWED_ORIGINS")
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		AllowedOrigins: origins,
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "24h"),
	}

	// Office configuration
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(os.Getenv("OFFICE_LAT")), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(os.Getenv("OFFICE_LNG")), 64)
	if errLat != nil || errLng != nil {
		return nil, ErrOfficeNotConfigured
	}
	radius, err := strconv.ParseFloat(getEnv("OFFICE_RADIUS", "200"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OFFICE_RADIUS: %w", err)
	}
	officeStart, err := calendar.ParseTimeOfDay(getEnv("OFFICE_START_TIME", "09:00"))
	if err != nil {
		return nil, fmt.Errorf("invalid OFFICE_START_TIME: %w", err)
	}
	offset, err := calendar.ParseUTCOffset(getEnv("OFFICE_UTC_OFFSET", "+05:00"))
	if err != nil {
		return nil, fmt.Errorf("invalid OFFICE_UTC_OFFSET: %w", err)
	}

	config.Office = OfficeConfig{
		Latitude:     lat,
		Longitude:    lng,
		RadiusMeters: radius,
		StartTime:    officeStart,
		UTCOffset:    offset,
	}

	minHours, err := strconv.ParseFloat(getEnv("MIN_FULL_DAY_HOURS", "4.5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MIN_FULL_DAY_HOURS: %w", err)
	}
	config.Attendance = AttendanceConfig{MinFullDayHours: minHours}

	// Reconciler configuration
	reconcileAt, err := calendar.ParseTimeOfDay(getEnv("RECONCILE_TIME", "20:10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_TIME: %w", err)
	}
	chunkSize, err := strconv.Atoi(getEnv("RECONCILE_CHUNK_SIZE", "500"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_CHUNK_SIZE: %w", err)
	}
	roles := getEnvSlice("TRACKED_ROLES")
	if len(roles) == 0 {
		roles = []string{"employee", "hr"}
	}
	config.Reconcile = ReconcileConfig{
		Time:         reconcileAt,
		TrackedRoles: roles,
		ChunkSize:    chunkSize,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case StorageDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q", StorageDriverPostgres, StorageDriverMemory)
	}
	if c.Database.Timeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if err := c.OfficeLocation().Validate(); err != nil {
		return fmt.Errorf("office location: %w", err)
	}
	if c.Office.RadiusMeters <= 0 {
		return fmt.Errorf("OFFICE_RADIUS must be positive")
	}
	if c.Attendance.MinFullDayHours <= 0 || c.Attendance.MinFullDayHours > 24 {
		return fmt.Errorf("MIN_FULL_DAY_HOURS must be within (0, 24]")
	}
	if c.Reconcile.ChunkSize <= 0 {
		return fmt.Errorf("RECONCILE_CHUNK_SIZE must be positive")
	}
	return nil
}

// OfficeLocation returns the office center point.
func (c *Config) OfficeLocation() geo.Point {
	return geo.Point{Latitude: c.Office.Latitude, Longitude: c.Office.Longitude}
}

// Fence returns the office geofence.
func (c *Config) Fence() geo.Fence {
	return geo.Fence{Center: c.OfficeLocation(), Radius: c.Office.RadiusMeters}
}

// Calendar builds the office-local calendar backed by the wall clock.
func (c *Config) Calendar() *calendar.Calendar {
	return calendar.New(c.Office.UTCOffset, c.Office.StartTime, time.Now)
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
