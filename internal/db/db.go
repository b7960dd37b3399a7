package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	types "github.com/mitanshu610/chat-threads/internal/domain/thread"
	"github.com/mitanshu610/chat-threads/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	LogLevel string `yaml:"log_level"`
	// MaxOpenConns caps the Postgres pool; 0 leaves the driver default.
	MaxOpenConns int `yaml:"max_open_conns"`
}

// PostgresDSN returns cfg.DSN when set, otherwise a URL built from the parts.
func (c Config) PostgresDSN() string {
	if strings.TrimSpace(c.DSN) != "" {
		return c.DSN
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Name, sslMode)
}

type Service struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

func Open(cfg Config, log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService", "driver", cfg.Driver)
	gormCfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	}

	var (
		conn *gorm.DB
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverPostgres:
		serviceLog.Info("Connecting to Postgres...", "host", cfg.Host, "name", cfg.Name)
		conn, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), gormCfg)
		if err != nil {
			serviceLog.Error("Failed to connect to Postgres", "error", err)
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if cfg.MaxOpenConns > 0 {
			sqlDB, err := conn.DB()
			if err != nil {
				return nil, fmt.Errorf("postgres handle: %w", err)
			}
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		return &Service{db: conn, driver: DriverPostgres, log: serviceLog}, nil
	case DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		serviceLog.Info("Opening SQLite...", "dsn", dsn)
		conn, err = gorm.Open(sqliteDialector(dsn), gormCfg)
		if err != nil {
			serviceLog.Error("Failed to open SQLite", "error", err)
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		// SQLite serialises writers; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
		return &Service{db: conn, driver: DriverSQLite, log: serviceLog}, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Driver() string { return s.driver }

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Service) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// AutoMigrateAll creates or updates the thread tables. On Postgres it also
// installs the foreign keys between them.
func (s *Service) AutoMigrateAll() error { return AutoMigrate(s.db, s.log) }

// AutoMigrate runs the thread migrations on any handle. The foreign key step
// runs when theDB is a Postgres connection.
func AutoMigrate(theDB *gorm.DB, log *logger.Logger) error {
	log.Info("Auto migrating thread tables...")
	if err := theDB.AutoMigrate(types.Models()...); err != nil {
		log.Error("Auto migration failed for thread tables", "error", err)
		return fmt.Errorf("auto migrate: %w", err)
	}
	if theDB.Dialector.Name() != DriverPostgres {
		return nil
	}
	log.Info("Configuring foreign key relationships for thread tables...")
	for _, fk := range foreignKeys {
		if err := ensureForeignKey(theDB, log, fk); err != nil {
			return err
		}
	}
	return nil
}

type foreignKey struct {
	Name, Table, Column, RefTable, RefColumn string
}

var foreignKeys = []foreignKey{
	{"fk_thread_message_thread_uuid", "thread_message", "thread_uuid", "thread", "uuid"},
	{"fk_thread_message_parent_message_id", "thread_message", "parent_message_id", "thread_message", "id"},
	{"fk_thread_message_summary_thread_uuid", "thread_message_summary", "thread_uuid", "thread", "uuid"},
	{"fk_thread_message_summary_thread_message_id", "thread_message_summary", "thread_message_id", "thread_message", "id"},
}

func ensureForeignKey(theDB *gorm.DB, log *logger.Logger, fk foreignKey) error {
	var n int64
	if err := theDB.Raw(`SELECT COUNT(*) FROM pg_constraint WHERE conname = ?`, fk.Name).Scan(&n).Error; err != nil {
		return fmt.Errorf("lookup %s: %w", fk.Name, err)
	}
	if n > 0 {
		return nil
	}
	stmt := fmt.Sprintf(`ALTER TABLE %q ADD CONSTRAINT %q FOREIGN KEY (%q) REFERENCES %q (%q)`,
		fk.Table, fk.Name, fk.Column, fk.RefTable, fk.RefColumn)
	if err := theDB.Exec(stmt).Error; err != nil {
		log.Error("Failed to add foreign key", "constraint", fk.Name, "error", err)
		return fmt.Errorf("add %s: %w", fk.Name, err)
	}
	return nil
}

func gormLogLevel(level string) gormLogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "info":
		return gormLogger.Info
	case "warn":
		return gormLogger.Warn
	case "error":
		return gormLogger.Error
	default:
		return gormLogger.Silent
	}
}
