package storage

import (
	"fmt"

	"crudapi/internal/config"
	"crudapi/internal/models"
	"crudapi/internal/repositories"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Storage bundles the repositories backing the application.
type Storage struct {
	Users     repositories.UserRepository
	Addresses repositories.AddressRepository
	// DB is nil for the memory driver.
	DB *gorm.DB
}

// Open connects to the configured backend and migrates the schema.
func Open(driver, dsn string, log logrus.FieldLogger) (*Storage, error) {
	if driver == config.DriverMemory {
		store := repositories.NewMemoryStore()
		log.Warn("using in-memory storage, data will not survive a restart")
		return &Storage{Users: store.Users(), Addresses: store.Addresses()}, nil
	}

	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.WithField("driver", driver).Info("database connected")
	return FromDB(db), nil
}

// FromDB builds GORM backed repositories on an existing connection.
func FromDB(db *gorm.DB) *Storage {
	return &Storage{
		Users:     repositories.NewGORMUserRepository(db),
		Addresses: repositories.NewGORMAddressRepository(db),
		DB:        db,
	}
}

// Migrate creates or updates the users and addresses tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Address{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return caseSensitiveEmails(db)
}

// caseSensitiveEmails gives users.email a binary collation on MySQL, whose
// default collations compare case-insensitively. Email lookups and the
// unique index then match exactly as stored, like on the other backends.
func caseSensitiveEmails(db *gorm.DB) error {
	if db.Dialector.Name() != config.DriverMySQL {
		return nil
	}
	err := db.Exec("ALTER TABLE `users` MODIFY `email` varchar(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL").Error
	if err != nil {
		return fmt.Errorf("failed to set email collation: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool, if any.
func (s *Storage) Close() error {
	if s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverMySQL:
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
