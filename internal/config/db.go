package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// DBConfig holds database connection parameters
type DBConfig struct {
	DSN string
}

// LoadDBConfig loads database configuration from environment variables
func LoadDBConfig() (*DBConfig, error) {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	if dbHost == "" || dbPort == "" || dbUser == "" || dbName == "" {
		return nil, fmt.Errorf("database environment variables not set (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME)")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	return &DBConfig{DSN: dsn}, nil
}

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(cfg *DBConfig, log *logrus.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	// Retry connecting to the database a few times
	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(context.Background(), cfg.DSN)
		if err == nil {
			err = pool.Ping(context.Background())
			if err == nil {
				log.Info("Successfully connected to PostgreSQL")
				return pool, nil
			}
		}
		log.Warnf("Failed to connect to database (attempt %d/%d): %v. Retrying in %v...", i+1, maxRetries, err, retryInterval)
		time.Sleep(retryInterval)
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// AutoMigrate creates tables if they don't exist
func AutoMigrate(db *pgxpool.Pool) error {
	sql := `
	CREATE TABLE IF NOT EXISTS clinics (
		id UUID PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		city VARCHAR(100) NOT NULL DEFAULT '',
		region VARCHAR(100) NOT NULL DEFAULT '',
		phone_primary VARCHAR(20) NOT NULL,
		phone_secondary VARCHAR(20) NOT NULL DEFAULT '',
		email VARCHAR(254) NOT NULL DEFAULT '',
		registration_number VARCHAR(50) NOT NULL DEFAULT '',
		invoice_footer TEXT NOT NULL DEFAULT '',
		cash_threshold INTEGER NOT NULL DEFAULT 500,
		mtn_momo_number VARCHAR(20) NOT NULL DEFAULT '',
		orange_money_number VARCHAR(20) NOT NULL DEFAULT '',
		bank_name VARCHAR(100) NOT NULL DEFAULT '',
		bank_account VARCHAR(50) NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		phone VARCHAR(20) UNIQUE NOT NULL,
		email VARCHAR(254) NOT NULL DEFAULT '',
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		password_hash TEXT NOT NULL,
		role VARCHAR(20) NOT NULL CHECK (role IN ('owner', 'admin', 'receptionist', 'nurse')),
		clinic_id UUID NOT NULL REFERENCES clinics(id) ON DELETE CASCADE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		must_change_password BOOLEAN NOT NULL DEFAULT TRUE,
		failed_login_attempts INTEGER NOT NULL DEFAULT 0,
		locked_until TIMESTAMP WITH TIME ZONE,
		last_login_ip TEXT,
		password_changed_at TIMESTAMP WITH TIME ZONE,
		reset_code VARCHAR(6) NOT NULL DEFAULT '',
		reset_code_expires TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS services (
		id UUID PRIMARY KEY,
		clinic_id UUID NOT NULL REFERENCES clinics(id) ON DELETE CASCADE,
		name VARCHAR(200) NOT NULL,
		code VARCHAR(20) NOT NULL,
		category VARCHAR(20) NOT NULL CHECK (category IN ('consultation', 'laboratory', 'pharmacy', 'care')),
		price INTEGER NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		deleted_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (clinic_id, code)
	);

	CREATE TABLE IF NOT EXISTS patients (
		id UUID PRIMARY KEY,
		clinic_id UUID NOT NULL REFERENCES clinics(id) ON DELETE CASCADE,
		patient_id VARCHAR(20) NOT NULL,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		phone VARCHAR(20) NOT NULL DEFAULT '',
		date_of_birth DATE,
		sex VARCHAR(1) NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		blood_group VARCHAR(5) NOT NULL DEFAULT '',
		allergies TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		deleted_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (clinic_id, patient_id)
	);

	CREATE TABLE IF NOT EXISTS visits (
		id UUID PRIMARY KEY,
		clinic_id UUID NOT NULL REFERENCES clinics(id) ON DELETE CASCADE,
		visit_id VARCHAR(20) NOT NULL,
		patient_id UUID NOT NULL REFERENCES patients(id),
		reason TEXT NOT NULL DEFAULT '',
		diagnosis TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL CHECK (status IN ('waiting', 'in_consultation', 'completed', 'cancelled')),
		started_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		ended_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (clinic_id, visit_id)
	);

	CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY,
		clinic_id UUID NOT NULL REFERENCES clinics(id) ON DELETE CASCADE,
		invoice_number VARCHAR(20) NOT NULL,
		patient_id UUID NOT NULL REFERENCES patients(id),
		visit_id UUID REFERENCES visits(id),
		total_amount BIGINT NOT NULL,
		paid_amount BIGINT NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL CHECK (status IN ('pending', 'partial', 'paid', 'cancelled')),
		issued_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (clinic_id, invoice_number)
	);

	CREATE TABLE IF NOT EXISTS invoice_items (
		id UUID PRIMARY KEY,
		invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		service_id UUID NOT NULL REFERENCES services(id),
		label VARCHAR(200) NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price BIGINT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		clinic_id UUID NOT NULL REFERENCES clinics(id) ON DELETE CASCADE,
		payment_id VARCHAR(20) NOT NULL,
		invoice_id UUID NOT NULL REFERENCES invoices(id),
		amount BIGINT NOT NULL,
		method VARCHAR(20) NOT NULL CHECK (method IN ('cash', 'mtn_momo', 'orange_money', 'bank')),
		received_by UUID NOT NULL REFERENCES users(id),
		received_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (clinic_id, payment_id)
	);

	-- Atomic per-(clinic, kind, day) counters backing identifier generation
	CREATE TABLE IF NOT EXISTS sequence_counters (
		clinic_id UUID NOT NULL REFERENCES clinics(id) ON DELETE CASCADE,
		kind VARCHAR(3) NOT NULL,
		day CHAR(8) NOT NULL,
		value INTEGER NOT NULL,
		PRIMARY KEY (clinic_id, kind, day)
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_users_clinic_role ON users(clinic_id, role);
	CREATE INDEX IF NOT EXISTS idx_users_clinic_active ON users(clinic_id, is_active);
	CREATE INDEX IF NOT EXISTS idx_services_clinic_category ON services(clinic_id, category);
	CREATE INDEX IF NOT EXISTS idx_patients_clinic_deleted ON patients(clinic_id, is_deleted);
	CREATE INDEX IF NOT EXISTS idx_visits_clinic_status ON visits(clinic_id, status);
	CREATE INDEX IF NOT EXISTS idx_visits_patient ON visits(patient_id);
	CREATE INDEX IF NOT EXISTS idx_invoices_clinic_status ON invoices(clinic_id, status);
	CREATE INDEX IF NOT EXISTS idx_payments_clinic_day ON payments(clinic_id, received_at);
	`
	_, err := db.Exec(context.Background(), sql)
	if err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}
	return nil
}
