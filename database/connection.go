package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

var DB *sql.DB

func InitDB() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	var psqlInfo string

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL != "" {
		psqlInfo = databaseURL
	} else {
		host := os.Getenv("DB_HOST")
		portstr := os.Getenv("DB_PORT")
		port, err := strconv.Atoi(portstr)
		if err != nil {
			return fmt.Errorf("invalid DB_PORT, must be a number: %w", err)
		}
		user := os.Getenv("DB_USER")
		password := os.Getenv("DB_PASSWORD")
		dbname := os.Getenv("DB_NAME")
		sslmode := os.Getenv("DB_SSLMODE")

		if sslmode == "" {
			sslmode = "disable"
		}

		psqlInfo = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(5)

	if err = DB.Ping(); err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	log.Println("Successfully connected to database")

	if err := runMigrations(); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}

	return nil
}

func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

func runMigrations() error {
	migrations := []string{
		// Owner accounts. Every domain row below carries an owner_id and all
		// queries are scoped by it.
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			user_id VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			phone VARCHAR(50),
			password VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS mines (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) UNIQUE NOT NULL,
			location VARCHAR(200) DEFAULT '',
			status VARCHAR(10) NOT NULL DEFAULT 'Active' CHECK (status IN ('Active', 'Inactive')),
			owner_id VARCHAR(255) NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			latitude NUMERIC(9,6) NOT NULL DEFAULT -13.000000,
			longitude NUMERIC(9,6) NOT NULL DEFAULT 28.000000,
			license_doc TEXT,
			license_expiry DATE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS equipment (
			id SERIAL PRIMARY KEY,
			serial_number VARCHAR(50) NOT NULL,
			type VARCHAR(2) NOT NULL DEFAULT 'OT',
			status VARCHAR(12) NOT NULL DEFAULT 'Operational' CHECK (status IN ('Operational', 'Maintenance', 'Down')),
			mine_id INTEGER NOT NULL REFERENCES mines(id) ON DELETE CASCADE,
			owner_id VARCHAR(255) NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			last_service DATE,
			last_service_hours NUMERIC(8,1) NOT NULL DEFAULT 0,
			hours_used NUMERIC(8,1) NOT NULL DEFAULT 0,
			purchase_date DATE,
			warranty_expiry DATE,
			fuel_type VARCHAR(20) NOT NULL DEFAULT 'Diesel',
			description TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(mine_id, serial_number)
		)`,
		`CREATE TABLE IF NOT EXISTS employees (
			id SERIAL PRIMARY KEY,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			nrc VARCHAR(15) UNIQUE NOT NULL,
			napsa_number VARCHAR(20) UNIQUE,
			role VARCHAR(50) NOT NULL,
			mine_id INTEGER NOT NULL REFERENCES mines(id) ON DELETE CASCADE,
			owner_id VARCHAR(255) NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			phone VARCHAR(15) DEFAULT '',
			receive_sms BOOLEAN DEFAULT true,
			date_joined DATE NOT NULL DEFAULT CURRENT_DATE,
			is_active BOOLEAN DEFAULT true,
			last_safety_training DATE,
			photo TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(mine_id, nrc)
		)`,
		`CREATE TABLE IF NOT EXISTS production_records (
			id SERIAL PRIMARY KEY,
			date DATE NOT NULL DEFAULT CURRENT_DATE,
			quantity NUMERIC(10,2) NOT NULL CHECK (quantity >= 0),
			mine_id INTEGER NOT NULL REFERENCES mines(id) ON DELETE CASCADE,
			owner_id VARCHAR(255) NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			notes TEXT DEFAULT '',
			logged_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(mine_id, date)
		)`,
		// One row per employee, alert type and calendar day. Scheduled jobs
		// insert here before sending, so re-runs inside the same window
		// cannot double-send.
		`CREATE TABLE IF NOT EXISTS notification_log (
			id SERIAL PRIMARY KEY,
			employee_id INTEGER NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			alert_type VARCHAR(30) NOT NULL,
			date DATE NOT NULL,
			sent_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(employee_id, alert_type, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mines_owner ON mines(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_equipment_owner ON equipment(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_equipment_mine ON equipment(mine_id)`,
		`CREATE INDEX IF NOT EXISTS idx_employees_owner ON employees(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_employees_mine ON employees(mine_id)`,
		`CREATE INDEX IF NOT EXISTS idx_production_owner ON production_records(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_production_mine_date ON production_records(mine_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_production_date ON production_records(date)`,
		`CREATE INDEX IF NOT EXISTS idx_notification_log_date ON notification_log(date)`,
	}

	for _, migration := range migrations {
		if _, err := DB.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, migration)
		}
	}

	log.Println("Migrations completed successfully")
	return nil
}
