package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"fashionetl/internal/models"
)

// DatabaseSink upserts every record by primary key id inside one transaction
// per run. A single constraint violation rolls back the whole transaction
// for this sink only.
type DatabaseSink struct {
	db     *sql.DB
	driver string
	table  string
}

// NewDatabaseSink creates a relational sink over an already-opened handle.
// driver must be "postgres" or "sqlite"; it selects the placeholder dialect.
func NewDatabaseSink(db *sql.DB, driver, table string) *DatabaseSink {
	return &DatabaseSink{db: db, driver: driver, table: table}
}

// Name implements Sink.
func (s *DatabaseSink) Name() string {
	return "database"
}

// Migrate creates the product table if it does not exist. Safe to call on
// every run.
func Migrate(ctx context.Context, db *sql.DB, table string) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			price      REAL NOT NULL CHECK (price >= 0),
			currency   TEXT NOT NULL,
			rating     REAL,
			image_url  TEXT,
			category   TEXT,
			scraped_at TEXT NOT NULL
		)`, table)

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	return nil
}

// Load implements Sink. The transaction is started under ctx, but individual
// upserts run to the commit/rollback boundary even if the run is cancelled,
// so the table is never left in a partial state.
func (s *DatabaseSink) Load(ctx context.Context, dataset models.Dataset) Outcome {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return failure(s.Name(), s.classify(err), fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(s.upsertQuery())
	if err != nil {
		return failure(s.Name(), s.classify(err), fmt.Errorf("prepare upsert: %w", err))
	}
	defer stmt.Close()

	for _, rec := range dataset {
		var rating sql.NullFloat64
		if rec.Rating != nil {
			rating = sql.NullFloat64{Float64: *rec.Rating, Valid: true}
		}

		if _, err := stmt.Exec(
			rec.ID,
			rec.Title,
			rec.Price,
			rec.Currency,
			rating,
			nullString(rec.ImageURL),
			nullString(rec.Category),
			rec.ScrapedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		); err != nil {
			return failure(s.Name(), s.classify(err), fmt.Errorf("upsert id %s: %w", rec.ID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return failure(s.Name(), s.classify(err), fmt.Errorf("commit tx: %w", err))
	}

	return success(s.Name(), len(dataset))
}

// upsertQuery builds the INSERT ... ON CONFLICT statement in the placeholder
// dialect of the configured driver.
func (s *DatabaseSink) upsertQuery() string {
	placeholders := make([]string, 8)
	for i := range placeholders {
		if s.driver == "postgres" {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		} else {
			placeholders[i] = "?"
		}
	}

	return fmt.Sprintf(`
		INSERT INTO %s (id, title, price, currency, rating, image_url, category, scraped_at)
		VALUES (%s)
		ON CONFLICT(id) DO UPDATE SET
		  title = excluded.title,
		  price = excluded.price,
		  currency = excluded.currency,
		  rating = excluded.rating,
		  image_url = excluded.image_url,
		  category = excluded.category,
		  scraped_at = excluded.scraped_at
	`, s.table, strings.Join(placeholders, ", "))
}

// classify maps driver errors into the sink error taxonomy. Raw driver
// errors never escape unclassified.
func (s *DatabaseSink) classify(err error) FailureKind {
	if kind, ok := classifyContextErr(err); ok {
		return kind
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 28 is invalid authorization.
		if strings.HasPrefix(string(pqErr.Code), "28") {
			return FailureAuth
		}
	}

	return FailurePersistence
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}

	return sql.NullString{String: s, Valid: true}
}
