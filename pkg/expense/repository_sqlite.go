package expense

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// SQLiteRepository stores amounts as canonical decimal text and timestamps as
// unix milliseconds.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, record Record) (Record, error) {
	query := `INSERT INTO expense (uid, title, amount, category, notes, recorded_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return Record{}, err
	}
	defer stmt.Close()

	record.Uid = uuid.New()
	record.Timestamp = truncateMillis(record.Timestamp)

	var notes sql.NullString
	if record.Notes != "" {
		notes = sql.NullString{String: record.Notes, Valid: true}
	}

	result, err := stmt.ExecContext(ctx, record.Uid.String(), record.Title, record.Amount.String(),
		record.Category, notes, record.Timestamp.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Record{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not read inserted id: %w", err)
		log.Error(err)
		return Record{}, err
	}
	record.Id = id
	return record, nil
}

func (r *SQLiteRepository) All(ctx context.Context) ([]Record, error) {
	query := `SELECT id, uid, title, amount, category, notes, recorded_at
			  FROM expense
			  ORDER BY id`
	return r.query(ctx, query)
}

func (r *SQLiteRepository) ForDay(ctx context.Context, start, end time.Time) ([]Record, error) {
	query := `SELECT id, uid, title, amount, category, notes, recorded_at
			  FROM expense
			  WHERE recorded_at >= ? AND recorded_at < ?
			  ORDER BY recorded_at DESC, id DESC`
	return r.query(ctx, query, start.UnixMilli(), end.UnixMilli())
}

// CountSimilar narrows by title and time in SQL and compares amounts as
// decimals, so "50" and "50.00" match.
func (r *SQLiteRepository) CountSimilar(ctx context.Context, title string, amount decimal.Decimal, since, until time.Time) (int, error) {
	query := `SELECT amount FROM expense WHERE title = ? AND recorded_at > ? AND recorded_at <= ?`

	rows, err := r.db.QueryContext(ctx, query, title, since.UnixMilli(), until.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not query similar expenses: %w", err)
		log.Error(err)
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return 0, err
		}
		stored, err := decimal.NewFromString(raw)
		if err != nil {
			return 0, fmt.Errorf("stored amount %q is not a decimal: %w", raw, err)
		}
		if stored.Equal(amount) {
			count++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("could not iterate rows: %w", err)
	}
	return count, nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0, 16)
	for rows.Next() {
		var (
			record       Record
			uid          string
			amount       string
			notes        sql.NullString
			recordedAtMs int64
		)
		if err := rows.Scan(&record.Id, &uid, &record.Title, &amount, &record.Category, &notes, &recordedAtMs); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		if record.Uid, err = uuid.Parse(uid); err != nil {
			return nil, fmt.Errorf("expense %d has invalid uid %q: %w", record.Id, uid, err)
		}
		if record.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("expense %d has invalid amount %q: %w", record.Id, amount, err)
		}
		record.Notes = notes.String
		record.Timestamp = time.UnixMilli(recordedAtMs)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate rows: %w", err)
	}
	return records, nil
}
