package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// PostgresRepository stores amounts as NUMERIC. Values cross the driver
// boundary as text to keep them exact.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, record Record) (Record, error) {
	query := `INSERT INTO expense (uid, title, amount, category, notes, recorded_at)
			  VALUES ($1, $2, $3::numeric, $4, NULLIF($5, ''), $6)
			  RETURNING id`

	record.Uid = uuid.New()
	record.Timestamp = truncateMillis(record.Timestamp)

	err := r.db.QueryRow(ctx, query, record.Uid, record.Title, record.Amount.String(),
		record.Category, record.Notes, record.Timestamp).Scan(&record.Id)
	if err != nil {
		err := fmt.Errorf("could not insert expense: %w", err)
		log.Error(err)
		return Record{}, err
	}
	return record, nil
}

func (r *PostgresRepository) All(ctx context.Context) ([]Record, error) {
	query := `SELECT id, uid::text, title, amount::text, category, COALESCE(notes, ''), recorded_at
			  FROM expense
			  ORDER BY id`
	return r.query(ctx, query)
}

func (r *PostgresRepository) ForDay(ctx context.Context, start, end time.Time) ([]Record, error) {
	query := `SELECT id, uid::text, title, amount::text, category, COALESCE(notes, ''), recorded_at
			  FROM expense
			  WHERE recorded_at >= $1 AND recorded_at < $2
			  ORDER BY recorded_at DESC, id DESC`
	return r.query(ctx, query, start, end)
}

func (r *PostgresRepository) CountSimilar(ctx context.Context, title string, amount decimal.Decimal, since, until time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM expense
			  WHERE title = $1 AND amount = $2::numeric AND recorded_at > $3 AND recorded_at <= $4`

	var count int
	err := r.db.QueryRow(ctx, query, title, amount.String(), since, until).Scan(&count)
	if err != nil {
		err := fmt.Errorf("could not count similar expenses: %w", err)
		log.Error(err)
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query expenses: %w", err)
		log.Error(err)
		return nil, err
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var (
			record     Record
			uid        string
			amount     string
			recordedAt time.Time
		)
		if err := row.Scan(&record.Id, &uid, &record.Title, &amount, &record.Category, &record.Notes, &recordedAt); err != nil {
			return Record{}, err
		}
		parsedUid, err := uuid.Parse(uid)
		if err != nil {
			return Record{}, fmt.Errorf("expense %d has invalid uid %q: %w", record.Id, uid, err)
		}
		record.Uid = parsedUid
		if record.Amount, err = decimal.NewFromString(amount); err != nil {
			return Record{}, fmt.Errorf("expense %d has invalid amount %q: %w", record.Id, amount, err)
		}
		record.Timestamp = truncateMillis(recordedAt)
		return record, nil
	})
	if err != nil {
		err := fmt.Errorf("could not read expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	return records, nil
}
