package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/repository"
)

type ClientRepo struct{ db *pgxpool.Pool }

func NewClientRepo(db *pgxpool.Pool) repository.ClientRepository { return &ClientRepo{db: db} }

const clientCols = `id, name, address, employee_id, created_at`

func scanClient(row pgx.Row) (models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.EmployeeID, &c.CreatedAt)
	return c, err
}

func (r *ClientRepo) List(ctx context.Context, employeeID string) ([]models.Client, error) {
	sql := `SELECT ` + clientCols + ` FROM clients`
	var args []any
	if employeeID != "" {
		sql += ` WHERE employee_id = $1`
		args = append(args, employeeID)
	}
	sql += ` ORDER BY name`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ClientRepo) Get(ctx context.Context, id string) (*models.Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, `SELECT `+clientCols+` FROM clients WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepo) Create(ctx context.Context, c *models.Client) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO clients (id, name, address, employee_id, created_at)
		VALUES ($1,$2,$3,$4,COALESCE($5, now()))
		RETURNING created_at`,
		c.ID, c.Name, c.Address, c.EmployeeID, nullTime(c.CreatedAt)).
		Scan(&c.CreatedAt)
}

// CreateMany inserts all clients in one transaction.
func (r *ClientRepo) CreateMany(ctx context.Context, cs []models.Client) error {
	if len(cs) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, c := range cs {
		batch.Queue(`
			INSERT INTO clients (id, name, address, employee_id, created_at)
			VALUES ($1,$2,$3,$4,COALESCE($5, now()))`,
			c.ID, c.Name, c.Address, c.EmployeeID, nullTime(c.CreatedAt))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ClientRepo) CountByName(ctx context.Context, name string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE name=$1`, name).Scan(&n)
	return n, err
}

func (r *ClientRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
