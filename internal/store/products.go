package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hakimbdev/tonstoremarketspot/internal/market"
	"github.com/hakimbdev/tonstoremarketspot/internal/ton"
)

var ErrNotFound = errors.New("not found")

type ProductRepo struct{ DB *pgxpool.Pool }

const productCols = `id, name, type, price_nano, value, extra_data, created_at, updated_at`

func scanProduct(row pgx.Row) (market.Product, error) {
	var (
		p         market.Product
		typ       string
		priceNano int64
		value     *int64
		extra     []byte
	)
	err := row.Scan(&p.ID, &p.Name, &typ, &priceNano, &value, &extra, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	p.Type = market.ProductType(typ)
	p.Price = ton.Amount(priceNano)
	p.Meta, err = market.MetaFromWire(p.Type, value, extra)
	return p, err
}

func (r *ProductRepo) List(ctx context.Context) ([]market.Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY type, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) Get(ctx context.Context, id string) (market.Product, error) {
	return scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
}

func (r *ProductRepo) Create(ctx context.Context, p market.Product) (market.Product, error) {
	if err := p.Validate(); err != nil {
		return market.Product{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	value, extra, err := market.MetaWire(p.Meta)
	if err != nil {
		return market.Product{}, err
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO products(id, name, type, price_nano, value, extra_data, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.Name, string(p.Type), p.Price.Nano(), value, extra, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return market.Product{}, err
	}
	return p, nil
}

// Update replaces the mutable fields. Type is immutable after creation;
// a mismatching metadata variant is rejected before touching the row.
func (r *ProductRepo) Update(ctx context.Context, p market.Product) (market.Product, error) {
	cur, err := r.Get(ctx, p.ID)
	if err != nil {
		return market.Product{}, err
	}
	if p.Type == "" {
		p.Type = cur.Type
	}
	if p.Type != cur.Type {
		return market.Product{}, errors.New("product type is immutable")
	}
	if p.Name == "" {
		p.Name = cur.Name
	}
	if p.Meta == nil {
		p.Meta = cur.Meta
	}
	if err := p.Validate(); err != nil {
		return market.Product{}, err
	}

	value, extra, err := market.MetaWire(p.Meta)
	if err != nil {
		return market.Product{}, err
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET name=$2, price_nano=$3, value=$4, extra_data=$5, updated_at=$6
		WHERE id=$1`,
		p.ID, p.Name, p.Price.Nano(), value, extra, p.UpdatedAt)
	if err != nil {
		return market.Product{}, err
	}
	if ct.RowsAffected() != 1 {
		return market.Product{}, ErrNotFound
	}
	return p, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
