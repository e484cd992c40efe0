package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pagesync/internal/domain"
	"pagesync/internal/domain/item"
)

type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) GetByID(ctx context.Context, id int64) (item.Item, error) {
	var (
		it     item.Item
		images string
	)
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT item_id, title, sub_title, brand, category, price_cents,
		        images, description, saleable, updated_at
		   FROM items
		  WHERE item_id = $1`,
		id,
	).Scan(&it.ID, &it.Title, &it.SubTitle, &it.Brand, &it.Category, &it.PriceCents,
		&images, &it.Description, &it.Saleable, &it.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return item.Item{}, domain.NotFound("item not found")
	}
	if err != nil {
		return item.Item{}, err
	}

	it.Images = splitImages(images)
	return it, nil
}

// Upsert is used by seeding and tests; the catalog service owns these rows in production.
func (r *ItemRepository) Upsert(ctx context.Context, it item.Item) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO items (item_id, title, sub_title, brand, category, price_cents,
		                    images, description, saleable, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		 ON CONFLICT (item_id) DO UPDATE
		   SET title = EXCLUDED.title,
		       sub_title = EXCLUDED.sub_title,
		       brand = EXCLUDED.brand,
		       category = EXCLUDED.category,
		       price_cents = EXCLUDED.price_cents,
		       images = EXCLUDED.images,
		       description = EXCLUDED.description,
		       saleable = EXCLUDED.saleable,
		       updated_at = NOW()`,
		it.ID, it.Title, it.SubTitle, it.Brand, it.Category, it.PriceCents,
		strings.Join(it.Images, ","), it.Description, it.Saleable,
	)
	return err
}

func splitImages(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}
