package dbkeeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MogaPreet/maccindia/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

type DBKeeper struct {
	pool *pgxpool.Pool
	log  Log
}

// NewDBKeeper connects to PostgreSQL and applies pending migrations.
func NewDBKeeper(ctx context.Context, dsn func() string, log Log) (*DBKeeper, error) {
	addr := dsn()
	if addr == "" {
		return nil, errors.New("database dsn is empty")
	}

	config, err := pgxpool.ParseConfig(addr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database DSN: %w", err)
	}

	if err := migrateUp(addr, log); err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	log.Info("Connected!")

	return &DBKeeper{
		pool: pool,
		log:  log,
	}, nil
}

const productColumns = `
	id, name, slug, COALESCE(description, ''), COALESCE(brand_id, ''), brand_name,
	category_ids, category_names, price, original_price, condition, stock,
	is_featured, is_active, images, COALESCE(youtube_url, ''), specs, included_items,
	warranty, created_at, updated_at`

func (kp *DBKeeper) Products(ctx context.Context) ([]models.Product, error) {
	if kp.pool == nil {
		return nil, fmt.Errorf("database connection pool is nil")
	}

	rows, err := kp.pool.Query(ctx, `SELECT `+productColumns+`
		FROM products
		WHERE is_active
		ORDER BY created_at DESC`)
	if err != nil {
		kp.log.Error("Failed to execute query", zap.Error(err))
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var (
			product  models.Product
			warranty []byte
		)
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Slug,
			&product.Description,
			&product.BrandID,
			&product.BrandName,
			&product.CategoryIDs,
			&product.CategoryNames,
			&product.Price,
			&product.OriginalPrice,
			&product.Condition,
			&product.Stock,
			&product.IsFeatured,
			&product.IsActive,
			&product.Images,
			&product.YoutubeURL,
			&product.Specs,
			&product.IncludedItems,
			&warranty,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			kp.log.Error("Failed to scan row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if len(warranty) > 0 {
			product.Warranty = new(models.Warranty)
			if err := json.Unmarshal(warranty, product.Warranty); err != nil {
				return nil, fmt.Errorf("failed to decode warranty of %s: %w", product.ID, err)
			}
		}
		products = append(products, product)
	}

	if rows.Err() != nil {
		kp.log.Error("Error occurred during rows iteration", zap.Error(rows.Err()))
		return nil, fmt.Errorf("error during rows iteration: %w", rows.Err())
	}

	kp.log.Info("Successfully retrieved all products", zap.Int("count", len(products)))
	return products, nil
}

func (kp *DBKeeper) Brands(ctx context.Context) ([]models.Brand, error) {
	return queryAll(ctx, kp, "brands", `
		SELECT id, name, COALESCE(logo, ''), COALESCE(color, ''), is_active, created_at
		FROM brands
		WHERE is_active
		ORDER BY name`,
		func(row pgx.Rows) (models.Brand, error) {
			var b models.Brand
			err := row.Scan(&b.ID, &b.Name, &b.Logo, &b.Color, &b.IsActive, &b.CreatedAt)
			return b, err
		})
}

func (kp *DBKeeper) Categories(ctx context.Context) ([]models.Category, error) {
	return queryAll(ctx, kp, "categories", `
		SELECT id, name, slug, COALESCE(icon, ''), COALESCE(color, ''), COALESCE(image, ''),
			sort_order, is_active, created_at, updated_at
		FROM categories
		WHERE is_active
		ORDER BY sort_order`,
		func(row pgx.Rows) (models.Category, error) {
			var c models.Category
			err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &c.Color, &c.Image,
				&c.Order, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
			return c, err
		})
}

func (kp *DBKeeper) Testimonials(ctx context.Context) ([]models.Testimonial, error) {
	return queryAll(ctx, kp, "testimonials", `
		SELECT id, name, location, rating, text, COALESCE(avatar, ''), COALESCE(product_id, ''),
			is_active, created_at
		FROM testimonials
		WHERE is_active
		ORDER BY created_at DESC`,
		func(row pgx.Rows) (models.Testimonial, error) {
			var t models.Testimonial
			err := row.Scan(&t.ID, &t.Name, &t.Location, &t.Rating, &t.Text, &t.Avatar,
				&t.ProductID, &t.IsActive, &t.CreatedAt)
			return t, err
		})
}

func (kp *DBKeeper) PromoOffers(ctx context.Context) ([]models.PromoOffer, error) {
	return queryAll(ctx, kp, "promo offers", `
		SELECT id, title, COALESCE(subtitle, ''), background_image, product_ids,
			start_date, end_date, is_active, created_at
		FROM promo_offers
		WHERE is_active
		ORDER BY created_at DESC`,
		func(row pgx.Rows) (models.PromoOffer, error) {
			var o models.PromoOffer
			err := row.Scan(&o.ID, &o.Title, &o.Subtitle, &o.BackgroundImage, &o.ProductIDs,
				&o.StartDate, &o.EndDate, &o.IsActive, &o.CreatedAt)
			return o, err
		})
}

func queryAll[T any](ctx context.Context, kp *DBKeeper, what, query string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	if kp.pool == nil {
		return nil, fmt.Errorf("database connection pool is nil")
	}

	rows, err := kp.pool.Query(ctx, query)
	if err != nil {
		kp.log.Error("Failed to execute query", zap.String("collection", what), zap.Error(err))
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during %s iteration: %w", what, err)
	}
	return out, nil
}

// InsertLead writes the lead into the table matching its kind.
func (kp *DBKeeper) InsertLead(ctx context.Context, lead models.Lead) (id string, err error) {
	if kp.pool == nil {
		return "", fmt.Errorf("database connection pool is nil")
	}

	tx, err := kp.pool.Begin(ctx)
	if err != nil {
		kp.log.Error("Failed to begin transaction", zap.Error(err))
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				kp.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
			}
		}
	}()

	switch {
	case lead.Inquiry != nil:
		r := lead.Inquiry
		_, err = tx.Exec(ctx, `
			INSERT INTO product_requests
				(id, product_id, product_name, product_slug, customer_name, customer_phone, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			r.ID, r.ProductID, r.ProductName, r.ProductSlug, r.CustomerName, r.CustomerPhone, r.Status, r.CreatedAt)
	case lead.Contact != nil:
		r := lead.Contact
		_, err = tx.Exec(ctx, `
			INSERT INTO contact_requests (id, name, email, phone, subject, message, status, created_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)`,
			r.ID, r.Name, r.Email, r.Phone, r.Subject, r.Message, r.Status, r.CreatedAt)
	default:
		err = fmt.Errorf("lead %q has no payload", lead.Kind)
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert lead: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return lead.ID(), nil
}

// UpsertCatalog loads brands, categories and products in one batch, replacing
// rows with matching ids.
func (kp *DBKeeper) UpsertCatalog(ctx context.Context, brands []models.Brand, categories []models.Category, products []models.Product) (err error) {
	if kp.pool == nil {
		return fmt.Errorf("database connection pool is nil")
	}

	tx, err := kp.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				kp.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
			} else {
				kp.log.Info("Transaction rolled back due to an error")
			}
		}
	}()

	batch := &pgx.Batch{}
	for _, b := range brands {
		batch.Queue(`
			INSERT INTO brands (id, name, logo, color, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, logo = EXCLUDED.logo,
				color = EXCLUDED.color, is_active = EXCLUDED.is_active`,
			b.ID, b.Name, b.Logo, b.Color, b.IsActive, orNow(b.CreatedAt))
	}
	for _, c := range categories {
		batch.Queue(`
			INSERT INTO categories (id, name, slug, icon, color, image, sort_order, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, slug = EXCLUDED.slug,
				icon = EXCLUDED.icon, color = EXCLUDED.color, image = EXCLUDED.image,
				sort_order = EXCLUDED.sort_order, is_active = EXCLUDED.is_active,
				updated_at = EXCLUDED.updated_at`,
			c.ID, c.Name, c.Slug, c.Icon, c.Color, c.Image, c.Order, c.IsActive, orNow(c.CreatedAt), orNow(c.UpdatedAt))
	}
	for _, p := range products {
		var warranty []byte
		if p.Warranty != nil {
			if warranty, err = json.Marshal(p.Warranty); err != nil {
				return fmt.Errorf("failed to encode warranty of %s: %w", p.ID, err)
			}
		}
		batch.Queue(`
			INSERT INTO products (id, name, slug, description, brand_id, brand_name, category_ids,
				category_names, price, original_price, condition, stock, is_featured, is_active,
				images, youtube_url, specs, included_items, warranty, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, slug = EXCLUDED.slug,
				description = EXCLUDED.description, brand_id = EXCLUDED.brand_id,
				brand_name = EXCLUDED.brand_name, category_ids = EXCLUDED.category_ids,
				category_names = EXCLUDED.category_names, price = EXCLUDED.price,
				original_price = EXCLUDED.original_price, condition = EXCLUDED.condition,
				stock = EXCLUDED.stock, is_featured = EXCLUDED.is_featured,
				is_active = EXCLUDED.is_active, images = EXCLUDED.images,
				youtube_url = EXCLUDED.youtube_url, specs = EXCLUDED.specs,
				included_items = EXCLUDED.included_items, warranty = EXCLUDED.warranty,
				updated_at = EXCLUDED.updated_at`,
			p.ID, p.Name, p.Slug, p.Description, p.BrandID, p.BrandName, nonNil(p.CategoryIDs),
			nonNil(p.CategoryNames), p.Price, p.OriginalPrice, string(p.Condition), p.Stock,
			p.IsFeatured, p.IsActive, nonNil(p.Images), p.YoutubeURL, specsOrEmpty(p.Specs),
			nonNil(p.IncludedItems), warranty, orNow(p.CreatedAt), orNow(p.UpdatedAt))
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, execErr := br.Exec(); execErr != nil {
			br.Close()
			err = fmt.Errorf("failed to execute batch query: %w", execErr)
			return err
		}
	}
	if closeErr := br.Close(); closeErr != nil {
		err = fmt.Errorf("failed to close batch results: %w", closeErr)
		return err
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		return err
	}

	kp.log.Info("Catalog upserted",
		zap.Int("brands", len(brands)),
		zap.Int("categories", len(categories)),
		zap.Int("products", len(products)))
	return nil
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func specsOrEmpty(s models.Specs) models.Specs {
	if s == nil {
		return models.Specs{}
	}
	return s
}

func (kp *DBKeeper) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := kp.pool.Ping(ctx); err != nil {
		kp.log.Error("Database ping failed", zap.Error(err))
		return false
	}

	return true
}

func (kp *DBKeeper) Close() bool {
	if kp.pool != nil {
		kp.pool.Close()
		kp.log.Info("Database connection pool closed")
		return true
	}
	kp.log.Info("Attempted to close a nil database connection pool")
	return false
}
