package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed demo catalog and accounts if missing (idempotent; safe on every start)
	if err := seedCatalog(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories (soft-deleted via is_active, never removed)
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Products. quantity reflects stock not currently held by any basket or
-- order line; no CHECK so a lost-update race cannot wedge writes.
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  quantity INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_name     ON products(LOWER(name));

-- Users & profiles
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  age INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 0,
  is_superuser INTEGER NOT NULL DEFAULT 0,
  activation_key TEXT NOT NULL DEFAULT '',
  activation_key_created TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS profiles(
  user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  tagline TEXT NOT NULL DEFAULT '',
  about TEXT NOT NULL DEFAULT '',
  gender TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- value of the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Basket lines: one per (user, product); consumed when an order is formed
CREATE TABLE IF NOT EXISTS basket_items(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  add_time TEXT DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(user_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_basket_user ON basket_items(user_id);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  status TEXT NOT NULL DEFAULT 'FORMING',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);

CREATE TABLE IF NOT EXISTS order_items(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id),
  quantity INTEGER NOT NULL,
  price NUMERIC NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedCatalog(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO categories(id,name,description) VALUES
	  ('cat-home',   'Home',        'Furniture and decor'),
	  ('cat-office', 'Office',      'Desks, chairs and storage'),
	  ('cat-modern', 'Modern',      'Contemporary pieces'),
	  ('cat-classic','Classic',     'Timeless designs')`)

	tx.MustExec(`INSERT INTO products(id,category_id,name,description,price,quantity) VALUES
	  ('prod-arm-001','cat-home',  'Oak Armchair',     'Solid oak frame, linen cushion', 249.90, 12),
	  ('prod-sof-001','cat-home',  'Two-Seat Sofa',    'Compact sofa for small rooms',   799.00, 4),
	  ('prod-dsk-001','cat-office','Writing Desk',     'Birch desk with two drawers',    329.50, 8),
	  ('prod-chr-001','cat-office','Task Chair',       'Adjustable height, mesh back',   149.99, 20),
	  ('prod-lmp-001','cat-modern','Arc Floor Lamp',   'Matte black, dimmable',           89.00, 15)`)

	return tx.Commit()
}

// seedUsers ensures one superuser and one shopper exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Username, Email, Hash string
		Super                     bool
	}
	mk := func(id, username, email, raw string, super bool) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Username: username, Email: email, Hash: string(h), Super: super}
	}

	users := []u{
		mk("u-admin", "admin", "admin@geekshop.local", "Passw0rd!", true),
		mk("u-vera", "vera", "vera@geekshop.local", "Passw0rd!", false),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,username,email,password_hash,is_active,is_superuser)
			VALUES(?,?,?,?,1,?)
			ON CONFLICT(username) DO NOTHING
		`, x.ID, x.Username, x.Email, x.Hash, x.Super); err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO profiles(user_id) VALUES(?)
			ON CONFLICT(user_id) DO NOTHING
		`, x.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}
