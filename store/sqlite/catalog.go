package sqlite

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-ledger/ledger"
)

// =============================================================================
// PRODUCT STORE
// =============================================================================

func getProduct(ctx context.Context, q queryer, id int64) (*ledger.Product, error) {
	p, err := scanProduct(q.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE product_id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func queryProducts(ctx context.Context, q queryer, query string, args ...any) ([]ledger.Product, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ledger.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct retrieves a product by ID.
func (s *Store) GetProduct(ctx context.Context, id int64) (*ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getProduct(ctx, s.db, id)
}

// ListProducts returns products whose name contains search, by name.
func (s *Store) ListProducts(ctx context.Context, search string) ([]ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if search == "" {
		return queryProducts(ctx, s.db, "SELECT "+productColumns+" FROM products ORDER BY name")
	}
	return queryProducts(ctx, s.db,
		"SELECT "+productColumns+" FROM products WHERE name LIKE ? ORDER BY name", likePattern(search))
}

// LowStockProducts returns products with stock at or below their minimum.
func (s *Store) LowStockProducts(ctx context.Context) ([]ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryProducts(ctx, s.db,
		"SELECT "+productColumns+" FROM products WHERE stock_quantity <= min_stock_level ORDER BY stock_quantity ASC, name")
}

// AllProducts returns every product by id.
func (s *Store) AllProducts(ctx context.Context) ([]ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryProducts(ctx, s.db, "SELECT "+productColumns+" FROM products ORDER BY product_id")
}

// InsertProduct saves a new product. A non-zero p.ID is kept.
func (s *Store) InsertProduct(ctx context.Context, p ledger.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id any
	if p.ID > 0 {
		id = p.ID
	}
	return insert(ctx, s.db, `
		INSERT INTO products (product_id, name, unit, price_per_unit, purchase_price, stock_quantity, min_stock_level)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, p.Name, p.Unit, p.PricePerUnit, p.PurchasePrice, p.StockQuantity, p.MinStockLevel,
	)
}

// UpdateProduct rewrites a product and returns the rows affected.
func (s *Store) UpdateProduct(ctx context.Context, p ledger.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return exec(ctx, s.db, `
		UPDATE products SET name = ?, unit = ?, price_per_unit = ?, purchase_price = ?,
			stock_quantity = ?, min_stock_level = ?
		WHERE product_id = ?`,
		p.Name, p.Unit, p.PricePerUnit, p.PurchasePrice, p.StockQuantity, p.MinStockLevel, p.ID,
	)
}

// DeleteProduct removes a product and returns the rows affected.
func (s *Store) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return exec(ctx, s.db, "DELETE FROM products WHERE product_id = ?", id)
}

func (ts *txStore) GetProduct(ctx context.Context, id int64) (*ledger.Product, error) {
	return getProduct(ctx, ts.tx, id)
}

func (ts *txStore) SetStock(ctx context.Context, productID int64, quantity decimal.Decimal) error {
	_, err := ts.tx.ExecContext(ctx,
		"UPDATE products SET stock_quantity = ? WHERE product_id = ?", quantity, productID)
	return err
}

// =============================================================================
// CLIENT STORE
// =============================================================================

// GetClient retrieves a client by ID.
func (s *Store) GetClient(ctx context.Context, id int64) (*ledger.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := scanClient(s.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE client_id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListClients returns clients whose name or phone contains search, by name.
func (s *Store) ListClients(ctx context.Context, search string) ([]ledger.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + clientColumns + " FROM clients"
	var args []any
	if search != "" {
		query += " WHERE name LIKE ? OR phone LIKE ?"
		args = append(args, likePattern(search), likePattern(search))
	}
	query += " ORDER BY name"

	return queryClients(ctx, s.db, query, args...)
}

// RegularClients returns the clients flagged as regulars, by name.
func (s *Store) RegularClients(ctx context.Context) ([]ledger.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryClients(ctx, s.db,
		"SELECT "+clientColumns+" FROM clients WHERE is_regular = 1 ORDER BY name")
}

func queryClients(ctx context.Context, q queryer, query string, args ...any) ([]ledger.Client, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []ledger.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// CountClientReferences counts sales and payments that reference a client.
func (s *Store) CountClientReferences(ctx context.Context, clientID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM sales WHERE client_id = ?)
		     + (SELECT COUNT(*) FROM payments WHERE client_id = ?)`,
		clientID, clientID,
	).Scan(&n)
	return n, err
}

// InsertClient saves a new client. A non-zero c.ID is kept.
func (s *Store) InsertClient(ctx context.Context, c ledger.Client) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id any
	if c.ID > 0 {
		id = c.ID
	}
	return insert(ctx, s.db, `
		INSERT INTO clients (client_id, name, phone, address, is_regular, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, c.Name, nullString(c.Phone), nullString(c.Address), c.IsRegular, nullString(c.Notes),
	)
}

// UpdateClient rewrites a client and returns the rows affected.
func (s *Store) UpdateClient(ctx context.Context, c ledger.Client) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return exec(ctx, s.db, `
		UPDATE clients SET name = ?, phone = ?, address = ?, is_regular = ?, notes = ?
		WHERE client_id = ?`,
		c.Name, nullString(c.Phone), nullString(c.Address), c.IsRegular, nullString(c.Notes), c.ID,
	)
}

// DeleteClient removes a client and returns the rows affected.
func (s *Store) DeleteClient(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return exec(ctx, s.db, "DELETE FROM clients WHERE client_id = ?", id)
}

func (ts *txStore) ClientExists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := ts.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients WHERE client_id = ?", id).Scan(&n)
	return n > 0, err
}
