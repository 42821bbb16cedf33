package ledger

import (
	"context"
	"strings"
)

// =============================================================================
// PRODUCTS
// =============================================================================

func validateProduct(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", "product name is required")
	}
	return firstError(
		validateNonNegative("price_per_unit", p.PricePerUnit),
		validateNonNegative("purchase_price", p.PurchasePrice),
		validateNonNegative("stock_quantity", p.StockQuantity),
		validateNonNegative("min_stock_level", p.MinStockLevel),
	)
}

// AddProduct creates a product and returns its id.
func (l *Ledger) AddProduct(ctx context.Context, p Product) (int64, error) {
	if err := validateProduct(p); err != nil {
		return 0, wrapOp("add product", err)
	}
	id, err := l.Store.InsertProduct(ctx, p)
	if err != nil {
		return 0, wrapOp("add product", err)
	}
	return id, l.persist(ctx, "add product")
}

// UpdateProduct replaces a product's fields, stock included.
func (l *Ledger) UpdateProduct(ctx context.Context, p Product) error {
	if err := validateID("id", p.ID); err != nil {
		return wrapOp("update product", err)
	}
	if err := validateProduct(p); err != nil {
		return wrapOp("update product", err)
	}
	n, err := l.Store.UpdateProduct(ctx, p)
	if err != nil {
		return wrapOp("update product", err)
	}
	if n == 0 {
		return wrapOp("update product", notFound("product", p.ID))
	}
	return l.persist(ctx, "update product")
}

// DeleteProduct removes a product. Past sale items keep their product_id.
func (l *Ledger) DeleteProduct(ctx context.Context, id int64) error {
	n, err := l.Store.DeleteProduct(ctx, id)
	if err != nil {
		return wrapOp("delete product", err)
	}
	if n == 0 {
		return wrapOp("delete product", notFound("product", id))
	}
	return l.persist(ctx, "delete product")
}

// GetProduct returns a product by id.
func (l *Ledger) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, err := l.Store.GetProduct(ctx, id)
	if err != nil {
		return nil, wrapOp("get product", err)
	}
	if p == nil {
		return nil, notFound("product", id)
	}
	return p, nil
}

// ListProducts returns products whose name contains search, by name.
func (l *Ledger) ListProducts(ctx context.Context, search string) ([]Product, error) {
	products, err := l.Store.ListProducts(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, wrapOp("list products", err)
	}
	return products, nil
}

// LowStockProducts returns products at or below their minimum stock level.
func (l *Ledger) LowStockProducts(ctx context.Context) ([]Product, error) {
	products, err := l.Store.LowStockProducts(ctx)
	if err != nil {
		return nil, wrapOp("list low stock products", err)
	}
	return products, nil
}

// =============================================================================
// CLIENTS
// =============================================================================

func validateClient(c Client) error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", "client name is required")
	}
	return nil
}

// AddClient creates a client and returns its id.
func (l *Ledger) AddClient(ctx context.Context, c Client) (int64, error) {
	if err := validateClient(c); err != nil {
		return 0, wrapOp("add client", err)
	}
	id, err := l.Store.InsertClient(ctx, c)
	if err != nil {
		return 0, wrapOp("add client", err)
	}
	return id, l.persist(ctx, "add client")
}

// UpdateClient replaces a client's fields.
func (l *Ledger) UpdateClient(ctx context.Context, c Client) error {
	if err := validateID("id", c.ID); err != nil {
		return wrapOp("update client", err)
	}
	if err := validateClient(c); err != nil {
		return wrapOp("update client", err)
	}
	n, err := l.Store.UpdateClient(ctx, c)
	if err != nil {
		return wrapOp("update client", err)
	}
	if n == 0 {
		return wrapOp("update client", notFound("client", c.ID))
	}
	return l.persist(ctx, "update client")
}

// DeleteClient removes a client that no sale or payment references.
func (l *Ledger) DeleteClient(ctx context.Context, id int64) error {
	refs, err := l.Store.CountClientReferences(ctx, id)
	if err != nil {
		return wrapOp("delete client", err)
	}
	if refs > 0 {
		return wrapOp("delete client", ErrClientHasSales)
	}
	n, err := l.Store.DeleteClient(ctx, id)
	if err != nil {
		return wrapOp("delete client", err)
	}
	if n == 0 {
		return wrapOp("delete client", notFound("client", id))
	}
	return l.persist(ctx, "delete client")
}

// GetClient returns a client by id.
func (l *Ledger) GetClient(ctx context.Context, id int64) (*Client, error) {
	c, err := l.Store.GetClient(ctx, id)
	if err != nil {
		return nil, wrapOp("get client", err)
	}
	if c == nil {
		return nil, notFound("client", id)
	}
	return c, nil
}

// ListClients returns clients whose name or phone contains search, by name.
func (l *Ledger) ListClients(ctx context.Context, search string) ([]Client, error) {
	clients, err := l.Store.ListClients(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, wrapOp("list clients", err)
	}
	return clients, nil
}

// RegularClients returns the clients flagged as regulars, by name.
func (l *Ledger) RegularClients(ctx context.Context) ([]Client, error) {
	clients, err := l.Store.RegularClients(ctx)
	if err != nil {
		return nil, wrapOp("list regular clients", err)
	}
	return clients, nil
}
