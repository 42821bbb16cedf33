package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/retail-ledger/ledger"
)

// The driver turns TEXT stored in DATE/DATETIME columns into time.Time,
// and into the zero time when the text does not parse. Timestamps are
// therefore selected as TEXT and parsed here. dateColumn accepts either form.

type dateColumn string

func (d *dateColumn) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = dateColumn(x.Format(ledger.DateLayout))
	case string:
		*d = dateColumn(x)
	case []byte:
		*d = dateColumn(x)
	default:
		return fmt.Errorf("cannot scan %T into date", v)
	}
	return nil
}

type timeColumn time.Time

func (t *timeColumn) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		*t = timeColumn(time.Time{})
	case time.Time:
		*t = timeColumn(x)
	case string:
		return t.parse(x)
	case []byte:
		return t.parse(string(x))
	default:
		return fmt.Errorf("cannot scan %T into time", v)
	}
	return nil
}

func (t *timeColumn) parse(s string) error {
	if s == "" {
		*t = timeColumn(time.Time{})
		return nil
	}
	trimmed := strings.TrimSuffix(s, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if parsed, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			*t = timeColumn(parsed)
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// COLUMN LISTS
// =============================================================================

const productColumns = `product_id, name, unit, price_per_unit, purchase_price,
	stock_quantity, min_stock_level, CAST(created_at AS TEXT)`

func scanProduct(r rowScanner, extra ...any) (ledger.Product, error) {
	var p ledger.Product
	var created timeColumn
	dest := append([]any{&p.ID, &p.Name, &p.Unit, &p.PricePerUnit, &p.PurchasePrice,
		&p.StockQuantity, &p.MinStockLevel, &created}, extra...)
	err := r.Scan(dest...)
	p.CreatedAt = time.Time(created)
	return p, err
}

const clientColumns = `client_id, name, phone, address, is_regular, notes`

func scanClient(r rowScanner, extra ...any) (ledger.Client, error) {
	var c ledger.Client
	var phone, address, notes sql.NullString
	var regular sql.NullBool
	dest := append([]any{&c.ID, &c.Name, &phone, &address, &regular, &notes}, extra...)
	err := r.Scan(dest...)
	c.Phone = phone.String
	c.Address = address.String
	c.Notes = notes.String
	c.IsRegular = regular.Bool
	return c, err
}

const saleColumns = `s.sale_id, s.client_id, s.date, s.subtotal, s.sale_discount_amount,
	s.delivery_price, s.labor_cost, s.total, s.paid, s.remaining, s.is_credit`

func scanSale(r rowScanner, extra ...any) (ledger.Sale, error) {
	var s ledger.Sale
	var clientID sql.NullInt64
	var date dateColumn
	var credit sql.NullBool
	dest := append([]any{&s.ID, &clientID, &date, &s.Subtotal, &s.SaleDiscountAmount,
		&s.DeliveryPrice, &s.LaborCost, &s.Total, &s.Paid, &s.Remaining, &credit}, extra...)
	err := r.Scan(dest...)
	if clientID.Valid {
		id := clientID.Int64
		s.ClientID = &id
	}
	s.Date = string(date)
	s.IsCredit = credit.Bool
	return s, err
}

func scanSales(rows *sql.Rows) ([]ledger.Sale, error) {
	defer rows.Close()

	var sales []ledger.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

const saleItemColumns = `si.sale_item_id, si.sale_id, si.product_id, COALESCE(p.name, ''),
	si.quantity, si.unit_price, si.discount_amount, si.total_price`

func scanSaleItem(r rowScanner) (ledger.SaleItem, error) {
	var it ledger.SaleItem
	err := r.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName,
		&it.Quantity, &it.UnitPrice, &it.DiscountAmount, &it.TotalPrice)
	return it, err
}

const paymentColumns = `pm.payment_id, pm.client_id, COALESCE(c.name, ''), pm.date,
	pm.amount, pm.notes, pm.allocations_tracked`

func scanPayment(r rowScanner) (ledger.Payment, error) {
	var p ledger.Payment
	var date dateColumn
	var notes sql.NullString
	var tracked sql.NullBool
	err := r.Scan(&p.ID, &p.ClientID, &p.ClientName, &date, &p.Amount, &notes, &tracked)
	p.Date = string(date)
	p.Notes = notes.String
	p.AllocationsTracked = tracked.Bool
	return p, err
}

// sumColumn scans a SUM() that may be NULL.
func sumColumn(d *decimal.Decimal) any {
	return &nullSum{d: d}
}

type nullSum struct {
	d *decimal.Decimal
}

func (n *nullSum) Scan(v any) error {
	if v == nil {
		*n.d = decimal.Zero
		return nil
	}
	return n.d.Scan(v)
}
