/*
Package ledger provides the retail credit-ledger engine.

PURPOSE:
  Tracks products, clients, sales (cash and credit), sale line items and
  payments. The engine keeps three things consistent under a single
  transaction per operation:
  - Product stock (decremented on sale, restored on deletion)
  - Sale headers (subtotal, total, paid, remaining)
  - Client debt (open credit sales, reduced by payments oldest-first)

KEY CONCEPTS IN THIS FILE (types.go):
  - Product, Client, Sale, SaleItem, Payment: typed records per table
  - PaymentAllocation: how much of a payment landed on which sale
  - SaleInput / SaleItemInput / PaymentInput: caller-supplied values

MONEY:
  Every amount and quantity is a decimal.Decimal. The store keeps REAL
  columns; conversion happens at the store boundary only.

INVARIANTS (after every committed mutation):
  - Sale.Remaining == Sale.Total - Sale.Paid
  - Cash sale: Paid == Total, Remaining == 0
  - Product.StockQuantity >= 0

SEE ALSO:
  - store.go: Store / Tx interfaces
  - sales.go: Sale aggregate operations
  - payments.go: Credit allocation engine
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CATALOG
// =============================================================================

// Product is a sellable item with a (possibly fractional) stock level.
type Product struct {
	ID            int64
	Name          string
	Unit          string
	PricePerUnit  decimal.Decimal
	PurchasePrice decimal.Decimal
	StockQuantity decimal.Decimal
	MinStockLevel decimal.Decimal
	CreatedAt     time.Time
}

// IsLowStock reports whether stock is at or below the minimum level.
func (p Product) IsLowStock() bool {
	return p.StockQuantity.LessThanOrEqual(p.MinStockLevel)
}

// Client is a customer. Phone, Address and Notes are optional.
type Client struct {
	ID        int64
	Name      string
	Phone     string
	Address   string
	IsRegular bool
	Notes     string
}

// =============================================================================
// SALES
// =============================================================================

// Sale is a sale header. ClientID is nil for anonymous cash sales.
type Sale struct {
	ID                 int64
	ClientID           *int64
	Date               string
	Subtotal           decimal.Decimal
	SaleDiscountAmount decimal.Decimal
	DeliveryPrice      decimal.Decimal
	LaborCost          decimal.Decimal
	Total              decimal.Decimal
	Paid               decimal.Decimal
	Remaining          decimal.Decimal
	IsCredit           bool
}

// IsOpenCredit reports whether the sale is a credit sale with money still owed.
func (s Sale) IsOpenCredit() bool {
	return s.IsCredit && s.Remaining.IsPositive()
}

// BelongsTo reports whether the sale was made to the given client.
func (s Sale) BelongsTo(clientID int64) bool {
	return s.ClientID != nil && *s.ClientID == clientID
}

// SaleItem is a line of a sale. TotalPrice = Quantity*UnitPrice - DiscountAmount.
type SaleItem struct {
	ID             int64
	SaleID         int64
	ProductID      int64
	ProductName    string // read-only, filled by joins
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalPrice     decimal.Decimal
}

// LineSubtotal returns Quantity*UnitPrice (before the item discount).
func (i SaleItem) LineSubtotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// SaleSummary is a sale as shown in listings.
type SaleSummary struct {
	Sale
	ClientName    string
	TotalDiscount decimal.Decimal // sale discount + item discounts
}

// SaleType filters listings by payment mode.
type SaleType string

const (
	SaleTypeAll    SaleType = "all"
	SaleTypeCredit SaleType = "credit"
	SaleTypeCash   SaleType = "paid"
)

// SaleFilter narrows ListSales. Empty fields are ignored.
type SaleFilter struct {
	From         string
	To           string
	ClientSearch string
	Type         SaleType
}

// SalePage is one page of a filtered sale listing.
type SalePage struct {
	Sales    []SaleSummary
	Total    int
	Page     int
	PageSize int
}

// =============================================================================
// PAYMENTS
// =============================================================================

// Payment is money received from a client. Amount is the full amount received,
// independent of how much of it could be allocated to open sales.
type Payment struct {
	ID         int64
	ClientID   int64
	ClientName string // read-only, filled by joins
	Date       string
	Amount     decimal.Decimal
	Notes      string
	// AllocationsTracked is false for payments recorded before allocations
	// were stored; their reversal is re-derived from current sale state.
	AllocationsTracked bool
}

// PaymentAllocation records the part of a payment applied to one sale.
type PaymentAllocation struct {
	ID        int64
	PaymentID int64
	SaleID    int64
	Amount    decimal.Decimal
}

// =============================================================================
// INPUTS
// =============================================================================

// SaleInput is the header of a sale as supplied by the caller.
// Totals are trusted: the engine validates ranges, not arithmetic.
type SaleInput struct {
	ClientID           *int64
	Date               string
	Subtotal           decimal.Decimal
	SaleDiscountAmount decimal.Decimal
	DeliveryPrice      decimal.Decimal
	LaborCost          decimal.Decimal
	Total              decimal.Decimal
	Paid               decimal.Decimal
	Remaining          decimal.Decimal
	IsCredit           bool
}

func (in SaleInput) toSale(id int64) Sale {
	return Sale{
		ID:                 id,
		ClientID:           in.ClientID,
		Date:               in.Date,
		Subtotal:           in.Subtotal,
		SaleDiscountAmount: in.SaleDiscountAmount,
		DeliveryPrice:      in.DeliveryPrice,
		LaborCost:          in.LaborCost,
		Total:              in.Total,
		Paid:               in.Paid,
		Remaining:          in.Remaining,
		IsCredit:           in.IsCredit,
	}
}

// SaleItemInput is one line to insert under a sale.
type SaleItemInput struct {
	ProductID      int64
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalPrice     decimal.Decimal
}

// PaymentInput describes a payment to add or the new state of an edited one.
// TargetSaleIDs, when set, restricts allocation to those sales.
type PaymentInput struct {
	ClientID      int64
	Date          string
	Amount        decimal.Decimal
	Notes         string
	TargetSaleIDs []int64
}

// =============================================================================
// READ MODELS
// =============================================================================

// ClientDebt is a client with the sum of its open credit balances.
type ClientDebt struct {
	Client
	TotalRemaining decimal.Decimal
}

// ClientSpending is a client with the sum of all its sale totals.
type ClientSpending struct {
	Client
	TotalSpent decimal.Decimal
}

// ProductSales is a product with sold quantity and revenue.
type ProductSales struct {
	ProductID     int64
	Name          string
	TotalQuantity decimal.Decimal
	TotalRevenue  decimal.Decimal
}

// UnsoldProduct is a product with the date it was last sold, empty if never.
type UnsoldProduct struct {
	Product
	LastSold string
}

// InventoryCapital values the stock on hand.
type InventoryCapital struct {
	ProductCount  int
	PurchaseValue decimal.Decimal // sum of stock * purchase price
	SellValue     decimal.Decimal // sum of stock * price per unit
}

// Summary holds dashboard totals for a date range.
type Summary struct {
	SalesCount     int
	TotalSales     decimal.Decimal
	TotalRemaining decimal.Decimal
	TotalPayments  decimal.Decimal
	TotalDelivery  decimal.Decimal
	TotalLabor     decimal.Decimal
	CashRevenue    decimal.Decimal
}
