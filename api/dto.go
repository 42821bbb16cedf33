/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types keep the
  ledger's Go types out of the wire contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts and quantities are decimal.Decimal. They are written as JSON
  strings ("12.5") and accepted as either strings or numbers.

VALIDATION:
  Validation is done by the ledger, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: Domain types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/retail-ledger/ledger"
)

// =============================================================================
// CATALOG
// =============================================================================

// ProductDTO represents a product in API responses.
type ProductDTO struct {
	ID            int64           `json:"product_id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	LowStock      bool            `json:"low_stock"`
	CreatedAt     string          `json:"created_at,omitempty"`
}

// ProductRequest creates or replaces a product.
type ProductRequest struct {
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
}

func (r ProductRequest) toProduct(id int64) ledger.Product {
	return ledger.Product{
		ID:            id,
		Name:          r.Name,
		Unit:          r.Unit,
		PricePerUnit:  r.PricePerUnit,
		PurchasePrice: r.PurchasePrice,
		StockQuantity: r.StockQuantity,
		MinStockLevel: r.MinStockLevel,
	}
}

// ClientDTO represents a client in API responses.
type ClientDTO struct {
	ID        int64  `json:"client_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	IsRegular bool   `json:"is_regular"`
	Notes     string `json:"notes,omitempty"`
}

// ClientRequest creates or replaces a client.
type ClientRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	IsRegular bool   `json:"is_regular"`
	Notes     string `json:"notes"`
}

func (r ClientRequest) toClient(id int64) ledger.Client {
	return ledger.Client{
		ID:        id,
		Name:      r.Name,
		Phone:     r.Phone,
		Address:   r.Address,
		IsRegular: r.IsRegular,
		Notes:     r.Notes,
	}
}

// ClientDebtDTO is a client with its open credit total.
type ClientDebtDTO struct {
	ClientDTO
	TotalRemaining decimal.Decimal `json:"total_remaining"`
}

// ClientSpendingDTO is a client with its lifetime sale total.
type ClientSpendingDTO struct {
	ClientDTO
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// =============================================================================
// SALES
// =============================================================================

// SaleDTO represents a sale header in API responses.
type SaleDTO struct {
	ID                 int64           `json:"sale_id"`
	ClientID           *int64          `json:"client_id"`
	ClientName         string          `json:"client_name,omitempty"`
	Date               string          `json:"date"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	SaleDiscountAmount decimal.Decimal `json:"sale_discount_amount"`
	TotalDiscount      decimal.Decimal `json:"total_discount"`
	DeliveryPrice      decimal.Decimal `json:"delivery_price"`
	LaborCost          decimal.Decimal `json:"labor_cost"`
	Total              decimal.Decimal `json:"total"`
	Paid               decimal.Decimal `json:"paid"`
	Remaining          decimal.Decimal `json:"remaining"`
	IsCredit           bool            `json:"is_credit"`
	Items              []SaleItemDTO   `json:"items,omitempty"`
}

// SaleItemDTO represents a sale line in API responses.
type SaleItemDTO struct {
	ID             int64           `json:"sale_item_id"`
	SaleID         int64           `json:"sale_id"`
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalPrice     decimal.Decimal `json:"total_price"`
}

// SalePageDTO is one page of a sale listing.
type SalePageDTO struct {
	Sales    []SaleDTO `json:"sales"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// CartLineRequest is one product line at checkout.
type CartLineRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount_amount"`
}

// CheckoutRequest is the body of POST /api/sales.
type CheckoutRequest struct {
	ClientID     *int64            `json:"client_id"`
	Date         string            `json:"date"`
	Items        []CartLineRequest `json:"items"`
	SaleDiscount decimal.Decimal   `json:"sale_discount_amount"`
	Delivery     decimal.Decimal   `json:"delivery_price"`
	Labor        decimal.Decimal   `json:"labor_cost"`
	Paid         decimal.Decimal   `json:"paid"`
	IsCredit     bool              `json:"is_credit"`
}

func (r CheckoutRequest) toCart() ledger.Cart {
	lines := make([]ledger.CartLine, len(r.Items))
	for i, it := range r.Items {
		lines[i] = ledger.CartLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
		}
	}
	return ledger.Cart{
		ClientID:     r.ClientID,
		Date:         r.Date,
		Lines:        lines,
		SaleDiscount: r.SaleDiscount,
		Delivery:     r.Delivery,
		Labor:        r.Labor,
		Paid:         r.Paid,
		IsCredit:     r.IsCredit,
	}
}

// SaleHeaderRequest is the body of PUT /api/sales/{id}. Totals are stored as given.
type SaleHeaderRequest struct {
	ClientID           *int64          `json:"client_id"`
	Date               string          `json:"date"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	SaleDiscountAmount decimal.Decimal `json:"sale_discount_amount"`
	DeliveryPrice      decimal.Decimal `json:"delivery_price"`
	LaborCost          decimal.Decimal `json:"labor_cost"`
	Total              decimal.Decimal `json:"total"`
	Paid               decimal.Decimal `json:"paid"`
	Remaining          decimal.Decimal `json:"remaining"`
	IsCredit           bool            `json:"is_credit"`
}

func (r SaleHeaderRequest) toInput() ledger.SaleInput {
	return ledger.SaleInput{
		ClientID:           r.ClientID,
		Date:               r.Date,
		Subtotal:           r.Subtotal,
		SaleDiscountAmount: r.SaleDiscountAmount,
		DeliveryPrice:      r.DeliveryPrice,
		LaborCost:          r.LaborCost,
		Total:              r.Total,
		Paid:               r.Paid,
		Remaining:          r.Remaining,
		IsCredit:           r.IsCredit,
	}
}

// SaleItemRequest is one line of POST /api/sales/{id}/items.
type SaleItemRequest struct {
	ProductID      int64           `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalPrice     decimal.Decimal `json:"total_price"`
}

// BulkItemsRequest is the body of POST /api/sales/{id}/items.
type BulkItemsRequest struct {
	Items []SaleItemRequest `json:"items"`
}

func (r BulkItemsRequest) toInputs() []ledger.SaleItemInput {
	out := make([]ledger.SaleItemInput, len(r.Items))
	for i, it := range r.Items {
		out[i] = ledger.SaleItemInput{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			DiscountAmount: it.DiscountAmount,
			TotalPrice:     it.TotalPrice,
		}
	}
	return out
}

// =============================================================================
// PAYMENTS
// =============================================================================

// PaymentDTO represents a payment in API responses.
type PaymentDTO struct {
	ID          int64           `json:"payment_id"`
	ClientID    int64           `json:"client_id"`
	ClientName  string          `json:"client_name,omitempty"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Notes       string          `json:"notes,omitempty"`
	Allocations []AllocationDTO `json:"allocations,omitempty"`
}

// AllocationDTO is the part of a payment applied to one sale.
type AllocationDTO struct {
	SaleID int64           `json:"sale_id"`
	Amount decimal.Decimal `json:"amount"`
}

// PaymentRequest creates or replaces a payment.
type PaymentRequest struct {
	ClientID      int64           `json:"client_id"`
	Date          string          `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Notes         string          `json:"notes"`
	TargetSaleIDs []int64         `json:"target_sale_ids,omitempty"`
}

func (r PaymentRequest) toInput() ledger.PaymentInput {
	return ledger.PaymentInput{
		ClientID:      r.ClientID,
		Date:          r.Date,
		Amount:        r.Amount,
		Notes:         r.Notes,
		TargetSaleIDs: r.TargetSaleIDs,
	}
}

// =============================================================================
// REPORTS
// =============================================================================

// SummaryDTO holds dashboard totals.
type SummaryDTO struct {
	From           string          `json:"from,omitempty"`
	To             string          `json:"to,omitempty"`
	SalesCount     int             `json:"sales_count"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
	TotalPayments  decimal.Decimal `json:"total_payments"`
	TotalDelivery  decimal.Decimal `json:"total_delivery"`
	TotalLabor     decimal.Decimal `json:"total_labor"`
	CashRevenue    decimal.Decimal `json:"cash_revenue"`
}

// ProductSalesDTO is a product with sold quantity and revenue.
type ProductSalesDTO struct {
	ProductID     int64           `json:"product_id"`
	Name          string          `json:"name"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// UnsoldProductDTO is a product with the date it was last sold.
type UnsoldProductDTO struct {
	ProductDTO
	LastSold string `json:"last_sold,omitempty"`
}

// InventoryDTO values the stock on hand.
type InventoryDTO struct {
	ProductCount    int             `json:"product_count"`
	PurchaseCapital decimal.Decimal `json:"purchase_capital"`
	SellCapital     decimal.Decimal `json:"sell_capital"`
}

// ViolationDTO is one broken invariant found by the audit.
type ViolationDTO struct {
	Kind     string `json:"kind"`
	Entity   string `json:"entity"`
	EntityID int64  `json:"entity_id"`
	Detail   string `json:"detail"`
}

// AuditDTO is the response of GET /api/reports/audit.
type AuditDTO struct {
	OK         bool           `json:"ok"`
	Violations []ViolationDTO `json:"violations"`
}

// =============================================================================
// MISC
// =============================================================================

// CreatedResponse carries the id of a newly created record.
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// SettleResponse is the response of POST /api/clients/{id}/settle.
// PaymentID is 0 when the client owed nothing.
type SettleResponse struct {
	PaymentID int64           `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// DemoDTO summarizes what POST /api/demo/load created.
type DemoDTO struct {
	Products int `json:"products"`
	Clients  int `json:"clients"`
	Sales    int `json:"sales"`
	Payments int `json:"payments"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toProductDTO(p ledger.Product) ProductDTO {
	dto := ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Unit:          p.Unit,
		PricePerUnit:  p.PricePerUnit,
		PurchasePrice: p.PurchasePrice,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		LowStock:      p.IsLowStock(),
	}
	if !p.CreatedAt.IsZero() {
		dto.CreatedAt = p.CreatedAt.Format("2006-01-02 15:04:05")
	}
	return dto
}

func toProductDTOs(ps []ledger.Product) []ProductDTO {
	out := make([]ProductDTO, len(ps))
	for i, p := range ps {
		out[i] = toProductDTO(p)
	}
	return out
}

func toClientDTO(c ledger.Client) ClientDTO {
	return ClientDTO{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		IsRegular: c.IsRegular,
		Notes:     c.Notes,
	}
}

func toClientDTOs(cs []ledger.Client) []ClientDTO {
	out := make([]ClientDTO, len(cs))
	for i, c := range cs {
		out[i] = toClientDTO(c)
	}
	return out
}

func toSaleDTO(s ledger.Sale) SaleDTO {
	return SaleDTO{
		ID:                 s.ID,
		ClientID:           s.ClientID,
		Date:               s.Date,
		Subtotal:           s.Subtotal,
		SaleDiscountAmount: s.SaleDiscountAmount,
		TotalDiscount:      s.SaleDiscountAmount,
		DeliveryPrice:      s.DeliveryPrice,
		LaborCost:          s.LaborCost,
		Total:              s.Total,
		Paid:               s.Paid,
		Remaining:          s.Remaining,
		IsCredit:           s.IsCredit,
	}
}

func toSaleSummaryDTO(s ledger.SaleSummary) SaleDTO {
	dto := toSaleDTO(s.Sale)
	dto.ClientName = s.ClientName
	dto.TotalDiscount = s.TotalDiscount
	return dto
}

func toSaleItemDTOs(items []ledger.SaleItem) []SaleItemDTO {
	out := make([]SaleItemDTO, len(items))
	for i, it := range items {
		out[i] = SaleItemDTO{
			ID:             it.ID,
			SaleID:         it.SaleID,
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			DiscountAmount: it.DiscountAmount,
			TotalPrice:     it.TotalPrice,
		}
	}
	return out
}

func toPaymentDTO(p ledger.Payment) PaymentDTO {
	return PaymentDTO{
		ID:         p.ID,
		ClientID:   p.ClientID,
		ClientName: p.ClientName,
		Date:       p.Date,
		Amount:     p.Amount,
		Notes:      p.Notes,
	}
}

func toPaymentDTOs(ps []ledger.Payment) []PaymentDTO {
	out := make([]PaymentDTO, len(ps))
	for i, p := range ps {
		out[i] = toPaymentDTO(p)
	}
	return out
}

func toViolationDTOs(vs []ledger.Violation) []ViolationDTO {
	out := make([]ViolationDTO, len(vs))
	for i, v := range vs {
		out[i] = ViolationDTO{
			Kind:     string(v.Kind),
			Entity:   v.Entity,
			EntityID: v.EntityID,
			Detail:   v.Detail,
		}
	}
	return out
}
