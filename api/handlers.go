/*
handlers.go - HTTP API handlers for the retail ledger

PURPOSE:
  Exposes the ledger engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to ledger.Ledger.

ENDPOINTS:
  Products:
    GET    /api/products?search=          List products
    POST   /api/products                  Create product
    GET    /api/products/low-stock        Products at or below min stock
    GET    /api/products/{id}             Get product
    PUT    /api/products/{id}             Replace product
    DELETE /api/products/{id}             Delete product

  Clients:
    GET    /api/clients?search=           List clients
    POST   /api/clients                   Create client
    GET    /api/clients/credit            Clients with open credit
    GET    /api/clients/regular           Regular clients
    GET    /api/clients/top?limit=        Top spending clients
    GET    /api/clients/{id}              Get client (with debt)
    PUT    /api/clients/{id}              Replace client
    DELETE /api/clients/{id}              Delete client (409 if referenced)
    GET    /api/clients/{id}/sales        Client's sales
    GET    /api/clients/{id}/payments     Client's payments
    POST   /api/clients/{id}/settle       Pay off all open credit

  Sales:
    GET    /api/sales?from=&to=&client=&type=&page=&page_size=
    POST   /api/sales                     Checkout a cart
    GET    /api/sales/{id}                Sale with items
    PUT    /api/sales/{id}                Replace header fields
    DELETE /api/sales/{id}                Delete sale, restore stock
    GET    /api/sales/{id}/items          List items
    POST   /api/sales/{id}/items          Bulk-add items
    DELETE /api/sale-items/{id}           Delete item, recompute totals

  Payments:
    GET    /api/payments?from=&to=        List payments
    POST   /api/payments                  Add payment (allocated oldest first)
    GET    /api/payments/{id}             Payment with allocations
    PUT    /api/payments/{id}             Reverse and re-apply
    DELETE /api/payments/{id}             Reverse and delete

  Reports / admin:
    GET    /api/reports/summary?from=&to=
    GET    /api/reports/top-products?from=&to=&limit=
    GET    /api/reports/unsold-products?since=
    GET    /api/reports/inventory         Stock valued at purchase and sell prices
    GET    /api/reports/audit
    GET    /api/backup                    Download database file
    POST   /api/restore                   Replace database with upload
    POST   /api/demo/load                 Reset and seed demo data

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, no eligible sales, unusable backup upload
  - 404: Resource not found
  - 409: Insufficient stock, client still referenced
  - 500: Internal errors
  A mutation whose snapshot could not be written is committed; it is
  reported as success and the snapshot failure is logged.

SEE ALSO:
  - dto.go: Request/response data structures
  - demo.go: Demo data loader
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/retail-ledger/ledger"
)

// maxBackupSize bounds POST /api/restore bodies.
const maxBackupSize = 256 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger *ledger.Ledger
	Logger *log.Logger
}

// NewHandler creates a new handler for l.
func NewHandler(l *ledger.Ledger) *Handler {
	return &Handler{Ledger: l, Logger: log.Default()}
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns products, optionally filtered by name.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Ledger.ListProducts(r.Context(), r.URL.Query().Get("search"))
	if h.failed(w, "Failed to list products", err) {
		return
	}
	writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// LowStockProducts returns products at or below their minimum level.
func (h *Handler) LowStockProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Ledger.LowStockProducts(r.Context())
	if h.failed(w, "Failed to list low stock products", err) {
		return
	}
	writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// GetProduct returns a single product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	p, err := h.Ledger.GetProduct(r.Context(), id)
	if h.failed(w, "Failed to get product", err) {
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(*p))
}

// CreateProduct creates a product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := h.Ledger.AddProduct(r.Context(), req.toProduct(0))
	if h.failed(w, "Failed to create product", err) {
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// UpdateProduct replaces a product's fields.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req ProductRequest
	if !decode(w, r, &req) {
		return
	}
	err := h.Ledger.UpdateProduct(r.Context(), req.toProduct(id))
	if h.failed(w, "Failed to update product", err) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteProduct removes a product.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if h.failed(w, "Failed to delete product", h.Ledger.DeleteProduct(r.Context(), id)) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns clients, optionally filtered by name or phone.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Ledger.ListClients(r.Context(), r.URL.Query().Get("search"))
	if h.failed(w, "Failed to list clients", err) {
		return
	}
	writeJSON(w, http.StatusOK, toClientDTOs(clients))
}

// GetClient returns a client with its current debt.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	c, err := h.Ledger.GetClient(ctx, id)
	if h.failed(w, "Failed to get client", err) {
		return
	}
	debt, err := h.Ledger.ClientDebt(ctx, id)
	if h.failed(w, "Failed to get client debt", err) {
		return
	}
	writeJSON(w, http.StatusOK, ClientDebtDTO{ClientDTO: toClientDTO(*c), TotalRemaining: debt})
}

// CreateClient creates a client.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := h.Ledger.AddClient(r.Context(), req.toClient(0))
	if h.failed(w, "Failed to create client", err) {
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// UpdateClient replaces a client's fields.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req ClientRequest
	if !decode(w, r, &req) {
		return
	}
	if h.failed(w, "Failed to update client", h.Ledger.UpdateClient(r.Context(), req.toClient(id))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteClient removes a client nothing references.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if h.failed(w, "Failed to delete client", h.Ledger.DeleteClient(r.Context(), id)) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegularClients returns the clients flagged as regulars.
func (h *Handler) RegularClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Ledger.RegularClients(r.Context())
	if h.failed(w, "Failed to list regular clients", err) {
		return
	}
	writeJSON(w, http.StatusOK, toClientDTOs(clients))
}

// ClientsWithCredit returns clients owing money, largest debt first.
func (h *Handler) ClientsWithCredit(w http.ResponseWriter, r *http.Request) {
	debts, err := h.Ledger.ClientsWithCredit(r.Context())
	if h.failed(w, "Failed to list clients with credit", err) {
		return
	}
	out := make([]ClientDebtDTO, len(debts))
	for i, d := range debts {
		out[i] = ClientDebtDTO{ClientDTO: toClientDTO(d.Client), TotalRemaining: d.TotalRemaining}
	}
	writeJSON(w, http.StatusOK, out)
}

// TopSpendingClients returns the clients with the highest sale totals.
func (h *Handler) TopSpendingClients(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	top, err := h.Ledger.TopSpendingClients(r.Context(), limit)
	if h.failed(w, "Failed to list top clients", err) {
		return
	}
	out := make([]ClientSpendingDTO, len(top))
	for i, c := range top {
		out[i] = ClientSpendingDTO{ClientDTO: toClientDTO(c.Client), TotalSpent: c.TotalSpent}
	}
	writeJSON(w, http.StatusOK, out)
}

// ClientSales returns every sale of a client, oldest first.
func (h *Handler) ClientSales(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	sales, err := h.Ledger.SalesByClient(r.Context(), id)
	if h.failed(w, "Failed to list client sales", err) {
		return
	}
	out := make([]SaleDTO, len(sales))
	for i, s := range sales {
		out[i] = toSaleDTO(s)
	}
	writeJSON(w, http.StatusOK, out)
}

// ClientPayments returns a client's payments, newest first.
func (h *Handler) ClientPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	payments, err := h.Ledger.PaymentsByClient(r.Context(), id)
	if h.failed(w, "Failed to list client payments", err) {
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTOs(payments))
}

// SettleClient pays off all of a client's open credit sales.
func (h *Handler) SettleClient(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	paymentID, err := h.Ledger.SettleClientDebts(ctx, id)
	if h.failed(w, "Failed to settle client debts", err) {
		return
	}
	resp := SettleResponse{PaymentID: paymentID}
	if paymentID != 0 {
		p, err := h.Ledger.GetPayment(ctx, paymentID)
		if h.failed(w, "Failed to get settlement payment", err) {
			return
		}
		resp.Amount = p.Amount
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

// ListSales returns one page of sales, newest first.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, ok := queryInt(w, r, "page")
	if !ok {
		return
	}
	pageSize, ok := queryInt(w, r, "page_size")
	if !ok {
		return
	}
	filter := ledger.SaleFilter{
		From:         q.Get("from"),
		To:           q.Get("to"),
		ClientSearch: q.Get("client"),
		Type:         ledger.SaleType(q.Get("type")),
	}

	result, err := h.Ledger.ListSales(r.Context(), filter, page, pageSize)
	if h.failed(w, "Failed to list sales", err) {
		return
	}
	dto := SalePageDTO{
		Sales:    make([]SaleDTO, len(result.Sales)),
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	}
	for i, s := range result.Sales {
		dto.Sales[i] = toSaleSummaryDTO(s)
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetSale returns a sale with its items.
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	s, err := h.Ledger.GetSale(ctx, id)
	if h.failed(w, "Failed to get sale", err) {
		return
	}
	items, err := h.Ledger.ListSaleItems(ctx, id)
	if h.failed(w, "Failed to list sale items", err) {
		return
	}
	dto := toSaleSummaryDTO(*s)
	dto.Items = toSaleItemDTOs(items)
	writeJSON(w, http.StatusOK, dto)
}

// Checkout builds a sale from a cart and records it.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := h.Ledger.Checkout(r.Context(), req.toCart())
	if h.failed(w, "Failed to create sale", err) {
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// UpdateSale replaces a sale's header fields. Items and stock are untouched.
func (h *Handler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req SaleHeaderRequest
	if !decode(w, r, &req) {
		return
	}
	if h.failed(w, "Failed to update sale", h.Ledger.UpdateSale(r.Context(), id, req.toInput())) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSale removes a sale and restores its stock.
func (h *Handler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if h.failed(w, "Failed to delete sale", h.Ledger.DeleteSale(r.Context(), id)) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSaleItems returns the items of a sale.
func (h *Handler) ListSaleItems(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	items, err := h.Ledger.ListSaleItems(r.Context(), id)
	if h.failed(w, "Failed to list sale items", err) {
		return
	}
	writeJSON(w, http.StatusOK, toSaleItemDTOs(items))
}

// AddSaleItems inserts several items under an existing sale, all or nothing.
func (h *Handler) AddSaleItems(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req BulkItemsRequest
	if !decode(w, r, &req) {
		return
	}
	ids, err := h.Ledger.AddBulkSaleItems(r.Context(), id, req.toInputs())
	if h.failed(w, "Failed to add sale items", err) {
		return
	}
	writeJSON(w, http.StatusCreated, map[string][]int64{"ids": ids})
}

// DeleteSaleItem removes one item and recomputes its sale's totals.
func (h *Handler) DeleteSaleItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if h.failed(w, "Failed to delete sale item", h.Ledger.DeleteSaleItem(r.Context(), id)) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns payments in a date range, newest first.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	payments, err := h.Ledger.ListPayments(r.Context(), q.Get("from"), q.Get("to"))
	if h.failed(w, "Failed to list payments", err) {
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTOs(payments))
}

// GetPayment returns a payment and how it was allocated.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	p, err := h.Ledger.GetPayment(ctx, id)
	if h.failed(w, "Failed to get payment", err) {
		return
	}
	allocs, err := h.Ledger.PaymentAllocations(ctx, id)
	if h.failed(w, "Failed to list payment allocations", err) {
		return
	}
	dto := toPaymentDTO(*p)
	for _, a := range allocs {
		dto.Allocations = append(dto.Allocations, AllocationDTO{SaleID: a.SaleID, Amount: a.Amount})
	}
	writeJSON(w, http.StatusOK, dto)
}

// CreatePayment records a payment and allocates it.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := h.Ledger.AddPayment(r.Context(), req.toInput())
	if h.failed(w, "Failed to add payment", err) {
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// UpdatePayment reverses a payment and applies the new values.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req PaymentRequest
	if !decode(w, r, &req) {
		return
	}
	if h.failed(w, "Failed to update payment", h.Ledger.UpdatePayment(r.Context(), id, req.toInput())) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeletePayment reverses and removes a payment.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if h.failed(w, "Failed to delete payment", h.Ledger.DeletePayment(r.Context(), id)) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// Summary returns dashboard totals for a date range.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	sum, err := h.Ledger.Summary(r.Context(), from, to)
	if h.failed(w, "Failed to build summary", err) {
		return
	}
	writeJSON(w, http.StatusOK, SummaryDTO{
		From:           from,
		To:             to,
		SalesCount:     sum.SalesCount,
		TotalSales:     sum.TotalSales,
		TotalRemaining: sum.TotalRemaining,
		TotalPayments:  sum.TotalPayments,
		TotalDelivery:  sum.TotalDelivery,
		TotalLabor:     sum.TotalLabor,
		CashRevenue:    sum.CashRevenue,
	})
}

// TopProducts returns the best selling products by quantity for a date range.
func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	q := r.URL.Query()
	top, err := h.Ledger.TopSellingProducts(r.Context(), q.Get("from"), q.Get("to"), limit)
	if h.failed(w, "Failed to list top products", err) {
		return
	}
	out := make([]ProductSalesDTO, len(top))
	for i, p := range top {
		out[i] = ProductSalesDTO{
			ProductID:     p.ProductID,
			Name:          p.Name,
			TotalQuantity: p.TotalQuantity,
			TotalRevenue:  p.TotalRevenue,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// UnsoldProducts returns products with no sale since the given date,
// or never sold when since is empty.
func (h *Handler) UnsoldProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Ledger.UnsoldProducts(r.Context(), r.URL.Query().Get("since"))
	if h.failed(w, "Failed to list unsold products", err) {
		return
	}
	out := make([]UnsoldProductDTO, len(products))
	for i, p := range products {
		out[i] = UnsoldProductDTO{ProductDTO: toProductDTO(p.Product), LastSold: p.LastSold}
	}
	writeJSON(w, http.StatusOK, out)
}

// Inventory returns the value of the stock on hand.
func (h *Handler) Inventory(w http.ResponseWriter, r *http.Request) {
	capital, err := h.Ledger.InventoryCapital(r.Context())
	if h.failed(w, "Failed to value inventory", err) {
		return
	}
	writeJSON(w, http.StatusOK, InventoryDTO{
		ProductCount:    capital.ProductCount,
		PurchaseCapital: capital.PurchaseValue,
		SellCapital:     capital.SellValue,
	})
}

// Audit checks the ledger invariants over every sale and product.
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	violations, err := h.Ledger.CheckInvariants(r.Context())
	if h.failed(w, "Failed to audit ledger", err) {
		return
	}
	writeJSON(w, http.StatusOK, AuditDTO{OK: len(violations) == 0, Violations: toViolationDTOs(violations)})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// Backup streams the serialized database as a file download.
func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	data, err := h.Ledger.Backup(r.Context())
	if h.failed(w, "Failed to back up database", err) {
		return
	}
	name := fmt.Sprintf("ledger-backup-%s.db", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Restore replaces the database with the uploaded file.
// The previous state is kept if the upload is not a valid ledger database.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid backup upload", err)
		return
	}
	err = h.Ledger.Restore(r.Context(), data)
	if h.failed(w, "Failed to restore database", err) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadDemo resets the database and seeds demo data.
func (h *Handler) LoadDemo(w http.ResponseWriter, r *http.Request) {
	result, err := LoadDemo(r.Context(), h.Ledger)
	if h.failed(w, "Failed to load demo data", err) {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// HELPERS
// =============================================================================

// failed writes the error response for err and reports whether it did.
// A snapshot failure after a committed mutation is logged, not returned.
func (h *Handler) failed(w http.ResponseWriter, message string, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ledger.ErrSnapshotFailed) {
		h.Logger.Printf("[API] Warning: %s: %v", message, err)
		return false
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Printf("[API] %s: %v", message, err)
	}
	writeError(w, status, message, err)
	return true
}

func statusFor(err error) int {
	switch {
	case ledger.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInsufficientStock), errors.Is(err, ledger.ErrClientHasSales):
		return http.StatusConflict
	case ledger.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func urlID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name), err)
		return 0, false
	}
	return n, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
