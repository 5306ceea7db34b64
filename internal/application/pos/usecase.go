package pos

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// ReceiptGenerator puerto del generador de recibos (PDF).
type ReceiptGenerator interface {
	GenerateReceipt(sale *entity.Sale, productNames map[int64]string) ([]byte, error)
}

var validPayments = map[string]bool{
	entity.PaymentCash:        true,
	entity.PaymentCreditCard:  true,
	entity.PaymentDebitCard:   true,
	entity.PaymentInsurance:   true,
	entity.PaymentCheck:       true,
	entity.PaymentGiftCard:    true,
	entity.PaymentStoreCredit: true,
}

// UseCase cierre de ventas del punto de venta. El flujo de ProcessSale es:
// reservar todo el stock por adelantado, persistir la venta y confirmar las
// reservas en una sola transacción, y liberar todo si algo falla antes de
// confirmar.
type UseCase struct {
	products  repository.ProductRepository
	customers repository.CustomerRepository
	sales     repository.SaleRepository
	batches   repository.BatchRepository
	engine    *inventory.ReservationEngine
	tx        inventory.TxRunner
	receipts  ReceiptGenerator
	taxRate   decimal.Decimal
}

func NewUseCase(
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	sales repository.SaleRepository,
	batches repository.BatchRepository,
	engine *inventory.ReservationEngine,
	tx inventory.TxRunner,
	receipts ReceiptGenerator,
	taxRate decimal.Decimal,
) *UseCase {
	return &UseCase{
		products:  products,
		customers: customers,
		sales:     sales,
		batches:   batches,
		engine:    engine,
		tx:        tx,
		receipts:  receipts,
		taxRate:   taxRate,
	}
}

// buildCart valida las líneas contra el catálogo y arma el carrito con los
// precios vigentes.
func (uc *UseCase) buildCart(items []dto.CartItemRequest, customerID *int64, discount *decimal.Decimal) (Cart, error) {
	if len(items) == 0 {
		return Cart{}, domain.ErrEmptyCart
	}
	cart := Cart{CustomerID: customerID, TaxRate: uc.taxRate, DiscountAmount: decimal.Zero}
	if discount != nil {
		cart.DiscountAmount = *discount
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return Cart{}, fmt.Errorf("cantidad inválida para producto %d: %w", it.ProductID, domain.ErrInvalidInput)
		}
		product, err := uc.products.GetByID(it.ProductID)
		if err != nil {
			return Cart{}, err
		}
		if !product.IsActive {
			return Cart{}, fmt.Errorf("producto %s inactivo: %w", product.SKU, domain.ErrConflict)
		}
		if product.RequiresPrescription && it.PrescriptionNumber == "" {
			return Cart{}, fmt.Errorf("producto %s requiere receta: %w", product.SKU, domain.ErrInvalidInput)
		}
		lineDiscount := decimal.Zero
		if it.DiscountAmount != nil {
			lineDiscount = *it.DiscountAmount
		}
		cart.Items = append(cart.Items, CartItem{
			ProductID:          product.ID,
			ProductName:        product.Name,
			SKU:                product.SKU,
			Quantity:           it.Quantity,
			UnitPrice:          product.SellingPrice,
			DiscountAmount:     lineDiscount,
			PrescriptionNumber: it.PrescriptionNumber,
			PrescriberName:     it.PrescriberName,
			DaysSupply:         it.DaysSupply,
		})
	}
	return cart, nil
}

// Quote calcula los totales del carrito sin tocar stock, verificando que haya
// disponible para cada línea.
func (uc *UseCase) Quote(ctx context.Context, req dto.QuoteRequest) (dto.QuoteResponse, error) {
	cart, err := uc.buildCart(req.Items, nil, req.DiscountAmount)
	if err != nil {
		return dto.QuoteResponse{}, err
	}
	for _, it := range cart.Items {
		available, err := uc.batches.AvailableStock(ctx, it.ProductID)
		if err != nil {
			return dto.QuoteResponse{}, err
		}
		if available < it.Quantity {
			return dto.QuoteResponse{}, &domain.InsufficientStockError{
				Requested: it.Quantity,
				Available: available,
			}
		}
	}
	return dto.QuoteResponse{
		Subtotal:       cart.Subtotal(),
		DiscountAmount: cart.DiscountAmount,
		TaxAmount:      cart.TaxAmount(),
		Total:          cart.Total(),
		ItemCount:      cart.ItemCount(),
	}, nil
}

// ProcessSale cierra una venta completa. Si cualquier línea no puede
// reservarse, no se vende nada. Si la confirmación detecta un lote en estado
// inconsistente, la transacción se revierte y el error sube tal cual: las
// reservas quedan vivas para reconciliación manual, nunca se corrigen solas.
func (uc *UseCase) ProcessSale(ctx context.Context, req dto.ProcessSaleRequest, cashierID int64) (*entity.Sale, error) {
	if !validPayments[req.PaymentMethod] {
		return nil, fmt.Errorf("método de pago %q: %w", req.PaymentMethod, domain.ErrInvalidInput)
	}
	cart, err := uc.buildCart(req.Items, req.CustomerID, req.DiscountAmount)
	if err != nil {
		return nil, err
	}

	total := cart.Total()
	amountPaid := req.AmountPaid
	change := decimal.Zero
	if req.PaymentMethod == entity.PaymentCash {
		if amountPaid.LessThan(total) {
			return nil, domain.ErrInsufficientPayment
		}
		change = amountPaid.Sub(total)
	} else {
		amountPaid = total
	}

	// Fase 1: apartar todo el stock antes de tocar la venta.
	reservations := make([]*inventory.Reservation, 0, len(cart.Items))
	releaseAll := func() {
		for _, r := range reservations {
			_ = uc.engine.Release(r)
		}
	}
	for _, it := range cart.Items {
		res, err := uc.engine.Reserve(ctx, it.ProductID, it.Quantity, repository.PolicyFIFO)
		if err != nil {
			releaseAll()
			return nil, err
		}
		reservations = append(reservations, res)
	}

	// Fase 2: venta + confirmación + fidelización en una sola transacción.
	now := time.Now()
	sale := &entity.Sale{
		Subtotal:         cart.Subtotal(),
		TaxAmount:        cart.TaxAmount(),
		DiscountAmount:   cart.DiscountAmount,
		TotalAmount:      total,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		AmountPaid:       amountPaid,
		ChangeGiven:      change,
		Status:           entity.SaleStatusCompleted,
		Notes:            req.Notes,
		CustomerID:       req.CustomerID,
		CashierID:        cashierID,
		CompletedAt:      &now,
	}
	for i, it := range cart.Items {
		item := entity.SaleItem{
			ProductID:          it.ProductID,
			Quantity:           it.Quantity,
			UnitPrice:          it.UnitPrice,
			DiscountAmount:     it.DiscountAmount,
			LineTotal:          it.LineTotal(),
			PrescriptionNumber: it.PrescriptionNumber,
			PrescriberName:     it.PrescriberName,
			DaysSupply:         it.DaysSupply,
		}
		// Trazabilidad: la línea referencia el primer lote de su reserva.
		if lines := reservations[i].Lines; len(lines) > 0 {
			batchID := lines[0].BatchID
			item.BatchID = &batchID
			item.BatchNumber = lines[0].BatchNumber
		}
		sale.Items = append(sale.Items, item)
	}

	err = uc.tx.Run(ctx, func(r inventory.TxRepos) error {
		last, err := r.Sales.LastSaleNumber(saleNumberPrefix(now))
		if err != nil {
			return err
		}
		sale.SaleNumber = nextSaleNumber(last, now)
		if err := r.Sales.Create(sale); err != nil {
			return err
		}
		for _, res := range reservations {
			if err := uc.engine.ConfirmInTx(res, sale.SaleNumber, cashierID, r.Batches, r.Movements); err != nil {
				return err
			}
		}
		if req.CustomerID != nil {
			points := int(total.IntPart()) // 1 punto por unidad monetaria entera
			if err := r.Customers.AddLoyalty(*req.CustomerID, points, total); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidState) {
			releaseAll()
		}
		return nil, err
	}
	return sale, nil
}

// GetSale devuelve una venta con sus líneas.
func (uc *UseCase) GetSale(saleID int64) (*entity.Sale, error) {
	return uc.sales.GetByID(saleID)
}

// ListSales historial de ventas paginado.
func (uc *UseCase) ListSales(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.sales.List(ctx, limit, offset)
}

// Receipt genera el recibo PDF de una venta.
func (uc *UseCase) Receipt(saleID int64) ([]byte, error) {
	sale, err := uc.sales.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(sale.Items))
	for _, it := range sale.Items {
		if _, ok := names[it.ProductID]; ok {
			continue
		}
		product, err := uc.products.GetByID(it.ProductID)
		if err != nil {
			return nil, err
		}
		names[it.ProductID] = product.Name
	}
	return uc.receipts.GenerateReceipt(sale, names)
}

// CreateCustomer alta de cliente del programa de fidelización.
func (uc *UseCase) CreateCustomer(req dto.CustomerRequest) (*entity.Customer, error) {
	if req.FirstName == "" || req.LastName == "" {
		return nil, domain.ErrInvalidInput
	}
	customer := &entity.Customer{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		TotalSpent: decimal.Zero,
		IsActive:   true,
	}
	if err := uc.customers.Create(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomer devuelve un cliente por id.
func (uc *UseCase) GetCustomer(id int64) (*entity.Customer, error) {
	return uc.customers.GetByID(id)
}

// ListCustomers lista clientes activos.
func (uc *UseCase) ListCustomers(limit, offset int) ([]*entity.Customer, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.customers.List(true, limit, offset)
}

func saleNumberPrefix(now time.Time) string {
	return "POS" + now.Format("20060102")
}

// nextSaleNumber secuencia diaria POSyyyymmddNNNN. El número anterior se lee
// dentro de la misma transacción que inserta la venta, así dos cajas no
// pueden emitir el mismo.
func nextSaleNumber(last string, now time.Time) string {
	prefix := saleNumberPrefix(now)
	seq := 1
	if strings.HasPrefix(last, prefix) {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, prefix)); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq)
}
