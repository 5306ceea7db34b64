package http

import (
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// Conversión entidad → DTO de respuesta. Las entidades nunca salen por el
// borde HTTP.

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:                    p.ID,
		SKU:                   p.SKU,
		Barcode:               p.Barcode,
		NDCNumber:             p.NDCNumber,
		Name:                  p.Name,
		GenericName:           p.GenericName,
		BrandName:             p.BrandName,
		Description:           p.Description,
		DosageForm:            p.DosageForm,
		Strength:              p.Strength,
		Manufacturer:          p.Manufacturer,
		CostPrice:             p.CostPrice,
		SellingPrice:          p.SellingPrice,
		MinStockLevel:         p.MinStockLevel,
		MaxStockLevel:         p.MaxStockLevel,
		ReorderPoint:          p.ReorderPoint,
		RequiresPrescription:  p.RequiresPrescription,
		IsControlledSubstance: p.IsControlledSubstance,
		CategoryID:            p.CategoryID,
		IsActive:              p.IsActive,
		IsDiscontinued:        p.IsDiscontinued,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func toCategoryResponse(cat *entity.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          cat.ID,
		Name:        cat.Name,
		Description: cat.Description,
		IsActive:    cat.IsActive,
	}
}

func toBatchResponse(b *entity.Batch) dto.BatchResponse {
	return dto.BatchResponse{
		ID:               b.ID,
		ProductID:        b.ProductID,
		BatchNumber:      b.BatchNumber,
		LotNumber:        b.LotNumber,
		InitialQuantity:  b.InitialQuantity,
		CurrentQuantity:  b.CurrentQuantity,
		ReservedQuantity: b.ReservedQuantity,
		Available:        b.Available(),
		CostPerUnit:      b.CostPerUnit,
		SellingPrice:     b.SellingPricePerUnit,
		ExpiryDate:       b.ExpiryDate,
		ReceivedDate:     b.ReceivedDate,
		SupplierName:     b.SupplierName,
		IsActive:         b.IsActive,
		IsExpired:        b.IsExpired,
	}
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		ProductID:     m.ProductID,
		BatchID:       m.BatchID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		Reference:     m.Reference,
		Notes:         m.Notes,
		UserID:        m.UserID,
		CreatedAt:     m.CreatedAt,
	}
}

func toReservationResponse(res *inventory.Reservation) dto.ReservationResponse {
	out := dto.ReservationResponse{
		ProductID: res.ProductID,
		Requested: res.Requested,
		Lines:     make([]dto.ReservationLineDTO, 0, len(res.Lines)),
	}
	for _, l := range res.Lines {
		out.Lines = append(out.Lines, dto.ReservationLineDTO{
			BatchID:     l.BatchID,
			BatchNumber: l.BatchNumber,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			ExpiryDate:  l.ExpiryDate,
		})
	}
	return out
}

func fromReservationResponse(in dto.ReservationResponse) *inventory.Reservation {
	res := &inventory.Reservation{
		ProductID: in.ProductID,
		Requested: in.Requested,
		Lines:     make([]inventory.ReservationLine, 0, len(in.Lines)),
	}
	for _, l := range in.Lines {
		res.Lines = append(res.Lines, inventory.ReservationLine{
			BatchID:     l.BatchID,
			BatchNumber: l.BatchNumber,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			ExpiryDate:  l.ExpiryDate,
		})
	}
	return res
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:             s.ID,
		SaleNumber:     s.SaleNumber,
		Subtotal:       s.Subtotal,
		TaxAmount:      s.TaxAmount,
		DiscountAmount: s.DiscountAmount,
		TotalAmount:    s.TotalAmount,
		PaymentMethod:  s.PaymentMethod,
		AmountPaid:     s.AmountPaid,
		ChangeGiven:    s.ChangeGiven,
		Status:         s.Status,
		CustomerID:     s.CustomerID,
		CashierID:      s.CashierID,
		CompletedAt:    s.CompletedAt,
		CreatedAt:      s.CreatedAt,
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			DiscountAmount: it.DiscountAmount,
			LineTotal:      it.LineTotal,
			BatchID:        it.BatchID,
			BatchNumber:    it.BatchNumber,
		})
	}
	return out
}

func toCustomerResponse(c *entity.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:            c.ID,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Email:         c.Email,
		Phone:         c.Phone,
		LoyaltyPoints: c.LoyaltyPoints,
		TotalSpent:    c.TotalSpent,
		LastVisit:     c.LastVisit,
		IsActive:      c.IsActive,
	}
}
