package domain

import (
	"strings"
	"time"
)

// Category — группировка товаров с уникальным именем.
type Category struct {
	ID   string
	Name string
}

// Product — позиция каталога. Цена хранится в минимальных денежных единицах.
type Product struct {
	ID          string
	Name        string
	Brand       string
	Description string
	PriceMinor  int64
	// Stock учитывается только при включённом контроле остатков (см. service/order).
	Stock      int32
	CategoryID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateInvariants проверяет базовые инварианты товара.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ErrNameRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrItemPriceInvalid)
	}

	return errs
}
