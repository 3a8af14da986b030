package domain

import "time"

// DTO-слой — чистое, тотальное отображение сущностей в транспортные формы.
// Внутренние поля (секрет учётной записи, содержимое изображений) наружу
// не попадают.

// UserDto — транспортная форма пользователя.
type UserDto struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// CartItemDto — транспортная форма позиции корзины.
type CartItemDto struct {
	ID              string `json:"id"`
	ProductID       string `json:"product_id"`
	Qty             int32  `json:"qty"`
	UnitPriceMinor  int64  `json:"unit_price_minor"`
	TotalPriceMinor int64  `json:"total_price_minor"`
}

// CartDto — транспортная форма корзины с посчитанным итогом.
type CartDto struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	Items      []CartItemDto `json:"items"`
	TotalMinor int64         `json:"total_minor"`
}

// OrderItemDto — транспортная форма позиции заказа.
type OrderItemDto struct {
	ProductID       string `json:"product_id"`
	Qty             int32  `json:"qty"`
	UnitPriceMinor  int64  `json:"unit_price_minor"`
	TotalPriceMinor int64  `json:"total_price_minor"`
}

// OrderDto — транспортная форма заказа.
type OrderDto struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Status      string         `json:"status"`
	AmountMinor int64          `json:"amount_minor"`
	Items       []OrderItemDto `json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ProductDto — транспортная форма товара.
type ProductDto struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand,omitempty"`
	Description string `json:"description,omitempty"`
	PriceMinor  int64  `json:"price_minor"`
	CategoryID  string `json:"category_id,omitempty"`
}

// ImageDto — транспортная форма изображения (без содержимого).
type ImageDto struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	FileName    string `json:"file_name"`
	DownloadURL string `json:"download_url"`
}

// ToUserDto отображает пользователя, не раскрывая секрет учётной записи.
func ToUserDto(user User) UserDto {
	return UserDto{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

// ToCartDto отображает корзину вместе с итоговой суммой.
func ToCartDto(cart Cart) CartDto {
	items := make([]CartItemDto, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItemDto{
			ID:              item.ID,
			ProductID:       item.ProductID,
			Qty:             item.Qty,
			UnitPriceMinor:  item.PriceMinor,
			TotalPriceMinor: int64(item.Qty) * item.PriceMinor,
		})
	}
	return CartDto{
		ID:         cart.ID,
		UserID:     cart.UserID,
		Items:      items,
		TotalMinor: cart.TotalMinor(),
	}
}

// ToOrderDto отображает заказ с позициями-снимками.
func ToOrderDto(order Order) OrderDto {
	items := make([]OrderItemDto, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDto{
			ProductID:       item.ProductID,
			Qty:             item.Qty,
			UnitPriceMinor:  item.PriceMinor,
			TotalPriceMinor: int64(item.Qty) * item.PriceMinor,
		})
	}
	return OrderDto{
		ID:          order.ID,
		UserID:      order.UserID,
		Status:      string(order.Status),
		AmountMinor: order.AmountMinor,
		Items:       items,
		CreatedAt:   order.CreatedAt,
	}
}

// ToProductDto отображает товар.
func ToProductDto(product Product) ProductDto {
	return ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Brand:       product.Brand,
		Description: product.Description,
		PriceMinor:  product.PriceMinor,
		CategoryID:  product.CategoryID,
	}
}

// ToImageDto отображает метаданные изображения без бинарного содержимого.
func ToImageDto(image Image) ImageDto {
	return ImageDto{
		ID:          image.ID,
		ProductID:   image.ProductID,
		FileName:    image.FileName,
		DownloadURL: image.DownloadURL,
	}
}
