package domain_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

func TestToUserDto_HidesCredential(t *testing.T) {
	user := domain.User{
		ID:           "user-1",
		Email:        "buyer@example.com",
		FirstName:    "Ivan",
		PasswordHash: "super-secret",
	}

	dto := domain.ToUserDto(user)
	if dto.Email != user.Email || dto.ID != user.ID {
		t.Fatalf("unexpected dto: %+v", dto)
	}

	raw, err := json.Marshal(dto)
	if err != nil {
		t.Fatalf("marshal dto: %v", err)
	}
	if strings.Contains(string(raw), "super-secret") {
		t.Fatal("credential secret leaked into dto payload")
	}
}

func TestToCartDto_Totals(t *testing.T) {
	cart := makeCart()
	dto := domain.ToCartDto(cart)

	if dto.TotalMinor != 2550 {
		t.Fatalf("expected total 2550, got %d", dto.TotalMinor)
	}
	if len(dto.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(dto.Items))
	}
	if dto.Items[0].TotalPriceMinor != 2000 {
		t.Fatalf("expected line total 2000, got %d", dto.Items[0].TotalPriceMinor)
	}
}

func TestToOrderDto(t *testing.T) {
	order := makeOrder()
	dto := domain.ToOrderDto(order)

	if dto.Status != string(domain.OrderStatusPending) {
		t.Fatalf("unexpected status %s", dto.Status)
	}
	if dto.AmountMinor != order.AmountMinor {
		t.Fatalf("expected amount %d, got %d", order.AmountMinor, dto.AmountMinor)
	}
	if len(dto.Items) != 1 || dto.Items[0].TotalPriceMinor != 500 {
		t.Fatalf("unexpected items: %+v", dto.Items)
	}
}

func TestToImageDto_NoBinaryPayload(t *testing.T) {
	image := domain.Image{
		ID:          "img-1",
		ProductID:   "product-1",
		FileName:    "front.jpg",
		ContentType: "image/jpeg",
		Data:        []byte{0xFF, 0xD8, 0xFF},
		DownloadURL: "/api/v1/images/img-1/download",
		CreatedAt:   time.Now().UTC(),
	}

	dto := domain.ToImageDto(image)
	raw, err := json.Marshal(dto)
	if err != nil {
		t.Fatalf("marshal dto: %v", err)
	}
	if strings.Contains(string(raw), "data") {
		t.Fatalf("binary payload leaked into dto: %s", raw)
	}
}
