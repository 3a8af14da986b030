package image

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	store := memory.NewStore()
	products := memory.NewProductRepository(store)
	if err := products.Create(domain.Product{
		ID:         "prod-a",
		Name:       "Keyboard",
		PriceMinor: 1000,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	return NewService(memory.NewImageRepository(store), products, "http://localhost:8080/", nil)
}

func TestSave(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	image, err := svc.Save(ctx, domain.Image{
		ProductID:   "prod-a",
		FileName:    "front.png",
		ContentType: "image/png",
		Data:        []byte{0x89, 0x50, 0x4e, 0x47},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if image.ID == "" {
		t.Fatal("expected generated image id")
	}
	want := "http://localhost:8080/api/v1/images/" + image.ID + "/content"
	if image.DownloadURL != want {
		t.Fatalf("expected download url %s, got %s", want, image.DownloadURL)
	}
}

func TestSaveValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Save(ctx, domain.Image{ProductID: "prod-a", FileName: "x.png"}); !errors.Is(err, domain.ErrImageDataRequired) {
		t.Fatalf("expected ErrImageDataRequired, got %v", err)
	}
	if _, err := svc.Save(ctx, domain.Image{ProductID: "missing", Data: []byte{1}}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdatePreservesAddress(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	image, err := svc.Save(ctx, domain.Image{ProductID: "prod-a", FileName: "front.png", Data: []byte{1}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	updated, err := svc.Update(ctx, domain.Image{
		ID:          image.ID,
		FileName:    "front-v2.png",
		ContentType: "image/png",
		Data:        []byte{2, 3},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.DownloadURL != image.DownloadURL {
		t.Fatalf("expected stable download url, got %s", updated.DownloadURL)
	}
	if updated.ProductID != "prod-a" {
		t.Fatalf("expected preserved product id, got %s", updated.ProductID)
	}

	got, err := svc.Get(ctx, image.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FileName != "front-v2.png" || len(got.Data) != 2 {
		t.Fatalf("unexpected stored image: %+v", got)
	}
}

func TestListByProduct(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"a.png", "b.png"} {
		if _, err := svc.Save(ctx, domain.Image{ProductID: "prod-a", FileName: name, Data: []byte{1}}); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}

	images, err := svc.ListByProduct(ctx, "prod-a")
	if err != nil {
		t.Fatalf("ListByProduct: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}

	if _, err := svc.ListByProduct(ctx, "missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	image, err := svc.Save(ctx, domain.Image{ProductID: "prod-a", FileName: "a.png", Data: []byte{1}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := svc.Delete(ctx, image.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, image.ID); !errors.Is(err, domain.ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}
