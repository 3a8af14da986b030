package memory

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	store := NewStore()
	repo := NewUserRepository(store)

	user := domain.User{ID: "user-1", Email: "buyer@example.com", FirstName: "Ivan"}
	if err := repo.Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	byID, err := repo.Get(user.ID)
	if err != nil || byID.Email != user.Email {
		t.Fatalf("get by id: %v (%+v)", err, byID)
	}

	// Поиск по email не зависит от регистра.
	byEmail, err := repo.GetByEmail("BUYER@example.com")
	if err != nil || byEmail.ID != user.ID {
		t.Fatalf("get by email: %v (%+v)", err, byEmail)
	}

	taken, err := repo.ExistsByEmail(user.Email)
	if err != nil || !taken {
		t.Fatalf("exists by email: %v %v", taken, err)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	store := NewStore()
	repo := NewUserRepository(store)

	if err := repo.Create(domain.User{ID: "user-1", Email: "buyer@example.com"}); err != nil {
		t.Fatalf("create first: %v", err)
	}
	err := repo.Create(domain.User{ID: "user-2", Email: "Buyer@Example.com"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserRepository_UpdateKeepsCreatedAt(t *testing.T) {
	store := NewStore()
	repo := NewUserRepository(store)

	user := domain.User{ID: "user-1", Email: "buyer@example.com", FirstName: "Ivan"}
	if err := repo.Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	user.FirstName = "Pyotr"
	if err := repo.Update(user); err != nil {
		t.Fatalf("update user: %v", err)
	}

	updated, _ := repo.Get(user.ID)
	if updated.FirstName != "Pyotr" {
		t.Fatalf("expected updated name, got %s", updated.FirstName)
	}
}

func TestUserRepository_Delete(t *testing.T) {
	store := NewStore()
	repo := NewUserRepository(store)

	if err := repo.Create(domain.User{ID: "user-1", Email: "buyer@example.com"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := repo.Delete("user-1"); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := repo.Get("user-1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := repo.Delete("user-1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on repeated delete, got %v", err)
	}
}
