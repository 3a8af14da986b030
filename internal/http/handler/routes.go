package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/cart"
	"github.com/vladislavdragonenkov/shop/internal/service/catalog"
	"github.com/vladislavdragonenkov/shop/internal/service/image"
	"github.com/vladislavdragonenkov/shop/internal/service/order"
	"github.com/vladislavdragonenkov/shop/internal/service/user"
)

// Services собирает зависимости HTTP-слоя.
type Services struct {
	Users       *user.Service
	Catalog     *catalog.Service
	Carts       *cart.Service
	Orders      *order.Service
	Images      *image.Service
	Idempotency domain.IdempotencyRepository
	// IdempotencyTTL — срок жизни записи идемпотентного оформления;
	// нулевой оставляет значение по умолчанию хранилища.
	IdempotencyTTL time.Duration
	Logger         *log.Entry
}

// RegisterRoutes вешает маршруты API на приложение fiber.
func RegisterRoutes(app *fiber.App, svcs Services) {
	api := app.Group("/api/v1")

	users := api.Group("/users")
	users.Post("/", CreateUser(svcs.Users))
	users.Get("/:id", GetUser(svcs.Users))
	users.Put("/:id", UpdateUser(svcs.Users))
	users.Delete("/:id", DeleteUser(svcs.Users))
	users.Get("/:id/cart", GetUserCart(svcs.Carts))
	users.Post("/:id/cart/items", AddCartItem(svcs.Carts))
	users.Put("/:id/cart/items/:itemID", UpdateCartItem(svcs.Carts))
	users.Delete("/:id/cart/items/:itemID", RemoveCartItem(svcs.Carts))
	users.Get("/:id/orders", ListUserOrders(svcs.Orders))

	categories := api.Group("/categories")
	categories.Post("/", CreateCategory(svcs.Catalog))
	categories.Get("/", ListCategories(svcs.Catalog))
	categories.Get("/:id", GetCategory(svcs.Catalog))
	categories.Put("/:id", UpdateCategory(svcs.Catalog))
	categories.Delete("/:id", DeleteCategory(svcs.Catalog))

	products := api.Group("/products")
	products.Post("/", CreateProduct(svcs.Catalog))
	products.Get("/", ListProducts(svcs.Catalog))
	products.Get("/brands", ListBrands(svcs.Catalog))
	products.Get("/count", CountProducts(svcs.Catalog))
	products.Get("/:id", GetProduct(svcs.Catalog))
	products.Put("/:id", UpdateProduct(svcs.Catalog))
	products.Delete("/:id", DeleteProduct(svcs.Catalog))
	products.Post("/:id/images", UploadImage(svcs.Images))
	products.Get("/:id/images", ListProductImages(svcs.Images))

	carts := api.Group("/carts")
	carts.Get("/:id", GetCart(svcs.Carts))
	carts.Get("/:id/total", GetCartTotal(svcs.Carts))
	carts.Delete("/:id/items", ClearCart(svcs.Carts))

	orders := api.Group("/orders")
	orders.Post("/", PlaceOrder(svcs.Orders, svcs.Idempotency, svcs.IdempotencyTTL, svcs.Logger))
	orders.Get("/:id", GetOrder(svcs.Orders))

	images := api.Group("/images")
	images.Get("/:id", GetImage(svcs.Images))
	images.Get("/:id/content", DownloadImage(svcs.Images))
	images.Put("/:id", UpdateImage(svcs.Images))
	images.Delete("/:id", DeleteImage(svcs.Images))
}
