package domain

// UserRepository описывает требования к хранилищу пользователей.
type UserRepository interface {
	// Create сохраняет нового пользователя. Возвращает ErrEmailTaken, если email занят.
	Create(user User) error
	// Get возвращает пользователя по идентификатору или ErrUserNotFound.
	Get(id string) (User, error)
	// GetByEmail возвращает пользователя по email или ErrUserNotFound.
	GetByEmail(email string) (User, error)
	// ExistsByEmail проверяет занятость email без загрузки записи.
	ExistsByEmail(email string) (bool, error)
	// Update применяет изменения к существующему пользователю.
	Update(user User) error
	// Delete удаляет пользователя по идентификатору.
	Delete(id string) error
}

// CategoryRepository описывает требования к хранилищу категорий.
type CategoryRepository interface {
	// Create сохраняет категорию. Возвращает ErrCategoryExists при дубликате имени.
	Create(category Category) error
	// Get возвращает категорию по идентификатору или ErrCategoryNotFound.
	Get(id string) (Category, error)
	// GetByName возвращает категорию по уникальному имени.
	GetByName(name string) (Category, error)
	// ExistsByName проверяет занятость имени без загрузки записи.
	ExistsByName(name string) (bool, error)
	// List возвращает все категории.
	List() ([]Category, error)
	Update(category Category) error
	Delete(id string) error
}

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	Create(product Product) error
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(id string) (Product, error)
	Update(product Product) error
	Delete(id string) error
	List() ([]Product, error)
	ListByCategory(categoryID string) ([]Product, error)
	ListByCategoryAndBrand(categoryID, brand string) ([]Product, error)
	ListByBrand(brand string) ([]Product, error)
	ListByBrandAndName(brand, name string) ([]Product, error)
	ListByName(name string) ([]Product, error)
	CountByBrandAndName(brand, name string) (int64, error)
	// DistinctBrands возвращает отсортированный список брендов без дубликатов.
	DistinctBrands() ([]string, error)
}

// CartRepository описывает требования к хранилищу корзин.
type CartRepository interface {
	// Create сохраняет новую корзину. Возвращает ErrCartConflict, если у
	// пользователя уже есть корзина (гонка lazy-создания).
	Create(cart Cart) error
	// Get возвращает корзину по идентификатору или ErrCartNotFound.
	Get(id string) (Cart, error)
	// GetByUserID возвращает корзину пользователя или ErrCartNotFound.
	GetByUserID(userID string) (Cart, error)
	// Save перезаписывает состав корзины с учётом optimistic locking:
	// при несовпадении Version возвращает ErrCartConflict, при успехе
	// инкрементирует версию.
	Save(cart Cart) error
	// ClearItems удаляет все позиции, не трогая саму корзину. Идемпотентна:
	// очистка пустой корзины — успешный no-op.
	ClearItems(cartID string) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(id string) (Order, error)
	// ListByUser возвращает заказы пользователя по возрастанию времени
	// создания (стабильный контракт сортировки).
	ListByUser(userID string) ([]Order, error)
	// ListItemsByProduct возвращает все позиции заказов по товару.
	ListItemsByProduct(productID string) ([]OrderItem, error)
	// ConvertCart атомарно фиксирует конвертацию корзины в заказ: сверяет и
	// инкрементирует версию корзины, при decrementStock списывает остатки и
	// записывает заказ с позициями. Либо выполняется всё, либо ничего.
	// Несовпадение версии (конкурентное оформление) — ErrCartConflict.
	ConvertCart(order Order, cartID string, cartVersion int64, decrementStock bool) error
}

// ImageRepository описывает требования к хранилищу изображений товаров.
type ImageRepository interface {
	Create(image Image) error
	// Get возвращает изображение по идентификатору или ErrImageNotFound.
	Get(id string) (Image, error)
	Update(image Image) error
	Delete(id string) error
	ListByProduct(productID string) ([]Image, error)
}
