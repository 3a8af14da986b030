package domain

import "errors"

var (
	// ErrUserNotFound возвращается, если пользователь не найден в репозитории.
	ErrUserNotFound = errors.New("user not found")
	// ErrCartNotFound возвращается, если корзина не найдена в репозитории.
	ErrCartNotFound = errors.New("cart not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrProductNotFound возвращается, если товар не найден в репозитории.
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound возвращается, если категория не найдена.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrImageNotFound возвращается, если изображение не найдено.
	ErrImageNotFound = errors.New("image not found")
	// ErrCartItemNotFound возвращается, если позиция отсутствует в корзине.
	ErrCartItemNotFound = errors.New("cart item not found")

	// ErrEmptyCart — оформление заказа по пустой корзине запрещено.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCartConflict сигнализирует о конкурентном изменении корзины (optimistic locking).
	ErrCartConflict = errors.New("cart version conflict")
	// ErrOrderExists возвращается при попытке записать заказ с занятым ID.
	ErrOrderExists = errors.New("order already exists")
	// ErrEmailTaken — email уже зарегистрирован за другим пользователем.
	ErrEmailTaken = errors.New("email is already taken")
	// ErrCategoryExists — категория с таким именем уже есть.
	ErrCategoryExists = errors.New("category already exists")
	// ErrInsufficientStock — на складе меньше единиц, чем требует заказ (при включённом учёте).
	ErrInsufficientStock = errors.New("insufficient product stock")
	// ErrStatusTransition — недопустимый переход статуса заказа.
	ErrStatusTransition = errors.New("invalid order status transition")

	// Ошибка отсутствующего идентификатора пользователя.
	ErrUserIDRequired = errors.New("user_id is required")
	// Ошибка отсутствующего email.
	ErrEmailRequired = errors.New("email is required")
	// Ошибка отсутствующего секрета учётной записи.
	ErrCredentialRequired = errors.New("credential is required")
	// Ошибка отсутствующего имени товара/категории.
	ErrNameRequired = errors.New("name is required")
	// Ошибка при некорректном количестве позиции (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("amount_minor must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order amount does not match items sum")
	// Ошибка сохранения изображения без содержимого.
	ErrImageDataRequired = errors.New("image data is required")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")

	// ErrIdempotencyKeyRequired — пустой idempotency-key.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// ErrIdempotencyRequestHashRequired — пустой хеш запроса.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// ErrIdempotencyKeyAlreadyExists — ключ уже занят другим запросом.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyHashMismatch — ключ переиспользован с другим телом запроса.
	ErrIdempotencyHashMismatch = errors.New("idempotency request hash mismatch")
	// ErrIdempotencyKeyNotFound — запись по ключу отсутствует.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
)

// IsNotFound проверяет, относится ли ошибка к семейству "не найдено".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCartNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrImageNotFound) ||
		errors.Is(err, ErrCartItemNotFound)
}

// IsConflict проверяет, относится ли ошибка к семейству конфликтов.
func IsConflict(err error) bool {
	return errors.Is(err, ErrCartConflict) ||
		errors.Is(err, ErrOrderExists) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrCategoryExists)
}
