package domain

import "time"

// Image — изображение товара. Содержимое хранится в том же хранилище,
// что и метаданные; внешний object storage вне зоны ответственности сервиса.
type Image struct {
	ID          string
	ProductID   string
	FileName    string
	ContentType string
	Data        []byte
	DownloadURL string
	CreatedAt   time.Time
}
