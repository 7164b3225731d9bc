package requestresponse

import "github.com/exso/CryptoBank/internal/model"

// NewsResponse : последние новости
type NewsResponse struct {
	Response []model.News `json:"response"`
}
