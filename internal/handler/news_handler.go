package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/exso/CryptoBank/internal/model/requestresponse"
	"github.com/exso/CryptoBank/internal/ports"
	"github.com/exso/CryptoBank/internal/util"
)

const defaultNewsLimit = 10

type NewsHandler struct {
	ports.NewsService
}

func NewNewsHandler(newsService ports.NewsService) *NewsHandler {
	return &NewsHandler{newsService}
}

// GetNews godoc
// @Summary Последние новости
// @Tags News
// @Produce json
// @Param limit query int false "Сколько новостей вернуть" default(10)
// @Success 200 {object} requestresponse.NewsResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/news [get]
func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	limit := defaultNewsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			util.HandleError(w, "некорректный параметр limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	news, err := h.NewsService.Latest(r.Context(), limit)
	if err != nil {
		log.Println(err)
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	util.SendJSON(w, http.StatusOK, requestresponse.NewsResponse{Response: news})
}
