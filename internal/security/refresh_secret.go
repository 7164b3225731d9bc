package security

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/exso/CryptoBank/internal/util"
)

// refreshSecretBytes — размер непрозрачного секрета до кодирования.
// 64 случайных байта, перебор и коллизии исключены практически полностью
const refreshSecretBytes = 64

// GenerateRefreshSecret возвращает новый непрозрачный секрет refresh-токена.
// Секрет отдаётся клиенту и хранится в БД как есть — это одноразовый
// высокоэнтропийный bearer-идентификатор, а не пароль
func GenerateRefreshSecret() (string, error) {
	buf := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", util.LogError("ошибка генерации секрета", err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}
