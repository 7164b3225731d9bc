package model

import "time"

// Причины отзыва refresh-токена. Записываются в revoked_reason ровно один раз,
// вместе с revoked_at, и больше никогда не меняются.
const (
	RevokedReasonReplaced      = "replaced"
	RevokedReasonReuseDetected = "reuse-detected"
	RevokedReasonUserRevoked   = "user-revoked"
)

// RefreshToken — одна строка таблицы refresh_tokens.
// Строки образуют цепочку ротаций через ReplacedByID: корень создаётся при логине,
// каждая успешная ротация отзывает текущую строку и добавляет преемника.
type RefreshToken struct {
	ID            int64      `db:"id"`
	UserUUID      string     `db:"user_uuid"`
	Token         string     `db:"token"`
	CreatedAt     time.Time  `db:"created_at"`
	ExpiresAt     time.Time  `db:"expires_at"`
	RevokedAt     *time.Time `db:"revoked_at"`
	RevokedReason *string    `db:"revoked_reason"`
	ReplacedByID  *int64     `db:"replaced_by_id"`
}

// IsExpired — срок жизни токена истёк. Сравнение строгое:
// в момент expires_at токен ещё валиден.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.IsExpired(now) && !t.IsRevoked()
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"accessToken"`

	// Refresh токен (одноразовый, для получения новой пары)
	// example: vcSi0369y1I62wOpxZFpgZ...
	RefreshToken string `json:"refreshToken"`
}
