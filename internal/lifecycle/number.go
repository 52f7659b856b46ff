package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewRequestNumber генерирует человекочитаемый номер заявки вида
// TR-20260828-9F3A1C07. Уникальность несет случайная часть (uuid v4),
// а не таймстемп: две заявки в одну секунду не коллизируют. Дальше номер —
// непрозрачная строка, движок его никогда не парсит и не сортирует по нему.
func NewRequestNumber(now time.Time) string {
	token := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("TR-%s-%s", now.UTC().Format("20060102"), token)
}
