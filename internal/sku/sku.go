package sku

import (
	"fmt"
	"strconv"
	"strings"
)

// MalformedSkuError - артикул не соответствует схеме {код категории}-{номер}.
// В МойСклад встречаются артикулы, набитые руками до внедрения схемы, поэтому
// ошибка декодирования штатная: строка исключается из сравнения и уходит
// на ручной разбор, а не роняет синхронизацию.
type MalformedSkuError struct {
	Article string
}

func (e *MalformedSkuError) Error() string {
	return fmt.Sprintf("артикул не соответствует схеме {код}-{номер}: %q", e.Article)
}

// Encode собирает артикул из кода категории и номера.
func Encode(categoryCode string, sequence int) string {
	return fmt.Sprintf("%s-%d", categoryCode, sequence)
}

// Decode разбирает артикул обратно на код категории и номер.
// Для любых значений, созданных Encode, выполняется
// Decode(Encode(code, seq)) == (code, seq).
func Decode(article string) (string, int, error) {

	idx := strings.LastIndex(article, "-")
	if idx <= 0 || idx == len(article)-1 {
		return "", 0, &MalformedSkuError{Article: article}
	}

	code := article[:idx]
	if !validCode(code) {
		return "", 0, &MalformedSkuError{Article: article}
	}

	seqPart := article[idx+1:]
	for _, r := range seqPart {
		if r < '0' || r > '9' {
			return "", 0, &MalformedSkuError{Article: article}
		}
	}

	sequence, err := strconv.Atoi(seqPart)
	if err != nil {
		return "", 0, &MalformedSkuError{Article: article}
	}

	return code, sequence, nil
}

// validCode - код категории: буквы/цифры, внутри допускается дефис
// (например временный код TMP-префикс).
func validCode(code string) bool {
	if strings.HasPrefix(code, "-") || strings.HasSuffix(code, "-") {
		return false
	}
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}
