package notify

import (
	"fmt"
	"strings"
)

// FormatPrice renders kopeks as a ruble amount like "299 ₽" or "123.45 ₽".
func FormatPrice(kopeks int64) string {
	if kopeks%100 == 0 {
		return fmt.Sprintf("%d ₽", kopeks/100)
	}
	return fmt.Sprintf("%d.%02d ₽", kopeks/100, kopeks%100)
}

func renewalSuccessMessage(amountKopeks int64) string {
	var b strings.Builder
	b.WriteString("✅ <b>Подписка продлена автоматически</b>\n\n")
	b.WriteString(fmt.Sprintf("Списано: %s\n", FormatPrice(amountKopeks)))
	b.WriteString("Оплата прошла с сохранённой карты.")
	return b.String()
}

func renewalFailureMessage(amountKopeks int64) string {
	var b strings.Builder
	b.WriteString("⚠️ <b>Не удалось продлить подписку</b>\n\n")
	b.WriteString(fmt.Sprintf("Сумма списания: %s\n", FormatPrice(amountKopeks)))
	b.WriteString("Проверьте баланс карты или продлите подписку вручную.")
	return b.String()
}

func noPaymentMethodMessage() string {
	var b strings.Builder
	b.WriteString("⚠️ <b>Подписка скоро закончится</b>\n\n")
	b.WriteString("Автопродление включено, но сохранённая карта не найдена.\n")
	b.WriteString("Оплатите подписку вручную, чтобы сохранить карту для автосписаний.")
	return b.String()
}
