package services

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
)

// PaymentVerifier проверяет платёж по хешу транзакции и ожидаемой сумме.
// Для ядра это чисто булева способность; реальная проверка в блокчейне —
// забота внешнего коллаборатора.
type PaymentVerifier interface {
	Verify(ctx context.Context, txHash string, expected decimal.Decimal) (bool, error)
}

// MockTronVerifier — заглушка проверки TRX-транзакций.
// TODO: заменить на проверку через TronGrid, когда появится интеграция.
type MockTronVerifier struct{}

func (MockTronVerifier) Verify(_ context.Context, txHash string, expected decimal.Decimal) (bool, error) {
	ok := len(txHash) > 10
	if !ok {
		log.Printf("⚠️ Платёж отклонён: hash=%q, ожидалось %s TRX", txHash, expected)
	}
	return ok, nil
}
