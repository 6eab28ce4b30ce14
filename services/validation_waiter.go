package services

import (
	"context"
	"log"
	"time"

	"github.com/yebtimotheous/gnx/models"
)

// Validator aguarda a finalização de uma transação na ledger.
type Validator interface {
	AwaitValidation(ctx context.Context, txHash string) (*models.TxResult, error)
}

// ValidationWaiter consulta a ledger em intervalo fixo até observar a
// transação validada. Submissão não implica sucesso: a validação precisa ser
// observada antes de qualquer passo seguinte.
type ValidationWaiter struct {
	Ledger      LedgerGateway
	Interval    time.Duration
	MaxAttempts int
}

// NewValidationWaiter cria o waiter com os limites padrão (10 tentativas, 1s).
func NewValidationWaiter(ledger LedgerGateway) *ValidationWaiter {
	return &ValidationWaiter{
		Ledger:      ledger,
		Interval:    time.Second,
		MaxAttempts: 10,
	}
}

// AwaitValidation devolve a transação validada ou ErrValidationTimeout.
// Erros de consulta (transação ainda não indexada) são retentáveis; só o
// esgotamento das tentativas é fatal.
func (w *ValidationWaiter) AwaitValidation(ctx context.Context, txHash string) (*models.TxResult, error) {
	for attempt := 1; attempt <= w.MaxAttempts; attempt++ {
		tx, err := w.Ledger.Tx(ctx, txHash)
		if err != nil {
			log.Printf("Consulta da transação %s falhou (tentativa %d/%d): %v", txHash, attempt, w.MaxAttempts, err)
		} else if tx.Validated {
			return tx, nil
		}

		if attempt < w.MaxAttempts {
			if err := sleepCtx(ctx, w.Interval); err != nil {
				return nil, err
			}
		}
	}
	return nil, ErrValidationTimeout
}
