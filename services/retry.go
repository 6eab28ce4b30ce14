package services

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy descreve um laço de retentativas limitado: número máximo de
// tentativas, atraso base e crescimento do atraso entre elas. Multiplier <= 0
// produz crescimento linear (base × tentativa); > 0, geométrico.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
}

// LinearRetry é a política usada pelos fetches de metadata (atraso 1s, 2s, 3s).
func LinearRetry(attempts int, base time.Duration) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: base}
}

// ExponentialRetry é a política usada pelas consultas à ledger (1s, 2s, 4s... até o teto).
func ExponentialRetry(attempts int, base, max time.Duration) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: base, Multiplier: 2, MaxDelay: max}
}

// policyBackoff adapta a RetryPolicy à interface do pacote backoff.
type policyBackoff struct {
	policy  RetryPolicy
	attempt int
}

func (b *policyBackoff) NextBackOff() time.Duration {
	b.attempt++
	var d time.Duration
	if b.policy.Multiplier <= 0 {
		d = time.Duration(b.attempt) * b.policy.BaseDelay
	} else {
		d = b.policy.BaseDelay
		for i := 1; i < b.attempt; i++ {
			d = time.Duration(float64(d) * b.policy.Multiplier)
		}
	}
	if b.policy.MaxDelay > 0 && d > b.policy.MaxDelay {
		d = b.policy.MaxDelay
	}
	return d
}

func (b *policyBackoff) Reset() { b.attempt = 0 }

// Execute executa op até obter sucesso ou esgotar MaxAttempts, respeitando o
// cancelamento do contexto. Retorna o erro da última tentativa.
func (p RetryPolicy) Execute(ctx context.Context, op func() error) error {
	if p.MaxAttempts <= 1 {
		return op()
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(&policyBackoff{policy: p}, uint64(p.MaxAttempts-1)),
		ctx,
	)
	return backoff.Retry(op, b)
}

// sleepCtx aguarda d ou o cancelamento do contexto, o que vier primeiro.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
