package services

import (
	"errors"
	"fmt"
)

// Erros terminais dos fluxos orquestrados. Erros transitórios (lookup ainda não
// indexado, fetch de metadata) são absorvidos localmente com retentativas e
// nunca chegam ao chamador.
var (
	ErrSigningRejected    = errors.New("transação não foi assinada pelo usuário")
	ErrSigningExpired     = errors.New("pedido de assinatura expirou")
	ErrSigningTimeout     = errors.New("tempo limite de assinatura excedido")
	ErrValidationTimeout  = errors.New("tempo limite de validação da transação excedido")
	ErrTokenIDNotFound    = errors.New("NFTokenID não encontrado na metadata da transação")
	ErrOfferIndexNotFound = errors.New("índice da oferta não encontrado na metadata da transação")
	ErrOfferCancelFailed  = errors.New("falha ao cancelar a oferta existente")
)

// ValidationError indica entrada inválida, detectada antes de qualquer chamada de rede.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entrada inválida (%s): %s", e.Field, e.Reason)
}

// PinningError indica falha ao fixar conteúdo no serviço de pinning.
type PinningError struct {
	Op  string
	Err error
}

func (e *PinningError) Error() string {
	return fmt.Sprintf("falha de pinning em %s: %v", e.Op, e.Err)
}

func (e *PinningError) Unwrap() error { return e.Err }

// LedgerError é um erro retornado pelo servidor XRPL para um comando.
type LedgerError struct {
	Code    string
	Message string
}

func (e *LedgerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("erro da ledger %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("erro da ledger %s", e.Code)
}

// IsNotFound informa se o erro é da classe "não encontrado" — transação ou
// objeto ainda não indexado, tratado como retentável pelos pollers.
func IsNotFound(err error) bool {
	var le *LedgerError
	if errors.As(err, &le) {
		switch le.Code {
		case "txnNotFound", "objectNotFound", "entryNotFound", "actNotFound":
			return true
		}
	}
	return false
}
