package models

import "time"

// WalletSession registra a última conexão de uma carteira via XUMM.
// Uma sessão é considerada obsoleta após 30 minutos sem reconexão.
type WalletSession struct {
	Account     string    `json:"account" db:"account"`
	PayloadUUID string    `json:"payload_uuid" db:"payload_uuid"`
	ConnectedAt time.Time `json:"connected_at" db:"connected_at"`
}
