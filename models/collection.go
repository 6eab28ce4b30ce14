package models

import "time"

// Collection agrupa NFTs por taxon, a classificação imutável escolhida na cunhagem.
type Collection struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Taxon       uint32    `json:"taxon" db:"taxon"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// MintedNFT é o registro interno de um NFT cunhado por este backend.
// A fonte de verdade é a ledger; o listener mantém a sincronia.
type MintedNFT struct {
	ID          string    `json:"id" db:"id"`
	Account     string    `json:"account" db:"account"`
	NFTokenID   string    `json:"nftoken_id" db:"nftoken_id"`
	TxHash      string    `json:"tx_hash" db:"tx_hash"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	MetadataURI string    `json:"metadata_uri" db:"metadata_uri"`
	ImageURI    string    `json:"image_uri" db:"image_uri"`
	Taxon       uint32    `json:"taxon" db:"taxon"`
	Network     string    `json:"network" db:"network"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
