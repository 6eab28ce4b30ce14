package models

// NFTOffer é uma oferta retornada por nft_sell_offers / nft_buy_offers.
// Amount vem em drops (string) para ofertas em XRP.
type NFTOffer struct {
	Amount        string  `json:"amount"`
	Flags         uint32  `json:"flags"`
	NFTOfferIndex string  `json:"nft_offer_index"`
	Owner         string  `json:"owner"`
	Destination   string  `json:"destination,omitempty"`
	Expiration    *uint32 `json:"expiration,omitempty"`
}

// OfferStatus é o estado de listagem calculado para um token. A ausência de
// ofertas não é um erro: IsOnSale=false é o caso comum.
type OfferStatus struct {
	IsOnSale   bool   `json:"is_on_sale"`
	Price      string `json:"price,omitempty"`
	OfferIndex string `json:"offer_index,omitempty"`
	Seller     string `json:"seller,omitempty"`
}
