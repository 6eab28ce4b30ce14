package blockchain_listener

import (
	"context"
	"log"
	"time"

	"github.com/yebtimotheous/gnx/services"
	"github.com/yebtimotheous/gnx/storage"
)

// AccountListener reconcilia periodicamente o registro interno de NFTs com o
// estado da ledger: para cada carteira com sessão ativa, lista os tokens que
// ela realmente possui e corrige o dono registrado. Vendas e transferências
// aceitas fora desta aplicação aparecem aqui.
type AccountListener struct {
	Ledger   services.LedgerGateway
	Store    storage.Store
	Interval time.Duration

	// Limite de tokens por consulta de conta.
	PageLimit int
}

// NewAccountListener cria o listener com o intervalo padrão de 30s.
func NewAccountListener(ledger services.LedgerGateway, store storage.Store) *AccountListener {
	return &AccountListener{
		Ledger:    ledger,
		Store:     store,
		Interval:  30 * time.Second,
		PageLimit: 400,
	}
}

// StartListening roda o ciclo de reconciliação até o contexto ser cancelado.
func (l *AccountListener) StartListening(ctx context.Context) {
	log.Println("Iniciando listener de reconciliação da ledger...")
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Listener de reconciliação encerrado.")
			return
		case <-ticker.C:
			if err := l.syncOnce(ctx); err != nil {
				log.Printf("Ciclo de reconciliação falhou: %v", err)
			}
		}
	}
}

// syncOnce percorre as sessões conhecidas e atualiza o dono registrado de
// cada token observado na ledger.
func (l *AccountListener) syncOnce(ctx context.Context) error {
	sessions, err := l.Store.ListSessions()
	if err != nil {
		return err
	}

	for _, session := range sessions {
		nfts, err := l.Ledger.AccountNFTs(ctx, session.Account, l.PageLimit)
		if err != nil {
			log.Printf("Falha ao listar NFTs da conta %s na reconciliação: %v", session.Account, err)
			continue
		}
		for _, nft := range nfts {
			if err := l.Store.UpdateMintedNFTOwner(nft.NFTokenID, session.Account); err != nil {
				log.Printf("Falha ao atualizar dono do NFT %s: %v", nft.NFTokenID, err)
			}
		}
	}
	return nil
}
