package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yebtimotheous/gnx/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
)

// Store é a superfície de persistência consumida pelos handlers e pelo
// listener de reconciliação.
type Store interface {
	SaveSession(session models.WalletSession) error
	GetSession(account string) (models.WalletSession, bool, error)
	IsSessionValid(account string, maxAge time.Duration) (bool, error)
	DeleteSession(account string) error
	ListSessions() ([]models.WalletSession, error)

	SaveMintedNFT(nft models.MintedNFT) error
	GetMintedNFTsByAccount(account string) ([]models.MintedNFT, error)
	UpdateMintedNFTOwner(nftokenID, account string) error

	SaveCollection(collection models.Collection) error
	GetCollections() ([]models.Collection, error)
	GetCollectionByTaxon(taxon uint32) (models.Collection, bool, error)
}

// DB representa a conexão com o banco de dados PostgreSQL.
type DB struct {
	*sqlx.DB
}

// NewDB conecta-se ao PostgreSQL e executa as migrações.
func NewDB(dataSourceName string) (*DB, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao banco de dados: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("falha ao pingar o banco de dados: %w", err)
	}
	log.Println("Conexão com PostgreSQL estabelecida com sucesso.")

	if err := runMigrations(db.DB); err != nil {
		return nil, fmt.Errorf("falha ao executar migrações: %w", err)
	}

	return &DB{db}, nil
}

// runMigrations executa as migrações usando sql-migrate.
func runMigrations(db *sql.DB) error {
	migrations := &migrate.FileMigrationSource{
		Dir: "./storage/migrations",
	}

	n, err := migrate.Exec(db, "postgres", migrations, migrate.Up)
	if err != nil {
		return fmt.Errorf("erro ao aplicar migrações: %w", err)
	}
	if n > 0 {
		log.Printf("Aplicadas %d migrações ao banco de dados.", n)
	} else {
		log.Println("Nenhuma migração nova para aplicar.")
	}
	return nil
}

// SaveSession grava ou renova a sessão de uma carteira conectada.
func (d *DB) SaveSession(session models.WalletSession) error {
	query := `INSERT INTO wallet_sessions (account, payload_uuid, connected_at)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (account) DO UPDATE SET payload_uuid = $2, connected_at = $3`
	_, err := d.Exec(query, session.Account, session.PayloadUUID, session.ConnectedAt)
	if err != nil {
		return fmt.Errorf("falha ao salvar sessão: %w", err)
	}
	return nil
}

// GetSession busca a sessão de uma conta; found=false quando não existe.
func (d *DB) GetSession(account string) (models.WalletSession, bool, error) {
	var session models.WalletSession
	err := d.Get(&session, `SELECT account, payload_uuid, connected_at FROM wallet_sessions WHERE account = $1`, account)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WalletSession{}, false, nil
	}
	if err != nil {
		return models.WalletSession{}, false, fmt.Errorf("falha ao buscar sessão: %w", err)
	}
	return session, true, nil
}

// IsSessionValid diz se a conta tem sessão mais recente que maxAge.
func (d *DB) IsSessionValid(account string, maxAge time.Duration) (bool, error) {
	session, found, err := d.GetSession(account)
	if err != nil || !found {
		return false, err
	}
	return time.Since(session.ConnectedAt) <= maxAge, nil
}

// DeleteSession encerra a sessão da conta.
func (d *DB) DeleteSession(account string) error {
	_, err := d.Exec(`DELETE FROM wallet_sessions WHERE account = $1`, account)
	if err != nil {
		return fmt.Errorf("falha ao remover sessão: %w", err)
	}
	return nil
}

// ListSessions devolve todas as sessões registradas.
func (d *DB) ListSessions() ([]models.WalletSession, error) {
	sessions := []models.WalletSession{}
	err := d.Select(&sessions, `SELECT account, payload_uuid, connected_at FROM wallet_sessions ORDER BY connected_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar sessões: %w", err)
	}
	return sessions, nil
}

// SaveMintedNFT registra um NFT cunhado por esta aplicação.
func (d *DB) SaveMintedNFT(nft models.MintedNFT) error {
	query := `INSERT INTO minted_nfts (id, account, nftoken_id, tx_hash, name, description, metadata_uri, image_uri, taxon, network, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          ON CONFLICT (nftoken_id) DO UPDATE SET account = $2, tx_hash = $4`
	_, err := d.Exec(query,
		nft.ID, nft.Account, nft.NFTokenID, nft.TxHash, nft.Name, nft.Description,
		nft.MetadataURI, nft.ImageURI, nft.Taxon, nft.Network, nft.CreatedAt)
	if err != nil {
		return fmt.Errorf("falha ao salvar NFT cunhado: %w", err)
	}
	return nil
}

// GetMintedNFTsByAccount lista os NFTs cunhados pertencentes à conta.
func (d *DB) GetMintedNFTsByAccount(account string) ([]models.MintedNFT, error) {
	nfts := []models.MintedNFT{}
	err := d.Select(&nfts, `SELECT id, account, nftoken_id, tx_hash, name, description, metadata_uri, image_uri, taxon, network, created_at
	                        FROM minted_nfts WHERE account = $1 ORDER BY created_at DESC`, account)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar NFTs cunhados: %w", err)
	}
	return nfts, nil
}

// UpdateMintedNFTOwner atualiza o dono registrado de um token, útil para a
// reconciliação após transferências e vendas.
func (d *DB) UpdateMintedNFTOwner(nftokenID, account string) error {
	_, err := d.Exec(`UPDATE minted_nfts SET account = $1 WHERE nftoken_id = $2`, account, nftokenID)
	if err != nil {
		return fmt.Errorf("falha ao atualizar dono do NFT: %w", err)
	}
	return nil
}

// SaveCollection registra uma coleção e seu taxon.
func (d *DB) SaveCollection(collection models.Collection) error {
	query := `INSERT INTO collections (id, name, description, taxon, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (taxon) DO UPDATE SET name = $2, description = $3`
	_, err := d.Exec(query, collection.ID, collection.Name, collection.Description, collection.Taxon, collection.CreatedAt)
	if err != nil {
		return fmt.Errorf("falha ao salvar coleção: %w", err)
	}
	return nil
}

// GetCollections lista todas as coleções.
func (d *DB) GetCollections() ([]models.Collection, error) {
	collections := []models.Collection{}
	err := d.Select(&collections, `SELECT id, name, description, taxon, created_at FROM collections ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar coleções: %w", err)
	}
	return collections, nil
}

// GetCollectionByTaxon busca a coleção associada a um taxon.
func (d *DB) GetCollectionByTaxon(taxon uint32) (models.Collection, bool, error) {
	var collection models.Collection
	err := d.Get(&collection, `SELECT id, name, description, taxon, created_at FROM collections WHERE taxon = $1`, taxon)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Collection{}, false, nil
	}
	if err != nil {
		return models.Collection{}, false, fmt.Errorf("falha ao buscar coleção: %w", err)
	}
	return collection, true, nil
}
