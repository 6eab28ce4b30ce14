package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/yebtimotheous/gnx/blockchain_listener"
	"github.com/yebtimotheous/gnx/handlers"
	"github.com/yebtimotheous/gnx/services"
	"github.com/yebtimotheous/gnx/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	port := envOr("PORT", "8080")
	network := envOr("XRPL_NETWORK", "TESTNET")
	returnURL := envOr("APP_RETURN_URL", "http://localhost:3000")
	dataSourceName := os.Getenv("DATABASE_URL")
	if dataSourceName == "" {
		log.Fatal("DATABASE_URL não definido")
	}

	db, err := storage.NewDB(dataSourceName)
	if err != nil {
		log.Fatalf("Falha fatal ao conectar ao banco de dados e aplicar migrações: %v", err)
	}
	defer db.Close()

	xrplService, err := services.NewXRPLService(network)
	if err != nil {
		log.Fatalf("Falha ao inicializar serviço XRPL: %v", err)
	}

	xummService, err := services.NewXummService(os.Getenv("XUMM_API_KEY"), os.Getenv("XUMM_API_SECRET"))
	if err != nil {
		log.Fatalf("Falha ao inicializar serviço XUMM: %v", err)
	}

	pinataService, err := services.NewPinataService(os.Getenv("PINATA_JWT"))
	if err != nil {
		log.Fatalf("Falha ao inicializar serviço Pinata: %v", err)
	}
	if err := pinataService.TestAuthentication(context.Background()); err != nil {
		log.Fatalf("Credenciais do Pinata inválidas: %v", err)
	}

	signingFlow := services.NewSigningFlow(xummService, returnURL)
	waiter := services.NewValidationWaiter(xrplService)

	minterService := services.NewMinterService(pinataService, xrplService, signingFlow, waiter)
	offerService := services.NewOfferService(xrplService, signingFlow, waiter)
	holdingsService := services.NewHoldingsService(xrplService, services.NewHTTPJSONFetcher())

	walletHandler := handlers.NewWalletHandler(xummService, db, returnURL)
	nftHandler := handlers.NewNFTHandler(minterService, holdingsService, xrplService, db)
	offerHandler := handlers.NewOfferHandler(offerService, xrplService)
	networkHandler := handlers.NewNetworkHandler(xrplService)
	collectionHandler := handlers.NewCollectionHandler(db)

	// Reconciliação periódica de posse em uma goroutine separada.
	listener := blockchain_listener.NewAccountListener(xrplService, db)
	go listener.StartListening(context.Background())
	log.Println("Listener de reconciliação da ledger iniciado.")

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.URLFormat)

	r.Route("/api", func(r chi.Router) {
		r.Route("/xumm", func(r chi.Router) {
			r.Post("/connect", walletHandler.Connect)
			r.Get("/status", walletHandler.Status)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/{account}/valid", walletHandler.ValidateWallet)
			r.Post("/{account}/disconnect", walletHandler.Disconnect)
		})

		r.Route("/nfts", func(r chi.Router) {
			r.Post("/mint", nftHandler.MintNFT)
			r.Get("/{account}", nftHandler.GetAccountNFTs)
			r.Get("/{account}/minted", nftHandler.GetMintedNFTs)
		})

		r.Route("/offers", func(r chi.Router) {
			r.Post("/sell", offerHandler.CreateSellOffer)
			r.Post("/cancel", offerHandler.CancelOffer)
			r.Post("/transfer", offerHandler.Transfer)
			r.Post("/accept-buy", offerHandler.AcceptBuyOffer)
			r.Get("/{tokenID}", offerHandler.ListOffers)
			r.Get("/{tokenID}/status", offerHandler.GetOfferStatus)
		})

		r.Post("/tx/submit", offerHandler.SubmitTx)

		r.Route("/network", func(r chi.Router) {
			r.Get("/", networkHandler.GetNetwork)
			r.Post("/", networkHandler.SetNetwork)
		})

		r.Route("/collections", func(r chi.Router) {
			r.Post("/", collectionHandler.CreateCollection)
			r.Get("/", collectionHandler.ListCollections)
			r.Get("/taxon/{taxon}", collectionHandler.GetCollectionByTaxon)
		})
	})

	addr := ":" + port
	fmt.Printf("Servidor backend rodando na porta %s...\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
