package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/sicfor/sicfor/cmd"
	"github.com/sicfor/sicfor/internal/api"
	"github.com/sicfor/sicfor/internal/config"
	"github.com/sicfor/sicfor/internal/models"
	"github.com/sicfor/sicfor/internal/monitor"
	"github.com/sicfor/sicfor/internal/render"
	"github.com/sicfor/sicfor/internal/repository"
	"github.com/sicfor/sicfor/internal/services"
	"github.com/sicfor/sicfor/internal/store"
	"github.com/sicfor/sicfor/internal/workers"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RunServerCmd représente la commande 'run-server' de Cobra.
// C'est le point d'entrée pour lancer le serveur de l'application.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Lance le serveur API du gestionnaire de certificats et les processus de fond.",
	Long: `Cette commande initialise la base de données, configure les APIs,
démarre les workers asynchrones pour les vérifications et le moniteur du slot
de stockage, puis lance le serveur HTTP.`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		// Charger la configuration
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Échec du chargement de la configuration : %v", err)
		}

		// Initialiser la base de données
		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{})
		if err != nil {
			log.Fatalf("Échec de la connexion à la base de données : %v", err)
		}

		// Migration automatique des modèles
		if err := db.AutoMigrate(&repository.Slot{}, &models.Verification{}); err != nil {
			log.Fatalf("Échec de la migration de la base de données : %v", err)
		}

		// Initialiser les repositories
		slotRepo := repository.NewSlotRepository(db)
		verificationRepo := repository.NewVerificationRepository(db)

		log.Println("Repositories initialisés.")

		// Le store est construit explicitement et injecté partout où il faut:
		// pas d'instance globale.
		certStore := store.NewCertificateStore(slotRepo, cfg.Storage.SlotKey)
		certService := services.NewCertificateService(certStore, verificationRepo)

		renderer, err := render.NewRenderer()
		if err != nil {
			log.Fatalf("Échec de l'initialisation du renderer : %v", err)
		}

		log.Println("Services métiers initialisés.")

		// Initialiser le channel des événements de vérification et lancer les workers.
		verificationEventsChan := make(chan models.VerificationEvent, cfg.Analytics.BufferSize)
		api.VerificationEventsChannel = verificationEventsChan // Set the global channel
		workers.StartVerificationWorkers(cfg.Analytics.WorkerCount, verificationEventsChan, verificationRepo)

		log.Printf("Channel d'événements de vérification initialisé avec un buffer de %d. %d worker(s) démarré(s).",
			cfg.Analytics.BufferSize, cfg.Analytics.WorkerCount)

		// Initialiser et lancer le moniteur du slot de stockage.
		monitorInterval := time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute
		slotMonitor := monitor.NewSlotMonitor(slotRepo, cfg.Storage.SlotKey, monitorInterval)
		go slotMonitor.Start()
		log.Printf("Moniteur du slot démarré avec un intervalle de %v.", monitorInterval)

		// Configurer le routeur Gin et les handlers API.
		router := gin.Default()
		api.SetupRoutes(router, certService, renderer, cfg.Analytics.BufferSize)

		log.Println("Routes API configurées.")

		// Créer le serveur HTTP Gin
		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    serverAddr,
			Handler: router,
		}

		// Démarrer le serveur Gin dans une goroutine anonyme pour ne pas bloquer.
		go func() {
			log.Printf("Démarrage du serveur sur %s", serverAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Échec du démarrage du serveur : %v", err)
			}
		}()

		// Gérer l'arrêt propre du serveur (graceful shutdown).
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM) // Attendre Ctrl+C ou signal d'arrêt

		// Bloquer jusqu'à ce qu'un signal d'arrêt soit reçu.
		<-quit
		log.Println("Signal d'arrêt reçu. Arrêt du serveur...")

		// Arrêt propre du serveur HTTP avec un timeout.
		log.Println("Arrêt en cours... Donnez un peu de temps aux workers pour finir.")
		time.Sleep(5 * time.Second)

		log.Println("Serveur arrêté proprement.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
