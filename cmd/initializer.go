package main

import (
	"database/sql"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"linkmint/internal/config"
	"linkmint/internal/fraud"
	"linkmint/internal/handlers"
	"linkmint/internal/repositories"
	"linkmint/internal/services"
	"linkmint/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	db       *sql.DB
	rdb      *redis.Client
	geo      *services.MaxMindLocator

	jwtSecret string

	offerHandler    *handlers.OfferHandler
	adoptionHandler *handlers.AdoptionHandler
	clickHandler    *handlers.ClickHandler
}

func initializeApp(db *sql.DB, cfg config.Config, errorLog, infoLog *log.Logger) *application {
	// Repositories
	offerRepo := repositories.OfferRepository{DB: db}
	adoptionRepo := repositories.AdoptionRepository{DB: db}
	clickRepo := repositories.ClickRepository{DB: db}
	bioRepo := repositories.BioRepository{DB: db}
	planRepo := repositories.PlanRepository{DB: db}

	// Optional collaborators
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var geo services.GeoLocator = services.NoopLocator{}
	var maxmind *services.MaxMindLocator
	if cfg.GeoIP.DatabasePath != "" {
		locator, err := services.NewMaxMindLocator(cfg.GeoIP.DatabasePath)
		if err != nil {
			errorLog.Printf("GeoIP database unavailable, lookups disabled: %v", err)
		} else {
			maxmind = locator
			geo = locator
		}
	}

	var storage *utils.S3Storage
	if cfg.S3.AccessKey != "" {
		s3Storage, err := utils.NewS3Storage(cfg.S3.AccessKey, cfg.S3.SecretKey,
			cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Endpoint, cfg.S3.PublicURL)
		if err != nil {
			errorLog.Printf("S3 storage unavailable, image uploads disabled: %v", err)
		} else {
			storage = s3Storage
		}
	}

	// Services
	offerService := &services.OfferService{Offers: &offerRepo, Adoptions: &adoptionRepo}
	adoptionService := &services.AdoptionService{
		Bios:        &bioRepo,
		Plans:       &planRepo,
		Offers:      &offerRepo,
		Adoptions:   &adoptionRepo,
		Clicks:      &clickRepo,
		Impressions: &offerRepo,
		ErrorLog:    errorLog,
	}
	clickService := &services.ClickService{
		Adoptions:      &adoptionRepo,
		Clicks:         &clickRepo,
		AdoptionLedger: &adoptionRepo,
		OfferLedger:    &offerRepo,
		Pipeline:       &fraud.Pipeline{History: &clickRepo},
		Guard:          &fraud.Guard{RDB: rdb, TTL: 24 * time.Hour},
		Geo:            geo,
		MockPrivateIPs: cfg.Fraud.MockPrivateIPs,
		ErrorLog:       errorLog,
	}
	statsService := &services.StatsService{Adoptions: &adoptionRepo, Clicks: &clickRepo}

	// Handlers
	offerHandler := &handlers.OfferHandler{Service: offerService, Storage: storage}
	adoptionHandler := &handlers.AdoptionHandler{Service: adoptionService}
	clickHandler := &handlers.ClickHandler{
		Clicks:      clickService,
		Stats:       statsService,
		FallbackURL: cfg.Fraud.FallbackRedirect,
		ErrorLog:    errorLog,
	}

	return &application{
		errorLog:        errorLog,
		infoLog:         infoLog,
		db:              db,
		rdb:             rdb,
		geo:             maxmind,
		jwtSecret:       cfg.JWT.Secret,
		offerHandler:    offerHandler,
		adoptionHandler: adoptionHandler,
		clickHandler:    clickHandler,
	}
}

func (app *application) close() {
	if app.rdb != nil {
		app.rdb.Close()
	}
	if app.geo != nil {
		app.geo.Close()
	}
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Printf("Failed to open DB: %v", err)
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Printf("Failed to ping DB: %v", err)
		return nil, err
	}
	db.SetMaxIdleConns(35)
	log.Println("Successfully connected to database")
	return db, nil
}
