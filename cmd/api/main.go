package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"freight-dispatch-api-server/config"
	"freight-dispatch-api-server/internal/api/routes"
	"freight-dispatch-api-server/internal/database"
	"freight-dispatch-api-server/internal/events"
	"freight-dispatch-api-server/internal/gps"
	"freight-dispatch-api-server/internal/repository"
	"freight-dispatch-api-server/internal/s3"
	"freight-dispatch-api-server/internal/socket"
	"freight-dispatch-api-server/internal/tripstate"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment")
	}

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.WithError(err).Fatal("Could not load config")
	}

	db, err := database.Connect(cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to MongoDB")
	}
	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		log.WithError(err).Fatal("Could not create indexes")
	}
	if err := database.SeedCoordinator(db); err != nil {
		log.WithError(err).Fatal("Could not seed coordinator account")
	}

	dispatchRepo := repository.NewDispatchRepo(db)
	tripRepo := repository.NewTripRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	gpsRepo := repository.NewGPSRepo(db)

	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		log.WithError(err).Fatal("Could not initialize S3 uploader")
	}

	source, err := gps.NewMQTTSource(cfg.MQTT.BrokerURL, cfg.MQTT.ClientID, cfg.MQTT.Topic, log)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to MQTT broker")
	}
	defer source.Close()

	interval := gps.DefaultInterval
	if cfg.GPS.SampleInterval != "" {
		parsed, err := time.ParseDuration(cfg.GPS.SampleInterval)
		if err != nil {
			log.WithError(err).Fatal("Invalid GPS sample interval")
		}
		interval = parsed
	}
	wsHub := socket.NewHub(log)

	tracker := gps.NewTracker(source, socket.NewSampleRelay(gpsRepo, wsHub), interval, log)
	defer tracker.Close()

	kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.BrokerURL, cfg.Kafka.Topic, log)
	defer kafkaPublisher.Close()
	publisher := events.NewFanout(kafkaPublisher, socket.NewBroadcaster(wsHub))

	service := tripstate.NewService(tripRepo, auditRepo, tracker, publisher, log)

	router := routes.SetupRouter(cfg, db, service, dispatchRepo, tripRepo, gpsRepo, s3Uploader, wsHub, log)

	log.WithField("port", cfg.Server.Port).Info("Starting API server")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.WithError(err).Fatal("Failed to run server")
	}
}
