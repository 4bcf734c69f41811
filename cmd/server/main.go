package main

import (
	appointmenthandler "carebook/internal/appointments/handler"
	appointmentrepo "carebook/internal/appointments/repository"
	appointmentservice "carebook/internal/appointments/service"
	appointmentvalidator "carebook/internal/appointments/validator"
	doctorhandler "carebook/internal/doctors/handler"
	doctorrepo "carebook/internal/doctors/repository"
	doctorservice "carebook/internal/doctors/service"
	doctorvalidator "carebook/internal/doctors/validator"
	"carebook/internal/events"
	feedbackhandler "carebook/internal/feedback/handler"
	feedbackrepo "carebook/internal/feedback/repository"
	feedbackservice "carebook/internal/feedback/service"
	feedbackvalidator "carebook/internal/feedback/validator"
	patientrepo "carebook/internal/patients/repository"
	"carebook/pkg/app"
	"carebook/pkg/config"
	"carebook/pkg/contracts"
	kafka_config "carebook/pkg/kafka/config"
)

const ServiceName = "carebook"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	publisher := initPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	cfg.Log.Info("Starting carebook service")
	handlers := initHandlers(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handlers...)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, events will not be published")
		return events.NewNoopPublisher()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	publisher, err := events.NewKafkaPublisher(kafkaCfg, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka publisher", "error", err)
	}

	cfg.Log.Info("Kafka publisher initialized", "brokers", kafkaCfg.Brokers)
	return publisher
}

func initHandlers(cfg *config.Config, publisher events.Publisher) []contracts.Handler {
	doctorRepo := doctorrepo.NewMongoDoctorRepository(cfg)
	patientRepo := patientrepo.NewMongoPatientRepository(cfg)
	appointmentRepo := appointmentrepo.NewMongoAppointmentRepository(cfg)
	lockRepo := appointmentrepo.NewSlotLockRepository(cfg)
	fbRepo := feedbackrepo.NewMongoFeedbackRepository(cfg)

	doctorService := doctorservice.NewDoctorService(
		doctorRepo,
		fbRepo,
		doctorvalidator.NewDoctorValidator(cfg.Log),
		cfg,
	)
	appointmentService := appointmentservice.NewAppointmentService(
		appointmentRepo,
		doctorRepo,
		patientRepo,
		lockRepo,
		appointmentvalidator.NewAppointmentValidator(cfg.Log),
		publisher,
		cfg,
	)
	fbService := feedbackservice.NewFeedbackService(
		fbRepo,
		appointmentRepo,
		feedbackvalidator.NewFeedbackValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		doctorhandler.NewDoctorHandler(doctorService, cfg.Log),
		appointmenthandler.NewAppointmentHandler(appointmentService, cfg.Log),
		feedbackhandler.NewFeedbackHandler(fbService, cfg.Log),
	}
}
