// Package webhook receives review-platform deliveries and turns qualifying
// label events into benchmark trigger events on the event bus.
package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/benchbot/pkg/eventbus"
	"github.com/dukex/benchbot/pkg/events"
	"github.com/dukex/benchbot/pkg/github"
	"github.com/dukex/benchbot/pkg/trigger"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/moogar0880/problems"
)

const (
	signatureHeader = "X-Hub-Signature-256"
	eventHeader     = "X-GitHub-Event"
	deliveryHeader  = "X-GitHub-Delivery"
)

// Server is the dispatcher's HTTP front. It verifies delivery signatures,
// pre-filters on the marker label, and publishes trigger events; the pipeline
// itself runs in the workers.
type Server struct {
	secret   []byte
	gate     *trigger.Gate
	eventBus eventbus.EventBus
	logger   *slog.Logger
}

func NewServer(secret string, gate *trigger.Gate, eventBus eventbus.EventBus, logger *slog.Logger) *Server {
	return &Server{
		secret:   []byte(secret),
		gate:     gate,
		eventBus: eventBus,
		logger:   logger.With("module", "webhook_server"),
	}
}

func (s *Server) App() *fiber.App {
	app := fiber.New()
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("benchbot dispatcher")
	})

	app.Post("/webhook", s.handleDelivery)

	return app
}

func (s *Server) Start(port int) error {
	return s.App().Listen(":" + strconv.Itoa(port))
}

func (s *Server) handleDelivery(c fiber.Ctx) error {
	body := c.Body()

	if len(s.secret) > 0 && !s.verifySignature(body, c.Get(signatureHeader)) {
		return unauthorized(c, "delivery signature verification failed")
	}

	if event := c.Get(eventHeader); event != "" && event != "pull_request" {
		// Other event kinds are delivered when the hook subscription is
		// broader than needed; acknowledge without acting.
		return c.SendStatus(http.StatusNoContent)
	}

	labelEvent, err := github.ParseLabelEvent(bytes.NewReader(body))
	if err != nil {
		return badRequest(c, "malformed pull_request payload")
	}

	triggerEvent, err := labelEvent.Trigger()
	if err != nil {
		return badRequest(c, err.Error())
	}

	triggerEvent.DeliveryID = c.Get(deliveryHeader)

	if !s.gate.Proceed(triggerEvent) {
		s.logger.Debug("Delivery gated out",
			"action", triggerEvent.Action,
			"label", triggerEvent.Label,
			"delivery_id", triggerEvent.DeliveryID)

		return c.SendStatus(http.StatusNoContent)
	}

	requested := events.BenchmarkRequested{
		BaseEvent: events.BaseEvent{
			ID:        s.eventBus.GenerateID(),
			Type:      events.BenchmarkRequestedEvent,
			Timestamp: time.Now().UTC(),
		},
		Trigger: triggerEvent,
	}

	if err := s.eventBus.Publish(c.Context(), events.TriggerTopic, triggerEvent.Key(), requested); err != nil {
		s.logger.Error("Failed to publish trigger event", "key", triggerEvent.Key(), "error", err)

		return internalError(c, err)
	}

	s.logger.Info("Benchmark run requested",
		"key", triggerEvent.Key(),
		"sender", triggerEvent.Sender,
		"delivery_id", triggerEvent.DeliveryID)

	return c.SendStatus(http.StatusAccepted)
}

func (s *Server) verifySignature(body []byte, header string) bool {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(header))
}

func unauthorized(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(401).
		WithInstance(c.Path()).
		WithType("signature_mismatch").
		WithDetail(detail)

	return c.Status(fiber.StatusUnauthorized).JSON(problem)
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}
