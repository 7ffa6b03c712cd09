package cmd

import (
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/kafka"
	"fulfillment/internal/adapters/out/policy"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/snapshotrepo"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/role"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"
	"fulfillment/internal/notifications"
)

const defaultPolicyTTL = time.Minute

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	snapshots  ports.OrderSnapshots
	policy     ports.NotificationPolicy
	dispatcher *notifications.Dispatcher
	locks      *commands.OrderLocks
	admins     role.AdminList
	config     Config
	logger     *slog.Logger
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	if logger == nil {
		logger = slog.Default()
	}

	admins := parseAdminList(config.AdminIDs, logger)

	notificationPolicy := policy.NewHTTPPolicy(config.PolicyURL, parsePolicyTTL(config, logger), logger)

	notifier := kafka.NewNotifier(
		kafka.NewWriter(config.KafkaHost, config.KafkaNotificationTopic), logger)

	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		snapshots:  snapshotrepo.NewGormOrderSnapshots(gormDB),
		policy:     notificationPolicy,
		dispatcher: notifications.NewDispatcher(notifier, notificationPolicy, admins, logger),
		locks:      commands.NewOrderLocks(),
		admins:     admins,
		config:     config,
		logger:     logger,
	}
}

func (c *CompositionRoot) CreateRecordReviewCommandHandler() *commands.RecordReviewCommandHandler {
	handler := commands.NewRecordReviewCommandHandler(
		c.workflowUoWFactory(), c.snapshots, c.admins, c.dispatcher, c.locks)
	return &handler
}

func (c *CompositionRoot) CreateRecordConfirmationCommandHandler() *commands.RecordConfirmationCommandHandler {
	handler := commands.NewRecordConfirmationCommandHandler(
		c.workflowUoWFactory(), c.snapshots, c.admins, c.dispatcher, c.locks)
	return &handler
}

func (c *CompositionRoot) CreateRecordShippingCommandHandler() *commands.RecordShippingCommandHandler {
	handler := commands.NewRecordShippingCommandHandler(
		c.workflowUoWFactory(), c.snapshots, c.admins, c.dispatcher, c.locks)
	return &handler
}

func (c *CompositionRoot) CreateRecordDeliveryCommandHandler() *commands.RecordDeliveryCommandHandler {
	handler := commands.NewRecordDeliveryCommandHandler(
		c.workflowUoWFactory(), c.snapshots, c.admins, c.dispatcher, c.locks)
	return &handler
}

func (c *CompositionRoot) CreateSetExceptionStageCommandHandler() *commands.SetExceptionStageCommandHandler {
	handler := commands.NewSetExceptionStageCommandHandler(
		c.workflowUoWFactory(), c.snapshots, c.admins, c.dispatcher, c.locks)
	return &handler
}

func (c *CompositionRoot) CreateGetOrderProgressQueryHandler() queries.GetOrderProgressQueryHandler {
	return queries.NewGetOrderProgressQueryHandler(c.gormDB, c.snapshots, c.admins)
}

func (c *CompositionRoot) CreateGetStageDecisionQueryHandler() queries.GetStageDecisionQueryHandler {
	return queries.NewGetStageDecisionQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreateRecordReviewCommandHandler(),
		c.CreateRecordConfirmationCommandHandler(),
		c.CreateRecordShippingCommandHandler(),
		c.CreateRecordDeliveryCommandHandler(),
		c.CreateSetExceptionStageCommandHandler(),
		c.CreateGetOrderProgressQueryHandler(),
		c.CreateGetStageDecisionQueryHandler(),
		c.snapshots,
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	schedule := c.config.PolicyRefreshSchedule
	if schedule == "" {
		schedule = "@every 1m"
	}
	return jobs.NewJobManager(c.policy, schedule, c.logger)
}

func (c *CompositionRoot) workflowUoWFactory() commands.WorkflowUoWFactory {
	return FuncWorkflowUoWFactory(func() commands.WorkflowUoW {
		return c.uowFactory.Create()
	})
}

type FuncWorkflowUoWFactory func() commands.WorkflowUoW

func (f FuncWorkflowUoWFactory) Create() commands.WorkflowUoW {
	return f()
}

func parseAdminList(raw string, logger *slog.Logger) role.AdminList {
	admins := make(role.AdminList, 0)
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		actorID, err := kernel.NewActorID(value)
		if err != nil {
			logger.Warn("skipping invalid admin id", "value", value, "error", err)
			continue
		}
		admins = append(admins, actorID)
	}
	return admins
}

func parsePolicyTTL(config Config, logger *slog.Logger) time.Duration {
	if config.PolicyCacheTTL == "" {
		return defaultPolicyTTL
	}

	ttl, err := time.ParseDuration(config.PolicyCacheTTL)
	if err != nil {
		logger.Warn("invalid policy cache ttl, using default",
			"value", config.PolicyCacheTTL, "default", defaultPolicyTTL)
		return defaultPolicyTTL
	}
	return ttl
}
