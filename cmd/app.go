package cmd

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/advance"
	advancePostgres "github.com/frahmantamala/salary-advance/internal/advance/postgres"
	"github.com/frahmantamala/salary-advance/internal/core/events"
	"github.com/frahmantamala/salary-advance/internal/core/fees"
	employeePostgres "github.com/frahmantamala/salary-advance/internal/employee/postgres"
	"github.com/frahmantamala/salary-advance/internal/messaging"
	"github.com/frahmantamala/salary-advance/internal/mobilemoney"
	"github.com/frahmantamala/salary-advance/internal/notification"
	notificationMongo "github.com/frahmantamala/salary-advance/internal/notification/mongo"
	"github.com/frahmantamala/salary-advance/internal/payment"
	paymentPostgres "github.com/frahmantamala/salary-advance/internal/payment/postgres"
	"github.com/frahmantamala/salary-advance/internal/reimbursement"
	reimbursementPostgres "github.com/frahmantamala/salary-advance/internal/reimbursement/postgres"
	"github.com/frahmantamala/salary-advance/internal/user"
	userPostgres "github.com/frahmantamala/salary-advance/internal/user/postgres"
	"github.com/frahmantamala/salary-advance/pkg/rabbitmq"
)

// App holds the wired services shared by the server, worker and event
// commands.
type App struct {
	Config   *internal.Config
	Logger   *slog.Logger
	DB       *sqlx.DB
	Gorm     *gorm.DB
	EventBus *events.EventBus

	Mongo    *mongo.Client
	Inbox    notification.Inbox
	Producer *rabbitmq.EventProducer

	Dispatcher     *notification.Dispatcher
	Users          *user.Service
	Advances       *advance.Service
	Transactions   *paymentPostgres.TransactionRepository
	Initiator      *payment.Initiator
	Reconciler     *payment.Reconciler
	Reimbursements *reimbursement.Service
}

func newApp(ctx context.Context, cfg *internal.Config, lg *slog.Logger) (*App, error) {
	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	schedule, err := fees.ParseSchedule(cfg.Fees.ServiceFeeRate)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Logger:   lg,
		DB:       db,
		Gorm:     gormDB,
		EventBus: events.NewEventBus(lg),
	}

	app.connectInbox(ctx)
	app.connectBroker()

	advanceRepo := advancePostgres.NewAdvanceRepository(gormDB)
	employeeRepo := employeePostgres.NewEmployeeRepository(gormDB)
	app.Transactions = paymentPostgres.NewTransactionRepository(gormDB)
	app.Users = user.NewService(userPostgres.NewUserRepository(gormDB), cfg.Notification.AdminRoleList(), lg)

	app.Dispatcher = notification.NewDispatcher(notification.Deps{
		Advances:     advanceRepo,
		Transactions: app.Transactions,
		Employees:    employeeRepo,
		Staff:        app.Users,
		SMS: messaging.NewSMSClient(messaging.SMSConfig{
			BaseURL:    cfg.SMS.BaseURL,
			ServiceID:  cfg.SMS.ServiceID,
			Secret:     cfg.SMS.Secret,
			SenderName: cfg.SMS.SenderName,
			Timeout:    cfg.SMS.Timeout,
		}, lg),
		Email: messaging.NewEmailClient(messaging.EmailConfig{
			BaseURL: cfg.Email.BaseURL,
			APIKey:  cfg.Email.APIKey,
			From:    cfg.Email.From,
			Timeout: cfg.Email.Timeout,
		}, lg),
		Inbox: app.Inbox,
		Fees:  schedule,
	}, notification.Config{
		CountryCode:   cfg.Notification.CountryCode,
		CurrencyLabel: cfg.Notification.CurrencyLabel,
		PlatformName:  cfg.Notification.PlatformName,
	}, lg)

	provider := mobilemoney.NewClient(mobilemoney.Config{
		BaseURL:     cfg.MobileMoney.BaseURL,
		APIKey:      cfg.MobileMoney.APIKey,
		SiteID:      cfg.MobileMoney.SiteID,
		AccountType: cfg.MobileMoney.AccountType,
		Currency:    cfg.MobileMoney.Currency,
		Timeout:     cfg.MobileMoney.Timeout,
	}, lg)

	app.Advances = advance.NewService(advanceRepo, employeeRepo, app.Dispatcher, app.EventBus, cfg.Notification.CountryCode, lg)
	app.Initiator = payment.NewInitiator(app.Transactions, advanceRepo, provider, schedule, cfg.Notification.CountryCode, lg)
	app.Reconciler = payment.NewReconciler(app.Transactions, provider, app.Dispatcher, app.EventBus, payment.ReconcilerConfig{
		MaxAttempts: cfg.Reconciler.MaxAttempts,
		Interval:    cfg.Reconciler.Interval,
	}, lg)
	app.Reimbursements = reimbursement.NewService(
		reimbursementPostgres.NewReimbursementRepository(gormDB),
		reimbursementPostgres.NewSummaryRepository(db),
		app.Transactions,
		advanceRepo,
		schedule,
		cfg.Reimbursement.DueAfterDays,
		lg,
	)

	// payment.succeeded subscribers run in this order under PublishSync
	reimbursement.NewEventHandler(app.Reimbursements, lg).RegisterEventHandlers(app.EventBus)
	advance.NewEventHandler(app.Advances, lg).RegisterEventHandlers(app.EventBus)
	if app.Producer != nil {
		events.NewForwarder(app.Producer, lg).Register(app.EventBus)
	}

	return app, nil
}

// connectInbox is best effort: without a document store the dispatcher
// skips the admin inbox.
func (a *App) connectInbox(ctx context.Context) {
	store := a.Config.DocumentStore
	if store.URI == "" {
		a.Logger.Info("document store not configured, admin inbox disabled")
		return
	}

	client, err := notificationMongo.Connect(ctx, store.URI, store.Timeout)
	if err != nil {
		a.Logger.Error("admin inbox unavailable", "error", err)
		return
	}

	inbox := notificationMongo.NewInboxStore(client.Database(store.Database), store.Collection, store.Timeout)
	if err := inbox.EnsureIndexes(ctx); err != nil {
		a.Logger.Warn("failed to ensure inbox indexes", "error", err)
	}
	a.Mongo = client
	a.Inbox = inbox
}

func (a *App) connectBroker() {
	broker := a.Config.Broker
	if broker.URL == "" {
		a.Logger.Info("broker not configured, events stay in process")
		return
	}

	producer, err := rabbitmq.NewEventProducer(broker.URL, broker.Exchange, a.Logger)
	if err != nil {
		a.Logger.Error("event forwarding disabled", "error", err)
		return
	}
	a.Producer = producer
}

func (a *App) mongoPing(ctx context.Context) error {
	return a.Mongo.Ping(ctx, nil)
}

func (a *App) Close(ctx context.Context) {
	if a.Producer != nil {
		a.Producer.Close()
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			a.Logger.Error("mongo disconnect error", "error", err)
		}
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("database close error", "error", err)
	}
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	db, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
