package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/salary-advance/internal/core/events"
	"github.com/frahmantamala/salary-advance/internal/notification"
	"github.com/frahmantamala/salary-advance/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Replay domain events, for example to re-send a notification that failed`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [kind] [entity-id]",
	Short: "Replay the notification for an advance or transaction",
	Long: `Publish a notification event on an isolated bus so the dispatcher sends it again.
Kinds: request_received, approved, rejected (advance id) and payment_success,
payment_failure (transaction id).`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := publishNotificationEvent(args[0], args[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var eventReason string

func publishNotificationEvent(rawKind, entityID string) error {
	kind, ok := notification.ParseKind(rawKind)
	if !ok {
		return fmt.Errorf("unknown notification kind %q", rawKind)
	}

	cfg, err := loadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	app, err := newApp(ctx, cfg, lg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer app.Close(context.Background())

	// a dedicated bus: replaying must not re-run reimbursement creation or
	// broker forwarding
	bus := events.NewEventBus(lg)
	notification.NewEventHandler(app.Dispatcher, lg).RegisterEventHandlers(bus)

	event, err := replayEvent(ctx, app, kind, entityID)
	if err != nil {
		return err
	}

	lg.Info("publishing notification event", "kind", kind, "entity_id", entityID, "event_id", event.EventID())
	if err := bus.PublishSync(ctx, event); err != nil {
		return fmt.Errorf("replay %s for %s: %w", kind, entityID, err)
	}

	lg.Info("notification event replayed")
	return nil
}

func replayEvent(ctx context.Context, app *App, kind notification.Kind, entityID string) (events.Event, error) {
	eventType := notification.EventTypeFor(kind)

	if kind.TargetsTransaction() {
		tx, err := app.Transactions.GetByID(ctx, entityID)
		if err != nil {
			return nil, err
		}
		reason := eventReason
		if reason == "" && tx.ProviderMessage != nil {
			reason = *tx.ProviderMessage
		}
		if kind == notification.KindPaymentSuccess {
			return events.NewPaymentSucceededEvent(tx.ID, tx.PayID, tx.AdvanceID, tx.EmployeeID, tx.PartnerID, tx.Amount, tx.Method), nil
		}
		return events.NewPaymentFailedEvent(tx.ID, tx.PayID, tx.AdvanceID, tx.EmployeeID, tx.PartnerID, tx.Amount, tx.Method, reason), nil
	}

	adv, err := app.Advances.Get(ctx, entityID)
	if err != nil {
		return nil, err
	}
	reason := eventReason
	if reason == "" && adv.RejectionComment != nil {
		reason = *adv.RejectionComment
	}
	return events.NewAdvanceEvent(eventType, adv.ID, adv.EmployeeID, adv.PartnerID, adv.Amount, reason), nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventReason, "reason", "", "Rejection or failure reason to include (defaults to the stored one)")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
