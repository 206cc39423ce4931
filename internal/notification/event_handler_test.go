package notification_test

import (
	"context"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	advanceDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/advance"
	"github.com/frahmantamala/salary-advance/internal/core/events"
	"github.com/frahmantamala/salary-advance/internal/core/fees"
	"github.com/frahmantamala/salary-advance/internal/employee"
	"github.com/frahmantamala/salary-advance/internal/notification"
)

var _ = Describe("EventHandler", func() {
	It("replays a rejection from a bus event", func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		sms := &fakeSMS{failFor: map[string]string{}}
		dispatcher := notification.NewDispatcher(notification.Deps{
			Advances: fakeAdvances{
				"adv-9": {ID: "adv-9", EmployeeID: "emp-9", PartnerID: "p-9", Amount: 500_000, Status: advanceDatamodel.StatusRejected, Phone: "620111111"},
			},
			Transactions: fakeTransactions{},
			Employees: &fakeEmployees{
				employees: map[string]*employee.Employee{"emp-9": {ID: "emp-9", FirstName: "Ibrahima", LastName: "Sow"}},
				partners:  map[string]*employee.Partner{},
			},
			Staff: &fakeStaff{},
			SMS:   sms,
			Email: &fakeEmail{},
			Fees:  fees.NewSchedule(fees.DefaultRate),
		}, notification.Config{CountryCode: "224", CurrencyLabel: "GNF", PlatformName: "Avance Salaire"}, logger)

		bus := events.NewEventBus(logger)
		notification.NewEventHandler(dispatcher, logger).RegisterEventHandlers(bus)

		err := bus.PublishSync(context.Background(), events.NewAdvanceEvent(events.EventTypeAdvanceRejected, "adv-9", "emp-9", "p-9", 500_000, "Ancienneté insuffisante"))
		Expect(err).NotTo(HaveOccurred())
		Expect(sms.to("224620111111")).To(HaveLen(1))
		Expect(sms.to("224620111111")[0]).To(ContainSubstring("Ancienneté insuffisante"))
	})

	It("maps kinds to bus event types", func() {
		Expect(notification.EventTypeFor(notification.KindPaymentSuccess)).To(Equal(events.EventTypePaymentSucceeded))
		Expect(notification.EventTypeFor("nope")).To(BeEmpty())
	})
})
