package broker

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spendlog/spendlog/internal/event_bus"
)

// Forward publishes every expense.recorded event to p under routingKey until
// the returned function is called. Broker failures are logged; the expense is
// already stored when the event is published.
func Forward(bus *event_bus.EventBus, p Publisher, routingKey string) (stop func()) {
	return event_bus.SubscribeTyped(bus, event_bus.ExpenseRecordedTopic, func(e event_bus.EventT[event_bus.ExpenseRecorded]) error {
		body, err := NewExpenseMessage(e.Data).ToJSON()
		if err != nil {
			return fmt.Errorf("marshal expense message: %w", err)
		}
		if err := p.Publish(e.Context(), routingKey, body); err != nil {
			log.Errorf("failed to forward expense %d to broker: %v", e.Data.Id, err)
			return err
		}
		log.Debugf("Forwarded expense %d to broker", e.Data.Id)
		return nil
	})
}
