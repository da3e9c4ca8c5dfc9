package rabbitmq

import "github.com/magabrotheeeer/gridnode/internal/models"

// Exchange обменник доменных событий GridNode.
const Exchange = "gridnode.events"

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Имена очередей, которые читает сервис уведомлений.
const (
	QueueContact  = "gridnode.notify.contact"
	QueueBilling  = "gridnode.notify.billing"
	QueueExpiring = "gridnode.notify.expiring"
)

// EventQueues возвращает очереди уведомлений, по одной на тип события.
func EventQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueContact, RoutingKey: models.EventContactSubmitted},
		{QueueName: QueueBilling, RoutingKey: models.EventBillingPaid},
		{QueueName: QueueExpiring, RoutingKey: models.EventPlanExpiring},
	}
}
