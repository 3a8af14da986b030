package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/messaging/kafka"
)

// orderEventsGroupID — consumer group аудит-подписчика событий заказов.
const orderEventsGroupID = "shop-order-events-audit"

// initKafkaProducer создаёт producer, если список брокеров не пуст.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	if brokers == "" {
		return nil, nil
	}

	brokerList := strings.Split(brokers, ",")
	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer, nil
}

// closeKafka закрывает producer, если он был создан.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}

// initOrderEventsConsumer подписывает аудит-логгер на топик событий заказов.
// dlqProducer может быть nil — тогда необработанные сообщения остаются в топике.
func initOrderEventsConsumer(brokers string, dlqProducer *kafka.Producer, logger *log.Entry) (*kafka.Consumer, error) {
	if brokers == "" {
		return nil, nil
	}

	consumer, err := kafka.NewConsumerWithDLQ(
		strings.Split(brokers, ","),
		orderEventsGroupID,
		[]string{kafka.TopicOrderEvents},
		orderEventAuditHandler(logger.WithField("layer", "order-events")),
		dlqProducer,
		3,
	)
	if err != nil {
		logger.WithError(err).Warn("failed to create order events consumer, continuing without it")
		return nil, err
	}

	return consumer, nil
}

// orderEventEnvelope — конверт, который outbox-паблишер кладёт в топик.
type orderEventEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
}

// orderEventAuditHandler пишет каждое событие заказа в журнал. Сообщение,
// которое не разбирается как конверт, возвращает ошибку и уходит в retry/DLQ.
func orderEventAuditHandler(logger *log.Entry) kafka.MessageHandler {
	return func(_ context.Context, message *sarama.ConsumerMessage) error {
		var envelope orderEventEnvelope
		if err := json.Unmarshal(message.Value, &envelope); err != nil {
			return fmt.Errorf("unmarshal order event envelope: %w", err)
		}
		if envelope.EventType == "" {
			return fmt.Errorf("order event envelope without event_type: offset=%d", message.Offset)
		}

		logger.WithFields(log.Fields{
			"event_type":     envelope.EventType,
			"aggregate_type": envelope.AggregateType,
			"aggregate_id":   envelope.AggregateID,
			"partition":      message.Partition,
			"offset":         message.Offset,
		}).Info("order event received")
		return nil
	}
}
