package kafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// ReplyHandler обрабатывает тело ответа из одного канала ответов.
// Ошибок не возвращает: непарсящийся или непарный ответ логируется
// и отбрасывается на стороне клиента.
type ReplyHandler func(payload []byte)

// Consumer читает парные каналы ответов и раздаёт сообщения
// обработчикам по имени канала. Входящее сообщение подтверждается
// безусловно, был ли найден ожидающий слот или нет, чтобы redelivery
// не происходил на каждый ответ.
type Consumer struct {
	consumer sarama.ConsumerGroup
	handlers map[string]ReplyHandler
	topics   []string
	logger   *log.Entry
	wg       sync.WaitGroup
}

// NewConsumer создает consumer group, подписанный на каналы из handlers.
func NewConsumer(brokers []string, groupID string, handlers map[string]ReplyHandler) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	consumer, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	topics := make([]string, 0, len(handlers))
	for topic := range handlers {
		topics = append(topics, topic)
	}

	return &Consumer{
		consumer: consumer,
		handlers: handlers,
		topics:   topics,
		logger:   log.WithField("component", "kafka-consumer"),
	}, nil
}

// Start запускает consumer
func (c *Consumer) Start(ctx context.Context) error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			// Consume должен вызываться в цикле, так как при rebalance он завершается
			if err := c.consumer.Consume(ctx, c.topics, c); err != nil {
				c.logger.WithError(err).Error("error from consumer")
			}

			// Проверяем, не отменен ли контекст
			if ctx.Err() != nil {
				return
			}
		}
	}()

	// Обработка ошибок
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for err := range c.consumer.Errors() {
			c.logger.WithError(err).Error("consumer error")
		}
	}()

	c.logger.WithField("topics", c.topics).Info("kafka consumer started")
	return nil
}

// Stop останавливает consumer
func (c *Consumer) Stop() error {
	if err := c.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	c.wg.Wait()
	c.logger.Info("kafka consumer stopped")
	return nil
}

// Setup вызывается при старте consumer session
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup вызывается при завершении consumer session
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim обрабатывает сообщения из partition. Сообщение маркируется
// обработанным до анализа исхода: доставка ответа без ожидающего слота —
// штатная ситуация, а не повод для redelivery.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			c.logger.WithFields(log.Fields{
				"topic":     message.Topic,
				"partition": message.Partition,
				"offset":    message.Offset,
			}).Debug("received reply")

			if handler, ok := c.handlers[message.Topic]; ok {
				handler(message.Value)
			} else {
				c.logger.WithField("topic", message.Topic).Warn("reply on unexpected topic dropped")
			}

			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
