package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/antonrybakov/ordersaga/internal/client/buyer"
	"github.com/antonrybakov/ordersaga/internal/client/product"
	"github.com/antonrybakov/ordersaga/internal/messaging/kafka"
)

// kafkaClients группирует продьюсер, консьюмер ответов и построенных
// поверх них клиентов справочника покупателей и каталога товаров.
type kafkaClients struct {
	producer *kafka.Producer
	consumer *kafka.Consumer
	buyers   *buyer.Client
	products *product.Client
}

// initKafkaClients поднимает Kafka-обвязку: клиенты публикуют запросы через
// общий продьюсер, консьюмер раскладывает ответы по обработчикам клиентов.
func initKafkaClients(brokers, groupID string, logger *log.Entry) (*kafkaClients, error) {
	brokerList := strings.Split(brokers, ",")

	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		return nil, err
	}

	buyers := buyer.New(producer, logger)
	products := product.New(producer, logger)

	handlers := map[string]kafka.ReplyHandler{
		kafka.TopicGetBuyerResponses:     buyers.HandleReply,
		kafka.TopicGetProductsResponses:  products.HandleProductsReply,
		kafka.TopicReserveStockResponses: products.HandleReserveReply,
		kafka.TopicReleaseStockResponses: products.HandleReleaseReply,
	}
	consumer, err := kafka.NewConsumer(brokerList, groupID, handlers)
	if err != nil {
		if closeErr := producer.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("failed to close kafka producer")
		}
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka clients initialized")
	return &kafkaClients{
		producer: producer,
		consumer: consumer,
		buyers:   buyers,
		products: products,
	}, nil
}

// closeKafkaClients останавливает консьюмер и закрывает продьюсер.
func closeKafkaClients(clients *kafkaClients, logger *log.Entry) {
	if clients == nil {
		return
	}
	if err := clients.consumer.Stop(); err != nil {
		logger.WithError(err).Warn("failed to stop kafka consumer")
	}
	if err := clients.producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka clients closed")
	}
}
