package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
	"github.com/tea-corner/go-backend/internal/cfg"
	"github.com/tea-corner/go-backend/internal/domain"
	"github.com/tea-corner/go-backend/internal/usecase"
	"github.com/tea-corner/go-backend/pkg/e"
	"github.com/tea-corner/go-backend/pkg/logger"
)

// Producer публикует события оформленных заказов в Kafka.
type Producer struct {
	writer *kafka.Writer
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) (*Producer, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    10,
		BatchTimeout: 500 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warnf("Kafka producer error: %s", err.Error())
			}
		},
	}

	return &Producer{
		writer: writer,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// orderEvent — JSON-представление события заказа в топике.
type orderEvent struct {
	EventTimestamp int64            `json:"event_timestamp"`
	OrderNumber    string           `json:"order_number"`
	UserID         int64            `json:"user_id"`
	Username       string           `json:"username"`
	Total          int64            `json:"total"` // копейки
	Lines          []orderEventLine `json:"lines"`
	Contact        orderEventCont   `json:"contact"`
}

type orderEventLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"` // копейки, за единицу
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"` // копейки
}

type orderEventCont struct {
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Comment  string `json:"comment"`
	Promo    string `json:"promo"`
}

// WriteOrder публикует заказ, ключ сообщения — номер заказа.
func (p *Producer) WriteOrder(ctx context.Context, req *usecase.WriteOrderReq) error {
	value, err := json.Marshal(toOrderEvent(req.Order))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(req.Order.Number),
		Value: value,
	})
}

// EnsureTopic создаёт топик заказов, если его ещё нет.
func (p *Producer) EnsureTopic(timeout time.Duration) error {
	conn, err := kafka.Dial(p.cfg.NetworkMode, p.cfg.Brokers[0])
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(p.cfg.Topic)
	if err == nil && len(partitions) > 0 {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		err := conn.CreateTopics(kafka.TopicConfig{
			Topic:             p.cfg.Topic,
			NumPartitions:     p.cfg.Partitions,
			ReplicationFactor: p.cfg.ReplicationFactor,
		})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to create topic %s: %w", p.cfg.Topic, err))
		}
		return nil
	case <-time.After(timeout):
		_ = conn.Close()
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("timeout: %v, topic: %s", timeout, p.cfg.Topic))
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func toOrderEvent(order *domain.Order) orderEvent {
	lines := make([]orderEventLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderEventLine{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal,
		})
	}

	return orderEvent{
		EventTimestamp: time.Now().UnixNano(),
		OrderNumber:    order.Number,
		UserID:         order.UserID,
		Username:       order.Username,
		Total:          order.Total,
		Lines:          lines,
		Contact: orderEventCont{
			FullName: order.Contact.FullName,
			Address:  order.Contact.Address,
			Phone:    order.Contact.Phone,
			Comment:  order.Contact.Comment,
			Promo:    order.Contact.Promo,
		},
	}
}
