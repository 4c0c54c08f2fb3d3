// Package audit publica um evento por mutação da coleção no Kafka.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/radieske/betslip-tracker/internal/shared/kafka"
	"github.com/radieske/betslip-tracker/pkg/contracts/events"
)

// MessageWriter é o subconjunto de *kafka.Writer usado aqui
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaAuditor escreve BetsMutated no tópico de mutações
type KafkaAuditor struct {
	w     MessageWriter
	topic string
	log   *zap.Logger
}

func NewKafkaAuditor(w MessageWriter, topic string, log *zap.Logger) *KafkaAuditor {
	return &KafkaAuditor{w: w, topic: topic, log: log}
}

// Record serializa o evento. A chave é a operação, o que mantém a ordem por tipo de mutação.
func (a *KafkaAuditor) Record(ctx context.Context, e events.BetsMutated) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	if err := kafka.WriteJSON(ctx, a.w, e.Op, value); err != nil {
		return fmt.Errorf("write %s: %w", a.topic, err)
	}
	a.log.Debug("audit event published", zap.String("op", e.Op), zap.Int("count", e.Count))
	return nil
}

func (a *KafkaAuditor) Close() error {
	return a.w.Close()
}
