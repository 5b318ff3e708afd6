package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"app/internal/usecase"

	"github.com/segmentio/kafka-go"
)

// KafkaCaptureNotifier は決済キャプチャ要求をトピックに流す。
// 外部の決済サービスがこれを拾ってリダイレクトURLを発行し、
// 結果はwebhook経由で注文ステータスに反映される
type KafkaCaptureNotifier struct {
	writer *kafka.Writer
}

func NewKafkaCaptureNotifier(brokers []string, topic string) *KafkaCaptureNotifier {
	return &KafkaCaptureNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (n *KafkaCaptureNotifier) NotifyCaptureRequested(ctx context.Context, req usecase.CaptureRequest) error {
	value, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal capture request failed: %w", err)
	}

	msg := kafka.Message{
		// payment単位でパーティションが揃うようにキーはpayment_id
		Key:   []byte(strconv.FormatInt(req.PaymentID, 10)),
		Value: value,
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write capture request failed: %w", err)
	}
	return nil
}

func (n *KafkaCaptureNotifier) Close() error {
	return n.writer.Close()
}
