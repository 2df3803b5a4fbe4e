package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Disposition menentukan nasib sebuah message setelah handler selesai.
type Disposition int

const (
	// Ack: commit offset dan lanjut. Dipakai untuk sukses maupun skip
	// permanen (malformed, not found, sudah diproses).
	Ack Disposition = iota
	// Retry: handler diulang di message yang sama dengan backoff.
	// Offset tidak boleh maju melewati message yang belum tuntas:
	// commit per-partition itu high-watermark, jadi meng-commit message
	// berikutnya ikut "meng-commit" message yang dilompati.
	Retry
)

type Handler func(ctx context.Context, m kafka.Message) Disposition

type Consumer struct {
	r       *kafka.Reader
	log     *zap.Logger
	backoff time.Duration
}

func NewConsumer(brokers []string, group, topic string, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	return &Consumer{r: r, log: log, backoff: 200 * time.Millisecond}
}

// Start memproses satu message sampai tuntas (Ack) sebelum commit offset-nya;
// tidak ada dua message in-flight dari stream yang sama. Cancel context
// menghentikan fetch berikutnya, handler yang sedang jalan dibiarkan selesai.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			// kecilkan noise saat shutdown
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		if !c.deliver(ctx, h, m) {
			return nil // shutdown di tengah retry; offset tetap uncommitted
		}

		if err := c.r.CommitMessages(ctx, m); err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			c.log.Error("commit offset", zap.Error(err))
		}
	}
}

// deliver memanggil handler sampai Ack, mengulang message yang sama dengan
// backoff selama hasilnya Retry. Return false hanya kalau context selesai
// duluan.
func (c *Consumer) deliver(ctx context.Context, h Handler, m kafka.Message) bool {
	for {
		if h(ctx, m) == Ack {
			return true
		}
		c.log.Warn("handler retry on same message",
			zap.String("topic", m.Topic),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.backoff):
		}
	}
}
