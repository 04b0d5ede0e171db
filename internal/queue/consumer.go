package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/logging"
)

// StartRosterConsumer consumes RosterQueue and appends one line per message
// to logPath. It reconnects with exponential backoff (capped at 30s) until
// ctx is cancelled. Messages that cannot be handled are rejected without
// requeue so a poison message cannot spin the loop.
func StartRosterConsumer(ctx context.Context, url, logPath string, log *logrus.Entry) {
	log = log.WithField(logging.FldQueue, RosterQueue)
	backoff := time.Second
	for ctx.Err() == nil {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.WithError(err).Warnf("dial broker failed, retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, logPath, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		log.WithError(err).Warn("consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string, log *logrus.Entry) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "open channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.WithError(err).Warn("set QoS failed")
	}
	if _, err := ch.QueueDeclare(RosterQueue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "declare queue")
	}
	msgs, err := ch.ConsumeWithContext(ctx, RosterQueue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "consume")
	}

	for d := range msgs {
		if err := appendRosterLine(logPath, d.Body); err != nil {
			log.WithError(err).Warn("handle message failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func appendRosterLine(logPath string, body []byte) error {
	var ev RosterUpdatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return errors.Wrap(err, "unmarshal")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return errors.Wrap(err, "mkdir log dir")
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open log file")
	}
	defer f.Close()
	return writeRosterLine(f, ev)
}

func writeRosterLine(w io.Writer, ev RosterUpdatedEvent) error {
	names := "[]"
	if len(ev.ArtistNames) > 0 {
		names = "[" + strings.Join(ev.ArtistNames, ",") + "]"
	}
	_, err := fmt.Fprintf(w, "[%s] Roster updated | event_id=%d | title=%q | start=%s | artists=%d %s\n",
		ev.UpdatedAt, ev.EventID, ev.EventTitle, ev.EventStart, len(ev.ArtistIDs), names)
	return errors.Wrap(err, "write log")
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
