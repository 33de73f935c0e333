package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/lendbook/lendbook/config"
	"github.com/lendbook/lendbook/internal/domain/entity"
	"github.com/lendbook/lendbook/internal/domain/repository"
	"github.com/lendbook/lendbook/internal/events"
	pginfra "github.com/lendbook/lendbook/internal/infrastructure/postgres"
	"github.com/lendbook/lendbook/pkg/currency"
	"github.com/lendbook/lendbook/pkg/helpers"
	"github.com/lendbook/lendbook/pkg/mailer"
	mailtpl "github.com/lendbook/lendbook/pkg/mailer/templates"
)

// The notify worker drains two queues. records_changed messages trigger
// a fresh due-date bucketing for the affected user and, at most once
// per user per day, queue a digest email. The email queue is rendered
// and handed to Mailgun.

func main() {
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notify", cfg.Env)

	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	for _, q := range []string{cfg.RabbitMQEventsQueue, cfg.RabbitMQEmailQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			log.Fatalf("queue declare %s: %v", q, err)
		}
	}

	eventMsgs, err := ch.Consume(cfg.RabbitMQEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume %s: %v", cfg.RabbitMQEventsQueue, err)
	}
	emailMsgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume %s: %v", cfg.RabbitMQEmailQueue, err)
	}

	// Digest emails re-enter the email queue through the same publisher
	// the API uses.
	emailPub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		log.Fatalf("email publisher: %v", err)
	}
	defer emailPub.Close()

	w := &worker{
		rdb:      rdb,
		loans:    pginfra.NewLoanRepository(pool),
		users:    pginfra.NewUserRepository(pool),
		emailPub: emailPub,
	}

	var mg *mailer.Mailgun
	if cfg.MailSendEnabled && cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" {
		mg = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	} else {
		logger.Warn("mailgun not configured, rendered emails will be dropped")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for msg := range eventMsgs {
			var ev events.RecordsChanged
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				logger.WithError(err).Warn("bad records_changed message")
				_ = msg.Nack(false, false)
				continue
			}
			if err := w.handleChange(ctx, ev); err != nil {
				logger.WithError(err).WithField("user_id", ev.UserID).Warn("change handling failed")
				_ = msg.Nack(false, true)
				continue
			}
			_ = msg.Ack(false)
		}
	}()

	go func() {
		for msg := range emailMsgs {
			var job mailer.EmailJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				logger.WithError(err).Warn("bad email message")
				_ = msg.Nack(false, false)
				continue
			}
			subject, html := job.Subject, job.HTML
			if job.Template != "" {
				s, h, rerr := mailtpl.Render(job.Template, job.Data)
				if rerr != nil {
					logger.WithError(rerr).WithField("template", job.Template).Warn("render failed")
					_ = msg.Nack(false, false)
					continue
				}
				subject, html = s, h
			}
			if mg == nil {
				_ = msg.Ack(false)
				continue
			}
			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := mg.Send(c, job.To, subject, job.Text, html)
			cancel()
			if err != nil {
				logger.WithError(err).WithField("to", job.To).Warn("send failed")
				_ = msg.Nack(false, true)
				continue
			}
			_ = msg.Ack(false)
		}
	}()

	logger.Infof("notify worker listening on queues %s, %s", cfg.RabbitMQEventsQueue, cfg.RabbitMQEmailQueue)
	<-stop
	logger.Info("shutting down")
}

type worker struct {
	rdb      *redis.Client
	loans    repository.LoanRepository
	users    repository.UserRepository
	emailPub *helpers.RabbitPublisher
}

func digestKey(userID string, day time.Time) string {
	return "digest:sent:" + userID + ":" + day.Format("2006-01-02")
}

// handleChange recomputes due buckets for the user and queues a digest
// email when anything is due within the week. The Redis SETNX guard
// caps it at one digest per user per day no matter how many events
// arrive.
func (w *worker) handleChange(ctx context.Context, ev events.RecordsChanged) error {
	if ev.UserID == "" {
		return nil
	}
	now := time.Now()
	loans, err := w.loans.ListByUser(ctx, ev.UserID, repository.LoanFilter{})
	if err != nil {
		return err
	}
	buckets := entity.Bucketize(loans, now)
	if entity.CountNotifications(buckets) == 0 {
		return nil
	}

	ok, err := w.rdb.SetNX(ctx, digestKey(ev.UserID, now), "1", 24*time.Hour).Result()
	if err != nil || !ok {
		return err
	}

	u, err := w.users.GetByID(ctx, ev.UserID)
	if err != nil {
		return err
	}

	var items []map[string]any
	for _, bucket := range []entity.Bucket{entity.BucketToday, entity.BucketTomorrow, entity.BucketUpcoming} {
		for _, n := range buckets[bucket] {
			when := n.DueDate.Format("Jan 2")
			switch bucket {
			case entity.BucketToday:
				when = "today"
			case entity.BucketTomorrow:
				when = "tomorrow"
			}
			items = append(items, map[string]any{
				"Borrower": n.BorrowerName,
				"Amount":   currency.Format(n.Amount, n.Currency),
				"When":     when,
			})
		}
	}

	return w.emailPub.PublishJSON(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateDueDigest,
		Data:     map[string]any{"Name": u.Name, "Items": items},
	})
}
