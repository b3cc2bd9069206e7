package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/streadway/amqp"

	"jobfit-backend/internal/bootstrap"
	"jobfit-backend/internal/queue"
	"jobfit-backend/internal/shared/config"
	"jobfit-backend/internal/shared/telemetry"
	"jobfit-backend/internal/workerproc"
)

const (
	defaultVisibilitySeconds  = 300
	defaultWorkerConcurrency  = 4
	defaultShutdownTimeoutSec = 30
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	concurrency := envInt("WORKER_CONCURRENCY", defaultWorkerConcurrency)
	shutdownTimeout := time.Duration(envInt("SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second

	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("worker.bootstrap_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer app.Close()

	sem := make(chan struct{}, max(1, concurrency))
	var wg sync.WaitGroup

	switch cfg.QueueBackend {
	case "sqs":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, regionOpts(cfg.AWSRegion)...)
		if err != nil {
			telemetry.Error("worker.aws_config_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		visibility := envInt("SQS_VISIBILITY_TIMEOUT_SECONDS", defaultVisibilitySeconds)
		telemetry.Info("worker.started", map[string]any{
			"backend": "sqs", "queue": cfg.SQSQueueURL, "concurrency": concurrency, "visibility": visibility,
		})
		pollSQS(ctx, sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL, visibility, app.ResumesService, sem, &wg)
	case "amqp":
		client, ok := app.Queue.(*queue.AMQPClient)
		if !ok {
			telemetry.Error("worker.amqp_unavailable", nil)
			os.Exit(1)
		}
		deliveries, err := client.Consume(concurrency)
		if err != nil {
			telemetry.Error("worker.amqp_consume_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		telemetry.Info("worker.started", map[string]any{
			"backend": "amqp", "queue": cfg.AMQPQueue, "concurrency": concurrency,
		})
		consumeAMQP(ctx, deliveries, app.ResumesService, sem, &wg)
	default:
		telemetry.Error("worker.no_queue", map[string]any{"hint": "set QUEUE_BACKEND to sqs or amqp"})
		os.Exit(1)
	}

	telemetry.Info("worker.draining", map[string]any{"timeout": shutdownTimeout.String()})
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		telemetry.Warn("worker.shutdown_timeout", nil)
	}
}

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func pollSQS(ctx context.Context, client sqsAPI, queueURL string, visibility int, proc workerproc.ResumeProcessor, sem chan struct{}, wg *sync.WaitGroup) {
	for {
		if ctx.Err() != nil {
			return
		}
		resp, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   int32(visibility),
			AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			telemetry.Warn("worker.receive_failed", map[string]any{"error": err.Error()})
			continue
		}
		for _, msg := range resp.Messages {
			select {
			case <-ctx.Done():
				return
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(m sqstypes.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				// In-flight work finishes even after shutdown is requested.
				handleMessage(context.WithoutCancel(ctx), client, queueURL, proc, m)
			}(msg)
		}
	}
}

// handleMessage deletes the message on success or when redelivery cannot
// help. Retryable failures are left for the visibility timeout.
func handleMessage(ctx context.Context, client sqsAPI, queueURL string, proc workerproc.ResumeProcessor, msg sqstypes.Message) {
	decoded, err := workerproc.HandleBody(ctx, proc, aws.ToString(msg.Body))
	fields := sqsFields(msg, decoded)
	switch {
	case err == nil:
		if deleteMessage(ctx, client, queueURL, msg, fields) {
			telemetry.Info("worker.resume.completed", fields)
		}
	case workerproc.Unrecoverable(err):
		fields["error"] = err.Error()
		telemetry.Error("worker.resume.dropped", fields)
		deleteMessage(ctx, client, queueURL, msg, fields)
	default:
		fields["error"] = err.Error()
		telemetry.Error("worker.resume.failed", fields)
	}
}

func deleteMessage(ctx context.Context, client sqsAPI, queueURL string, msg sqstypes.Message, fields map[string]any) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		telemetry.Error("worker.delete_failed", withError(fields, "missing receipt handle"))
		return false
	}
	if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		telemetry.Error("worker.delete_failed", withError(fields, err.Error()))
		return false
	}
	return true
}

func consumeAMQP(ctx context.Context, deliveries <-chan amqp.Delivery, proc workerproc.ResumeProcessor, sem chan struct{}, wg *sync.WaitGroup) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				telemetry.Warn("worker.amqp_channel_closed", nil)
				return
			}
			select {
			case <-ctx.Done():
				_ = d.Nack(false, true)
				return
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				handleDelivery(context.WithoutCancel(ctx), proc, d)
			}(d)
		}
	}
}

// handleDelivery acks successes and poison messages. A retryable failure is
// requeued once; a second failure is dropped.
func handleDelivery(ctx context.Context, proc workerproc.ResumeProcessor, d amqp.Delivery) {
	decoded, err := workerproc.HandleBody(ctx, proc, string(d.Body))
	fields := map[string]any{
		"resume_id":   decoded.ResumeID,
		"request_id":  decoded.RequestID,
		"redelivered": d.Redelivered,
	}
	switch {
	case err == nil:
		telemetry.Info("worker.resume.completed", fields)
		ackErr(d.Ack(false), fields)
	case workerproc.Unrecoverable(err):
		telemetry.Error("worker.resume.dropped", withError(fields, err.Error()))
		ackErr(d.Nack(false, false), fields)
	default:
		telemetry.Error("worker.resume.failed", withError(fields, err.Error()))
		ackErr(d.Nack(false, !d.Redelivered), fields)
	}
}

func ackErr(err error, fields map[string]any) {
	if err != nil {
		telemetry.Error("worker.ack_failed", withError(fields, err.Error()))
	}
}

func sqsFields(msg sqstypes.Message, decoded queue.Message) map[string]any {
	fields := map[string]any{
		"resume_id":      decoded.ResumeID,
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
	if strings.TrimSpace(decoded.RequestID) != "" {
		fields["request_id"] = decoded.RequestID
	}
	return fields
}

func withError(fields map[string]any, msg string) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = msg
	return out
}

func receiveCount(msg sqstypes.Message) int {
	raw := msg.Attributes["ApproximateReceiveCount"]
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}

func regionOpts(region string) []func(*awsconfig.LoadOptions) error {
	if r := strings.TrimSpace(region); r != "" {
		return []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(r)}
	}
	return nil
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
}
