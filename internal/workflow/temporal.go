package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"
	tlog "go.temporal.io/sdk/log"
)

type TemporalOptions struct {
	HostPort    string
	Namespace   string
	DialTimeout time.Duration
	// EncryptionKey is the 32 byte secretbox key for workflow payloads.
	EncryptionKey []byte
}

// DialTemporal connects to the Temporal frontend, retrying with
// exponential backoff until DialTimeout elapses.
func DialTemporal(ctx context.Context, opts TemporalOptions, log logrus.FieldLogger) (client.Client, error) {
	codec, err := NewEncryptionCodec(opts.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption codec: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = opts.DialTimeout
	if bo.MaxElapsedTime <= 0 {
		bo.MaxElapsedTime = 60 * time.Second
	}

	c, err := backoff.RetryNotifyWithData(
		func() (client.Client, error) {
			return client.Dial(client.Options{
				HostPort:  opts.HostPort,
				Namespace: opts.Namespace,
				Logger:    NewLogrusAdapter(log),
				DataConverter: converter.NewCodecDataConverter(
					converter.GetDefaultDataConverter(),
					codec,
				),
			})
		},
		backoff.WithContext(bo, ctx),
		func(err error, next time.Duration) {
			log.WithError(err).WithField("retry_in", next).Warn("temporal dial failed")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("dial temporal %s: %w", opts.HostPort, err)
	}
	return c, nil
}

// logrusAdapter satisfies the Temporal SDK logger interface.
type logrusAdapter struct {
	log logrus.FieldLogger
}

func NewLogrusAdapter(log logrus.FieldLogger) tlog.Logger {
	return &logrusAdapter{log: log.WithField("component", "temporal")}
}

func (a *logrusAdapter) entry(keyvals []any) logrus.FieldLogger {
	if len(keyvals) == 0 {
		return a.log
	}
	fields := make(logrus.Fields, len(keyvals)/2+1)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if i+1 == len(keyvals) {
			fields[key] = "(MISSING)"
			break
		}
		fields[key] = keyvals[i+1]
	}
	return a.log.WithFields(fields)
}

func (a *logrusAdapter) Debug(msg string, keyvals ...any) { a.entry(keyvals).Debug(msg) }

func (a *logrusAdapter) Info(msg string, keyvals ...any) { a.entry(keyvals).Info(msg) }

func (a *logrusAdapter) Warn(msg string, keyvals ...any) { a.entry(keyvals).Warn(msg) }

func (a *logrusAdapter) Error(msg string, keyvals ...any) { a.entry(keyvals).Error(msg) }
