package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/docgraph/internal/config"
	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/loader"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
)

const publishTimeout = 5 * time.Second

// streamPublisher is the subset of jetstream.JetStream used for publishing.
type streamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher publishes VersionLoaded events to a JetStream subject.
type Publisher struct {
	conn    *nats.Conn
	js      streamPublisher
	subject string
	now     func() time.Time
}

// Connect dials cfg.NATSURL and makes sure the stream capturing
// cfg.Subject exists.
func Connect(ctx context.Context, cfg config.EventsConfig) (*Publisher, error) {
	conn, err := nats.Connect(cfg.NATSURL, nats.Name("docgraph"))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryEvents, "failed to connect to NATS").
			WithContext("url", cfg.NATSURL).Build()
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryEvents, "failed to create JetStream context").Build()
	}

	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := js.CreateOrUpdateStream(sctx, jetstream.StreamConfig{
		Name:        cfg.Stream,
		Description: "docgraph load notifications",
		Subjects:    []string{cfg.Subject},
		MaxMsgs:     10_000,
	}); err != nil {
		conn.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryEvents, "failed to ensure stream").
			WithContext("stream", cfg.Stream).Build()
	}

	slog.Info("NATS publisher initialized",
		logfields.URL(cfg.NATSURL),
		logfields.Subject(cfg.Subject),
		slog.String("stream", cfg.Stream))
	return newPublisher(conn, js, cfg.Subject), nil
}

func newPublisher(conn *nats.Conn, js streamPublisher, subject string) *Publisher {
	return &Publisher{conn: conn, js: js, subject: subject, now: time.Now}
}

// PublishVersionLoaded publishes the VersionLoaded event of v.
func (p *Publisher) PublishVersionLoaded(ctx context.Context, buildID string, v loader.LoadedVersion) error {
	ev := NewVersionLoaded(buildID, v, p.now())
	data, err := json.Marshal(ev)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryEvents, "failed to marshal event").Build()
	}

	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if _, err := p.js.Publish(pctx, p.subject, data, jetstream.WithMsgID(ev.MsgID())); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryEvents, "failed to publish event").
			WithContext("subject", p.subject).
			WithContext(ferrors.KeyVersion, ev.Version).
			Build()
	}

	slog.Debug("Published version event",
		logfields.BuildID(buildID),
		logfields.Version(ev.Version),
		logfields.Subject(p.subject))
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
