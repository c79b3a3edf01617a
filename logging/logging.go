// Package logging builds the logrus logger used by the command and the HTTP
// API, and turns codec pipeline events into log entries.
//
// The core packages never log.  Keys only ever appear as fingerprints.
package logging

import (
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hasbyte1/go-stegocrypt/config"
	"github.com/hasbyte1/go-stegocrypt/keystore"
	"github.com/hasbyte1/go-stegocrypt/stego"
)

// New returns a logger writing to w with the configured level and format.
func New(cfg config.LogConfig, w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
	return log, nil
}

// WithOperation returns an entry tagged with op and a fresh operation id, so
// every line logged for one hide or reveal can be correlated.
func WithOperation(log logrus.FieldLogger, op stego.Op) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"op":    string(op),
		"op_id": uuid.NewString(),
	})
}

// KeyFields identifies key without revealing it.
func KeyFields(key []byte) logrus.Fields {
	return logrus.Fields{"key_fp": keystore.Fingerprint(key)}
}

// Observer logs codec events to log.
func Observer(log logrus.FieldLogger) stego.Observer {
	return stego.ObserverFunc(func(e stego.Event) {
		entry := log.WithField("stage", string(e.Stage))
		switch e.Stage {
		case stego.StageEmbedded:
			entry.WithFields(logrus.Fields{
				"bits":     e.Bits,
				"capacity": e.Capacity,
				"usage":    e.Usage(),
			}).Infof("embedded %d bits, %.2f%% of capacity", e.Bits, 100*e.Usage())
		case stego.StageOpened:
			entry.WithField("bytes", e.Bytes).Infof("recovered %d bytes", e.Bytes)
		default:
			entry.WithField("bytes", e.Bytes).Debugf("%s %d bytes", e.Stage, e.Bytes)
		}
	})
}
