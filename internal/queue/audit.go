package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/tazhibayda/radiostation-service/internal/helper"
)

// AuditHandler decodes known events and writes one log line per event. Emails
// are logged as fingerprints only.
func AuditHandler(l *zap.Logger) HandlerFunc {
	return func(_ context.Context, m Message) error {
		fields := []zap.Field{
			zap.String("key", m.Key),
			zap.String("message_id", m.MessageID),
			zap.String("request_id", m.RequestID),
		}
		switch m.Key {
		case KeyUserRegistered:
			var e UserRegistered
			if err := decode(m, &e); err != nil {
				return err
			}
			fields = append(fields, zap.String("user_id", e.UserID), zap.String("email_h", helper.Hash8(e.Email)))
		case KeyUserLoggedIn:
			var e UserLoggedIn
			if err := decode(m, &e); err != nil {
				return err
			}
			fields = append(fields, zap.String("user_id", e.UserID), zap.String("email_h", helper.Hash8(e.Email)))
		case KeyStationCreated:
			var e StationCreated
			if err := decode(m, &e); err != nil {
				return err
			}
			by := "anonymous"
			if e.By != "" {
				by = helper.Hash8(e.By)
			}
			fields = append(fields, zap.Any("inserted_id", e.InsertedID), zap.Any("station_id", e.StationID), zap.String("by", by))
		case KeyStationUpserted:
			var e StationUpserted
			if err := decode(m, &e); err != nil {
				return err
			}
			fields = append(fields, zap.Any("station_id", e.StationID), zap.Bool("inserted", e.Inserted), zap.Int64("modified", e.Modified))
		default:
			l.Warn("unknown event", fields...)
			return nil
		}
		l.Info("audit", fields...)
		return nil
	}
}

func decode(m Message, v any) error {
	if err := json.Unmarshal(m.Body, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrDrop, m.Key, err)
	}
	return nil
}
