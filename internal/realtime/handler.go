package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"daylog/internal/apierr"
	"daylog/internal/service"
	"daylog/internal/store"
)

// StoreHandler applies pushed task changes to s and forwards notifications to n.
// Either of s and n may be nil.
func StoreHandler(s *store.Store, n apierr.Notifier, logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, msg Message) {
		switch msg.Type {
		case TypeTaskUpdated:
			var t service.Task
			if err := json.Unmarshal(msg.Payload, &t); err != nil || t.ID == "" {
				logger.Warn("bad task.updated payload", "error", err)
				return
			}
			if s != nil {
				s.ApplyRemote(t)
			}
			if n != nil {
				n.Notify(ctx, apierr.Notification{Title: "Task updated", Message: t.Title, Level: apierr.LevelInfo})
			}

		case TypeTaskDeleted:
			var p struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(msg.Payload, &p); err != nil || p.ID == "" {
				logger.Warn("bad task.deleted payload", "error", err)
				return
			}
			if s != nil {
				s.RemoveRemote(p.ID)
			}
			if n != nil {
				n.Notify(ctx, apierr.Notification{Title: "Task deleted", Message: p.ID, Level: apierr.LevelInfo})
			}

		case TypeNotification:
			var note apierr.Notification
			if err := json.Unmarshal(msg.Payload, &note); err != nil {
				logger.Warn("bad notification payload", "error", err)
				return
			}
			if note.Level == "" {
				note.Level = apierr.LevelInfo
			}
			if n != nil {
				n.Notify(ctx, note)
			}

		default:
			logger.Debug("ignoring realtime message", "type", msg.Type)
		}
	}
}
