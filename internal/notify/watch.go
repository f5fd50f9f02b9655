package notify

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cadencefm/cadence/internal/errmsg"
	"github.com/cadencefm/cadence/internal/library"
	"github.com/cadencefm/cadence/internal/playback"
)

const trackTimeout = 5000 // ms

// Watch sends a notification for every song change and playback error
// on sub until ctx is done or the subscription closes. Each song change
// replaces the previous notification.
func Watch(ctx context.Context, sub *playback.Subscription, n Notifier, log logrus.FieldLogger) {
	var lastID uint32
	send := func(notif Notification) {
		notif.ReplacesID = lastID
		id, err := n.Notify(notif)
		if err != nil {
			log.WithError(err).Debug("desktop notification failed")
			return
		}
		lastID = id
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case e := <-sub.TrackChanged:
			if e.Current == nil || sameSong(e.Previous, e.Current) {
				continue
			}
			send(trackNotification(*e.Current))
		case e := <-sub.Error:
			send(Notification{
				Title:   "Playback error",
				Body:    errmsg.FormatWith(errmsg.ForEvent(e.Operation), e.Path, e.Err),
				Timeout: -1,
				Urgency: UrgencyCritical,
			})
		}
	}
}

func trackNotification(s library.Song) Notification {
	var body []string
	if s.Artist != "" {
		body = append(body, s.Artist)
	}
	if s.Album != "" {
		body = append(body, s.Album)
	}
	return Notification{
		Title:   s.Title,
		Body:    strings.Join(body, " - "),
		Icon:    iconPath(s),
		Timeout: trackTimeout,
		Urgency: UrgencyLow,
	}
}

func sameSong(a, b *library.Song) bool {
	return a != nil && b != nil && a.ID == b.ID
}
