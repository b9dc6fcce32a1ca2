package notify

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dgnsrekt/notifications-monitor/internal/feed"
)

// Message is a single ntfy publication.
type Message struct {
	Title    string
	Body     string
	Tags     string
	Priority string
	Click    string
}

// FormatEntryMessage creates the notification body for a forwarded entry.
func FormatEntryMessage(entry feed.DatedEntry) Message {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("ID: %s\n", entry.Entry.ID))
	if entry.Entry.PublishReference != "" {
		sb.WriteString(fmt.Sprintf("Publish reference: %s\n", entry.Entry.PublishReference))
	}
	if entry.Entry.LastModified != "" {
		sb.WriteString(fmt.Sprintf("Last modified: %s\n", entry.Entry.LastModified))
	}
	sb.WriteString(fmt.Sprintf("Received: %s", entry.ReceivedAt.UTC().Format(time.RFC3339)))

	return Message{
		Title: fmt.Sprintf("Notification: %s", changeType(entry.Entry.Type)),
		Body:  sb.String(),
		Click: entry.Entry.APIURL,
	}
}

// changeType shortens a type URI such as
// http://www.ft.com/thing/ThingChangeType/UPDATE to UPDATE.
func changeType(t string) string {
	if t == "" {
		return "unknown"
	}
	return path.Base(t)
}
