package util

import (
	"fmt"
	"strings"

	"github.com/PaulSonOfLars/gotgbot/v2"
)

// AlertsWriter mirrors error-level log lines to a Telegram ops channel.
// Plug it into a zerolog MultiLevelWriter; it never fails the log call.
type AlertsWriter struct {
	Bot    *gotgbot.Bot
	ChatID int64
}

func (w AlertsWriter) Write(p []byte) (n int, err error) {
	str := string(p)

	if strings.Contains(str, `"level":"error"`) || strings.Contains(str, `"level":"fatal"`) {
		_, _ = w.Bot.SendMessage(w.ChatID, fmt.Sprintf("❗️<code>%s</code>", str), &gotgbot.SendMessageOpts{
			ParseMode: "HTML",
		})
	}

	return len(p), nil
}
