// Package txt holds user-facing notification copy keyed by message id and
// language.
package txt

import "golang.org/x/text/language"

var translations = map[string]map[string]string{
	"en": {
		"notification.participant_joined.title":   "New participant",
		"notification.participant_joined.body":    "%s joined %s",
		"notification.join_request_created.title": "Join request",
		"notification.join_request_created.body":  "%s asked to join %s",
		"notification.join_request_approved.title": "Request approved",
		"notification.join_request_approved.body":  "Your request to join %s was approved",
		"notification.join_request_rejected.title": "Request rejected",
		"notification.join_request_rejected.body":  "Your request to join %s was rejected",
		"notification.waitlist_promoted.title":     "You are in",
		"notification.waitlist_promoted.body":      "A spot opened up in %s and it is yours",
		"notification.booking_requested.title":     "Booking request",
		"notification.booking_requested.body":      "%s requested %s",
		"notification.booking_confirmed.title":     "Booking confirmed",
		"notification.booking_confirmed.body":      "Your booking for %s is confirmed",
		"notification.booking_declined.title":      "Booking declined",
		"notification.booking_declined.body":       "Your booking for %s was declined",
	},
	"ru": {
		"notification.participant_joined.title":   "Новый участник",
		"notification.participant_joined.body":    "%s присоединился к %s",
		"notification.join_request_created.title": "Заявка на участие",
		"notification.join_request_created.body":  "%s хочет присоединиться к %s",
		"notification.join_request_approved.title": "Заявка одобрена",
		"notification.join_request_approved.body":  "Ваша заявка на участие в %s одобрена",
		"notification.join_request_rejected.title": "Заявка отклонена",
		"notification.join_request_rejected.body":  "Ваша заявка на участие в %s отклонена",
		"notification.waitlist_promoted.title":     "Вы в игре",
		"notification.waitlist_promoted.body":      "В %s освободилось место, и оно ваше",
		"notification.booking_requested.title":     "Запрос на бронирование",
		"notification.booking_requested.body":      "%s запросил %s",
		"notification.booking_confirmed.title":     "Бронирование подтверждено",
		"notification.booking_confirmed.body":      "Ваше бронирование %s подтверждено",
		"notification.booking_declined.title":      "Бронирование отклонено",
		"notification.booking_declined.body":       "Ваше бронирование %s отклонено",
	},
}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Russian,
})

// Get returns the message for the closest supported language, falling back
// to English, then to the key itself.
func Get(key, lang string) string {
	tag, _ := language.MatchStrings(matcher, lang)
	base, _ := tag.Base()

	if m, ok := translations[base.String()]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := translations["en"][key]; ok {
		return s
	}
	return key
}
