package util

var isoLangCodes = map[string]string{
	"en": "en_US",
	"ru": "ru_RU",
	"uk": "uk_UA",
	"de": "de_DE",
	"fr": "fr_FR",
	"es": "es_ES",
}

// IetfToIsoLangCode maps an IETF language code to the POSIX locale name
// lctime expects.
func IetfToIsoLangCode(lang string) string {
	if code, ok := isoLangCodes[lang]; ok {
		return code
	}
	return "en_US"
}
