package utils

import (
	"path"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

// localeFiles lists the message catalogs under the `i18n.dir` config
// directory. Matches the locales OneSignal notifications are sent in.
var localeFiles = []string{"en.yaml", "zh_tw.yaml"}

var bundle *i18n.Bundle

// InitI18NBundle loads the notification message catalogs. English is the
// fallback for any locale without a catalog.
func InitI18NBundle() {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	for _, f := range localeFiles {
		bundle.MustLoadMessageFile(path.Join(viper.GetString("i18n.dir"), f))
	}
}

// NewLocalizer resolves notification texts for one language tag.
func NewLocalizer(lang string) *i18n.Localizer {
	return i18n.NewLocalizer(bundle, lang)
}
