package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

// Translator localizes message ids against the embedded locale files plus any loaded at runtime.
type Translator struct {
	bundle *goi18n.Bundle
}

func New() (*Translator, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		path := "locales/" + e.Name()
		buf, err := locales.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(buf, path); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return &Translator{bundle: bundle}, nil
}

// Load adds a message file from disk, e.g. active.fr.json.
func (t *Translator) Load(path string) error {
	_, err := t.bundle.LoadMessageFile(path)
	return err
}

// Localize renders id in the first matching language. def is returned when no translation exists.
func (t *Translator) Localize(id, def string, data map[string]string, langs ...string) string {
	if t == nil {
		return def
	}
	loc := goi18n.NewLocalizer(t.bundle, langs...)
	// A MessageNotFoundErr still carries the default message, so only an empty result falls back.
	msg, _ := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:      id,
		DefaultMessage: &goi18n.Message{ID: id, Other: def},
		TemplateData:   data,
	})
	if msg == "" {
		return def
	}
	return msg
}
