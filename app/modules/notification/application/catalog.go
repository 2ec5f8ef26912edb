package notificationservice

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Localizer renders notice keys in one language.
type Localizer struct {
	printer *message.Printer
	known   map[string]struct{}
}

// NewLocalizer loads the embedded catalogs and returns a localizer for
// locale, falling back to en-US.
func NewLocalizer(locale string) (*Localizer, error) {
	paths, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}

	builder := catalog.NewBuilder(catalog.Fallback(language.AmericanEnglish))
	known := make(map[string]struct{})
	for _, entry := range paths {
		data, err := localeFS.ReadFile("locales/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", entry.Name(), err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse catalog %s: %w", entry.Name(), err)
		}
		tag, err := language.Parse(file.Locale)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: invalid locale %q: %w", entry.Name(), file.Locale, err)
		}
		keys := make([]string, 0, len(file.Messages))
		for key := range file.Messages {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			// Literal percent signs must not be read as verbs.
			text := strings.ReplaceAll(file.Messages[key], "%", "%%")
			if err := builder.SetString(tag, key, text); err != nil {
				return nil, fmt.Errorf("catalog %s: key %s: %w", entry.Name(), key, err)
			}
			known[key] = struct{}{}
		}
	}

	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	matcher := language.NewMatcher(builder.Languages())
	_, index, _ := matcher.Match(tag)
	matched := builder.Languages()[index]

	return &Localizer{
		printer: message.NewPrinter(matched, message.Catalog(builder)),
		known:   known,
	}, nil
}

// Localize renders key and replaces {name} placeholders from format. Unknown
// keys are returned verbatim.
func (l *Localizer) Localize(key string, format map[string]any) string {
	if _, ok := l.known[key]; !ok {
		return key
	}
	text := l.printer.Sprintf(key)
	for name, value := range format {
		text = strings.ReplaceAll(text, "{"+name+"}", fmt.Sprint(value))
	}
	return text
}
