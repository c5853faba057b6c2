package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Language is one supported language and its model codes.
type Language struct {
	Name       string `yaml:"-"`
	Seamless   string `yaml:"seamless"`
	Chatterbox string `yaml:"chatterbox"`
}

// Languages is the ordered language catalogue.
type Languages struct {
	list []Language
}

// LoadLanguagesFile reads a catalogue of the form
//
//	languages:
//	  Spanish: {seamless: spa, chatterbox: es}
func LoadLanguagesFile(path string) (*Languages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read languages %s: %w", path, err)
	}

	return ParseLanguages(data)
}

// ParseLanguages decodes a catalogue document, keeping document order.
func ParseLanguages(data []byte) (*Languages, error) {
	var doc struct {
		Languages yaml.Node `yaml:"languages"`
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse languages: %w", err)
	}

	langs := &Languages{}

	switch doc.Languages.Kind {
	case 0:
		return langs, nil
	case yaml.MappingNode:
	default:
		return nil, fmt.Errorf("parse languages: line %d: languages must be a mapping", doc.Languages.Line)
	}

	for i := 0; i+1 < len(doc.Languages.Content); i += 2 {
		lang := Language{Name: doc.Languages.Content[i].Value}
		if err := doc.Languages.Content[i+1].Decode(&lang); err != nil {
			return nil, fmt.Errorf("parse languages: %s: %w", lang.Name, err)
		}

		langs.list = append(langs.list, lang)
	}

	return langs, nil
}

// Names lists language names in catalogue order. English is left out
// unless includeEnglish is set.
func (l *Languages) Names(includeEnglish bool) []string {
	out := make([]string, 0, len(l.list))

	for _, lang := range l.list {
		if !includeEnglish && strings.EqualFold(lang.Name, "english") {
			continue
		}

		out = append(out, lang.Name)
	}

	return out
}

// SeamlessCode returns the translation model code for name, "eng" if unknown.
func (l *Languages) SeamlessCode(name string) string {
	if lang, ok := l.lookup(name); ok && lang.Seamless != "" {
		return lang.Seamless
	}

	return "eng"
}

// ChatterboxCode returns the synthesis model code for name, "en" if unknown.
func (l *Languages) ChatterboxCode(name string) string {
	if lang, ok := l.lookup(name); ok && lang.Chatterbox != "" {
		return lang.Chatterbox
	}

	return "en"
}

func (l *Languages) lookup(name string) (Language, bool) {
	for _, lang := range l.list {
		if lang.Name == name {
			return lang, true
		}
	}

	return Language{}, false
}
