// Package i18n хранит таблицы локализации интерфейса.
//
// Таблицы лежат в locales/*.yaml и встраиваются в бинарник. Ключ, которого
// нет в таблице, возвращается как есть.
package i18n

import (
	"embed"
	"fmt"
	"maps"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lang код языка.
type Lang string

// Поддерживаемые языки.
const (
	EN Lang = "en"
	VI Lang = "vi"
)

// Default язык по умолчанию.
const Default = EN

//go:embed locales/*.yaml
var locales embed.FS

// Catalog набор таблиц перевода по языкам.
type Catalog struct {
	tables map[Lang]map[string]string
}

// Load читает встроенные таблицы.
func Load() (*Catalog, error) {
	const op = "i18n.Load"
	c := &Catalog{tables: make(map[Lang]map[string]string)}
	for _, lang := range []Lang{EN, VI} {
		raw, err := locales.ReadFile(path.Join("locales", string(lang)+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		table := make(map[string]string)
		if err := yaml.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, lang, err)
		}
		c.tables[lang] = table
	}
	return c, nil
}

// MustLoad Load, паникующий при ошибке. Таблицы встроены, поэтому ошибка
// означает повреждённую сборку.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse приводит строку (например, значение Accept-Language) к поддерживаемому
// языку. Неизвестный язык даёт Default.
func Parse(s string) Lang {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, ",;-_"); i >= 0 {
		s = s[:i]
	}
	switch Lang(s) {
	case EN, VI:
		return Lang(s)
	default:
		return Default
	}
}

// T возвращает строку по ключу. Если перевода нет, возвращается сам ключ.
func (c *Catalog) T(lang Lang, key string) string {
	table, ok := c.tables[lang]
	if !ok {
		table = c.tables[Default]
	}
	if v, ok := table[key]; ok {
		return v
	}
	return key
}

// Table возвращает копию таблицы языка.
func (c *Catalog) Table(lang Lang) map[string]string {
	table, ok := c.tables[lang]
	if !ok {
		table = c.tables[Default]
	}
	return maps.Clone(table)
}
