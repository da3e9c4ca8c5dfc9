package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_T(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Risk Check", c.T(EN, "nav.riskCheck"))
	assert.Equal(t, "Kiểm tra rủi ro", c.T(VI, "nav.riskCheck"))
	assert.Equal(t, "Don't have an account?", c.T(EN, "auth.dontHaveAccount"))
	assert.Equal(t, "scans/month", c.T(EN, "pricing.scansPerMonth"))

	assert.Equal(t, "no.such.key", c.T(EN, "no.such.key"))
	assert.Equal(t, "no.such.key", c.T(VI, "no.such.key"))
	assert.Equal(t, "Home", c.T(Lang("de"), "nav.home"))
}

func TestTablesHaveSameKeys(t *testing.T) {
	c := MustLoad()
	en, vi := c.Table(EN), c.Table(VI)
	require.NotEmpty(t, en)
	assert.Len(t, vi, len(en))
	for key := range en {
		assert.Contains(t, vi, key)
	}
}

func TestTableIsCopy(t *testing.T) {
	c := MustLoad()
	table := c.Table(EN)
	table["nav.home"] = "changed"
	assert.Equal(t, "Home", c.T(EN, "nav.home"))
}

func TestParse(t *testing.T) {
	assert.Equal(t, VI, Parse("vi"))
	assert.Equal(t, VI, Parse("vi-VN,vi;q=0.9,en;q=0.8"))
	assert.Equal(t, EN, Parse("EN"))
	assert.Equal(t, EN, Parse("fr-FR"))
	assert.Equal(t, EN, Parse(""))
}
