package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalize(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	data := map[string]interface{}{"Field": "name"}
	assert.Equal(t, "name is required", tr.Localize("FieldRequired", "fallback", data))
	assert.Equal(t, "name wajib diisi", tr.Localize("FieldRequired", "fallback", data, "id"))
	assert.Equal(t, "name is required", tr.Localize("FieldRequired", "fallback", data, "fr-FR"))
	assert.Equal(t, "fallback", tr.Localize("NoSuchMessage", "fallback", nil))
	assert.ElementsMatch(t, []string{"en", "id"}, tr.Languages())
}

func TestNew_BadLanguage(t *testing.T) {
	_, err := New("not a tag!")
	assert.Error(t, err)
}
