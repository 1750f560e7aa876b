package cli

import (
	"testing"

	"github.com/alexanderramin/dropdown/internal/cli/formatter"
	"github.com/stretchr/testify/assert"
)

func TestRequireValue(t *testing.T) {
	assert.ErrorIs(t, requireValue(""), errEmptyInput)
	assert.ErrorIs(t, requireValue("   "), errEmptyInput)
	assert.NoError(t, requireValue("Floor 1"))
}

func TestNewInputForm(t *testing.T) {
	var name string
	form := newInputForm("Name of the new Location", &name)
	assert.NotNil(t, form)
	assert.Equal(t, formatter.ColorHeader, huhTheme().Focused.Title.GetForeground())
}
