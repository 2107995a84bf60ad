package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanWord(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "agua", CleanWord("  Agua "))
	assert.Equal(t, "adiós", CleanWord("ADIÓS"))
	assert.Empty(t, CleanWord(" \t "))
}

func TestCleanTranslations(t *testing.T) {
	t.Parallel()

	got := CleanTranslations([]string{" water ", "", "water", "  ", "the  water"})
	assert.Equal(t, []string{"water", "the water"}, got)

	assert.Empty(t, CleanTranslations(nil))
	assert.NotNil(t, CleanTranslations(nil))
}
