package app

import (
	"testing"

	"github.com/mbolis/survey-builder/config"
	"github.com/stretchr/testify/assert"
)

func TestShareUrl(t *testing.T) {
	for _, publicUrl := range []string{"https://surveys.example.org", "https://surveys.example.org/"} {
		app := App{Config: config.Config{PublicUrl: publicUrl}}
		assert.Equal(t, "https://surveys.example.org/s/abc", app.ShareUrl("abc"))
	}
}
