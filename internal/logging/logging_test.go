package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	l := NewLogger(FormatJSON, "debug")
	_, ok := l.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l = NewLogger("text", "nonsense")
	_, ok = l.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}
