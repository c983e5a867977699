package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSeverity(t *testing.T) {
	assert.Equal(t, SeverityMedium, DefaultSeverity(TypeLoginFailed))
	assert.Equal(t, SeverityLow, DefaultSeverity(TypeTaskApproved))
	assert.Equal(t, SeverityHigh, DefaultSeverity(Type("mystery")))
}
