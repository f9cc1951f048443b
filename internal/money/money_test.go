package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "$0", Format(0))
	assert.Equal(t, "$950", Format(950))
	assert.Equal(t, "$2,500,000", Format(2500000))
	assert.Equal(t, "$1,234,567", Format(1234567.4))
}

func TestMillionsAndPercent(t *testing.T) {
	assert.Equal(t, "$2.6M", Millions(2618000))
	assert.Equal(t, "$0.0M", Millions(0))
	assert.Equal(t, "56.5%", Percent(56.45090909090909))
}
