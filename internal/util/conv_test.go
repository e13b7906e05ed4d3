package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterDate(t *testing.T) {
	// 本地格式（月/日/年）优先，ISO 兜底
	got := ParseFilterDate("01/02/2014")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2014, 1, 2, 0, 0, 0, 0, time.UTC), *got)

	got = ParseFilterDate("2014-01-02")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2014, 1, 2, 0, 0, 0, 0, time.UTC), *got)

	for _, bad := range []string{"", "waaaaaaaaaaaaaaaaaaaaaaaaaah", "2014/01/02", "31/12/2014", "2014-13-40"} {
		assert.Nil(t, ParseFilterDate(bad), "input %q", bad)
	}
}

func TestNormalizePageNumber(t *testing.T) {
	assert.Equal(t, 1, NormalizePageNumber(""))
	assert.Equal(t, 1, NormalizePageNumber("Hello world!"))
	assert.Equal(t, 1, NormalizePageNumber("0"))
	assert.Equal(t, 1, NormalizePageNumber("-3"))
	assert.Equal(t, 1, NormalizePageNumber("1.5"))
	assert.Equal(t, 7, NormalizePageNumber("7"))
}
