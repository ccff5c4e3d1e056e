package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("1.0")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 1, Minor: 0}, v)

	v, err = ParseVersion("2.13")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 2, Minor: 13}, v)

	for _, bad := range []string{"", "1", "1.2.3", "a.b", "1.", "-1.0", "1.0-pre"} {
		_, err = ParseVersion(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestVersionOrdering(t *testing.T) {
	assert.True(t, Version{Major: 2, Minor: 0}.Newer(Version{Major: 1, Minor: 9}))
	assert.True(t, Version{Major: 1, Minor: 1}.Newer(Version{Major: 1, Minor: 0}))
	assert.False(t, Version{Major: 1, Minor: 0}.Newer(Version{Major: 1, Minor: 0}))
	assert.False(t, Version{Major: 1, Minor: 0}.Newer(Version{Major: 1, Minor: 1}))
	assert.False(t, Version{Major: 1, Minor: 9}.Newer(Version{Major: 2, Minor: 0}))
}

func TestVersionJSON(t *testing.T) {
	b, err := Version{Major: 1, Minor: 4}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1.4"`, string(b))

	var v Version
	require.NoError(t, v.UnmarshalJSON([]byte(`"3.2"`)))
	assert.Equal(t, Version{Major: 3, Minor: 2}, v)

	assert.Error(t, v.UnmarshalJSON([]byte(`3.2`)))
	assert.Error(t, v.UnmarshalJSON([]byte(`"3"`)))
}
