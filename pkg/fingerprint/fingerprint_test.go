package fingerprint

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessKnownVectors(t *testing.T) {
	m := New()

	// cross-checked with sha256sum
	digest, size, err := m.Process(strings.NewReader(""))
	require.NoError(t, err)
	assert.EqualValues(t, 0, size)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", digest)

	digest, size, err = m.Process(strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.EqualValues(t, 11, size)
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", digest)
}

func TestChunkingDoesNotAffectDigest(t *testing.T) {
	content := strings.Repeat("0123456789abcdef", 1024)

	big, _, err := New().Process(strings.NewReader(content))
	require.NoError(t, err)
	small, _, err := New(ChunkSize(7)).Process(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, big, small)
}

func TestSingleByteSensitivity(t *testing.T) {
	content := []byte(strings.Repeat("stable content ", 100))
	m := New(ChunkSize(64))

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "data/file.bin", content, 0644))
	before, size, err := m.ProcessFile(fs, "data/file.bin")
	require.NoError(t, err)
	assert.EqualValues(t, len(content), size)

	for _, offset := range []int{0, len(content) / 2, len(content) - 1} {
		flipped := append([]byte(nil), content...)
		flipped[offset] ^= 0x01
		require.NoError(t, afero.WriteFile(fs, "data/file.bin", flipped, 0644))
		after, _, err := m.ProcessFile(fs, "data/file.bin")
		require.NoError(t, err)
		assert.NotEqual(t, before, after, "flipping byte %d must change the digest", offset)
	}
}

func TestProcessFileMissing(t *testing.T) {
	_, _, err := New().ProcessFile(afero.NewMemMapFs(), "data/nope")
	assert.Error(t, err)
}
