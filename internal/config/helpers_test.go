package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `# OCR settings
OCR_TEST_PLAIN=plain
OCR_TEST_DOUBLE="double quoted"
OCR_TEST_SINGLE='single quoted'
export OCR_TEST_EXPORTED=exported
OCR_TEST_EQUALS=a=b
OCR_TEST_PRESET=from-file
not a pair
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0644))

	keys := []string{"OCR_TEST_PLAIN", "OCR_TEST_DOUBLE", "OCR_TEST_SINGLE", "OCR_TEST_EXPORTED", "OCR_TEST_EQUALS"}
	for _, key := range keys {
		os.Unsetenv(key)
	}
	t.Cleanup(func() {
		for _, key := range keys {
			os.Unsetenv(key)
		}
	})
	t.Setenv("OCR_TEST_PRESET", "from-env")

	require.NoError(t, LoadEnvFile(envFile))

	assert.Equal(t, "plain", os.Getenv("OCR_TEST_PLAIN"))
	assert.Equal(t, "double quoted", os.Getenv("OCR_TEST_DOUBLE"))
	assert.Equal(t, "single quoted", os.Getenv("OCR_TEST_SINGLE"))
	assert.Equal(t, "exported", os.Getenv("OCR_TEST_EXPORTED"))
	assert.Equal(t, "a=b", os.Getenv("OCR_TEST_EQUALS"))
	assert.Equal(t, "from-env", os.Getenv("OCR_TEST_PRESET"))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestUnquote(t *testing.T) {
	tests := map[string]string{
		`"x"`:  "x",
		`'x'`:  "x",
		`"x'`:  `"x'`,
		`"`:    `"`,
		``:     ``,
		`a"b"`: `a"b"`,
	}
	for input, want := range tests {
		assert.Equal(t, want, unquote(input), input)
	}
}
