package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextParser_Parse(t *testing.T) {
	parser := &TextParser{}

	assert.True(t, parser.Supports("notes.txt"))
	assert.True(t, parser.Supports("NOTES.TXT"))
	assert.False(t, parser.Supports("report.pdf"))

	text, err := parser.Parse(strings.NewReader("hello\nworld"), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", text)
}

func TestFileParserManager_Supports(t *testing.T) {
	manager := NewFileParserManager()

	assert.True(t, manager.Supports("a.txt"))
	assert.True(t, manager.Supports("b.pdf"))
	assert.True(t, manager.Supports("c.docx"))
	assert.False(t, manager.Supports("d.exe"))
	assert.False(t, manager.Supports("e"))
}

func TestFileParserManager_ParseFileUnsupported(t *testing.T) {
	manager := NewFileParserManager()

	_, err := manager.ParseFile(strings.NewReader("data"), "binary.exe")
	require.Error(t, err)

	var unsupported *ErrUnsupportedFormat
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "binary.exe", unsupported.Filename)
}

func TestFileParserManager_GetSupportedFormats(t *testing.T) {
	manager := NewFileParserManager()

	formats := manager.GetSupportedFormats()
	assert.ElementsMatch(t, []string{".txt", ".pdf", ".docx"}, formats)
}
