package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageFromFileName(t *testing.T) {
	tests := []struct {
		fileName string
		expected Language
	}{
		{"app.js", LanguageJavaScript},
		{"component.jsx", LanguageJavaScript},
		{"server.ts", LanguageTypeScript},
		{"view.tsx", LanguageTypeScript},
		{"script.py", LanguagePython},
		{"Main.java", LanguageJava},
		{"Program.cs", LanguageCSharp},
		{"main.go", LanguageGo},
		{"lib.rs", LanguageRust},
		{"index.html", LanguageHTML},
		{"style.css", LanguageCSS},
		{"schema.sql", LanguageSQL},
		{"config.json", LanguageJSON},
		{"UPPER.GO", LanguageGo},
		{"archive.tar.gz", LanguageAuto},
		{"README", LanguageAuto},
		{"noext.", LanguageAuto},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.expected, LanguageFromFileName(tt.fileName),
				"Extension mapping should be deterministic")
		})
	}
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, LanguageGo, ParseLanguage("go"))
	assert.Equal(t, LanguageGo, ParseLanguage("  GO  "), "Parsing should trim and lowercase")
	assert.Equal(t, LanguageCSharp, ParseLanguage("csharp"))
	assert.Equal(t, LanguageAuto, ParseLanguage("auto"))
	assert.Equal(t, LanguageAuto, ParseLanguage("cobol"), "Unknown tags fall back to auto")
	assert.Equal(t, LanguageAuto, ParseLanguage(""))
}

func TestIsSupported(t *testing.T) {
	for _, lang := range SupportedLanguages {
		assert.True(t, lang.IsSupported(), "%s should be supported", lang)
	}

	assert.False(t, LanguageAuto.IsSupported(), "auto is a pseudo-tag, not a reviewable language")
	assert.False(t, Language("cobol").IsSupported())
	assert.False(t, Language("").IsSupported())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "C#", LanguageCSharp.DisplayName())
	assert.Equal(t, "JavaScript", LanguageJavaScript.DisplayName())
	assert.Equal(t, "Auto-detect", LanguageAuto.DisplayName())
	assert.Equal(t, "cobol", Language("cobol").DisplayName(), "Unknown tags display as-is")
}
