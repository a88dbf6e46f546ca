package review

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// extensionTags is the fixed extension to language tag mapping used when a
// file is imported. Extensions outside this map fall through to go-enry.
var extensionTags = map[string]Language{
	".js":   LanguageJavaScript,
	".jsx":  LanguageJavaScript,
	".ts":   LanguageTypeScript,
	".tsx":  LanguageTypeScript,
	".py":   LanguagePython,
	".java": LanguageJava,
	".cs":   LanguageCSharp,
	".go":   LanguageGo,
	".rs":   LanguageRust,
	".html": LanguageHTML,
	".css":  LanguageCSS,
	".sql":  LanguageSQL,
	".json": LanguageJSON,
}

// enryTags normalizes go-enry's language names into the fixed tag set
var enryTags = map[string]Language{
	"JavaScript": LanguageJavaScript,
	"TypeScript": LanguageTypeScript,
	"Python":     LanguagePython,
	"Java":       LanguageJava,
	"C#":         LanguageCSharp,
	"Go":         LanguageGo,
	"Rust":       LanguageRust,
	"HTML":       LanguageHTML,
	"CSS":        LanguageCSS,
	"SQL":        LanguageSQL,
	"JSON":       LanguageJSON,
}

// LanguageFromFileName pre-selects a language tag from an uploaded file's
// name. Unrecognized extensions return LanguageAuto so the caller falls back
// to detection.
func LanguageFromFileName(name string) Language {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return LanguageAuto
	}

	if tag, ok := extensionTags[ext]; ok {
		return tag
	}

	// Aliases like .mjs or .pyw resolve through enry, then normalize back
	// into the fixed set
	if detected, ok := enry.GetLanguageByExtension(name); ok {
		if tag, found := enryTags[detected]; found {
			return tag
		}
	}

	return LanguageAuto
}

// languageTagList returns the supported tags joined for prompt interpolation
func languageTagList() string {
	tags := make([]string, len(SupportedLanguages))
	for i, lang := range SupportedLanguages {
		tags[i] = string(lang)
	}
	return strings.Join(tags, ", ")
}

// languageTagStrings returns the supported tags as plain strings, used when
// declaring enum schema fields
func languageTagStrings() []string {
	tags := make([]string, len(SupportedLanguages))
	for i, lang := range SupportedLanguages {
		tags[i] = string(lang)
	}
	return tags
}
