// Package wordlist loads practice word lists and narrows them for drills.
package wordlist

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// BuiltinLang is the language shipped inside the binary.
const BuiltinLang = "en"

//go:embed en.txt
var builtinEnglish []byte

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return readWords(file)
}

// Builtin returns the embedded English list.
func Builtin() []string {
	words, err := readWords(bytes.NewReader(builtinEnglish))
	if err != nil {
		return nil
	}
	return words
}

// LoadForLang loads <dir>/<lang>.txt filtered for lang. English falls back to
// the built-in list when no file exists.
func LoadForLang(dir, lang string) ([]string, string, error) {
	path := filepath.Join(dir, lang+".txt")
	words, err := LoadWords(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && strings.EqualFold(lang, BuiltinLang):
		return Builtin(), "builtin:" + BuiltinLang, nil
	default:
		return nil, path, fmt.Errorf("failed to load word list %s: %w", path, err)
	}
	kept := Apply(words, ForLang(lang))
	if len(kept) == 0 {
		return nil, path, fmt.Errorf("word list %s has no usable words for %q", path, lang)
	}
	return kept, path, nil
}

// Langs lists languages with a word list in dir plus the built-in one.
func Langs(dir string) ([]string, error) {
	set := map[string]struct{}{BuiltinLang: {}}
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read wordlist directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		set[strings.TrimSuffix(name, ".txt")] = struct{}{}
	}
	langs := make([]string, 0, len(set))
	for lang := range set {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs, nil
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}
