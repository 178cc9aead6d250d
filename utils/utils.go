package utils

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/takoeight0821/shadergraph/token"
	"gopkg.in/yaml.v3"
)

// PosError attaches the location of a token to an error.
type PosError struct {
	Where token.Token
	Err   error
}

func (e PosError) Error() string {
	if e.Where.Kind == token.EOF {
		return fmt.Sprintf("%s: at end: %s", e.Where.Location, e.Err.Error())
	}
	return fmt.Sprintf("%s: `%s`, %s", e.Where.Location, e.Where.Lexeme, e.Err.Error())
}

func (e PosError) Unwrap() error {
	return e.Err
}

// ErrorAt wraps err with the location of where.
func ErrorAt(where token.Token, err error) error {
	return PosError{Where: where, Err: err}
}

type TestData struct {
	Label    string
	Enable   bool
	Input    string
	Expected map[string]string
}

// ReadTestData decodes a YAML list of test cases and drops the disabled ones.
func ReadTestData(s []byte) []TestData {
	var data []TestData
	if err := yaml.Unmarshal(s, &data); err != nil {
		panic(err)
	}

	// Remove disabled test cases.
	i := 0
	for _, d := range data {
		if d.Enable {
			data[i] = d
			i++
		}
	}
	data = data[:i]

	return data
}

// FindSourceFiles lists the shader sources (*.glsl) under root.
func FindSourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".glsl") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
