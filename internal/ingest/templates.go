package ingest

import (
	"errors"
	"io/fs"
	"os"
)

type TemplateError struct {
	Msg string
	Err error
}

func (e *TemplateError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *TemplateError) Unwrap() error { return e.Err }

// LoadTemplate reads a prompt template verbatim. Placeholders are not
// inspected here.
func LoadTemplate(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &TemplateError{Msg: "Prompt template not found: " + path}
		}
		return "", &TemplateError{Msg: "Failed to load prompt template", Err: err}
	}
	return string(b), nil
}
