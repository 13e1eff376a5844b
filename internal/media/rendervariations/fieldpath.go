package rendervariations

import (
	"errors"
	"fmt"
	"strings"
)

const fieldPathUsage = "<app.model.field app.model.field>"

// ErrNoFieldPaths is returned when the command is run without field paths.
var ErrNoFieldPaths = errors.New("at least one field path is required")

// FieldPath names an image field as app.Model.field.
type FieldPath struct {
	App   string
	Model string
	Field string
}

func (p FieldPath) String() string {
	return p.App + "." + p.Model + "." + p.Field
}

// ParseFieldPath accepts exactly three non-empty dot-separated segments.
func ParseFieldPath(s string) (FieldPath, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return FieldPath{}, &CommandError{
			Message: fmt.Sprintf("Error parsing field_path '%s'. Use format %s.", s, fieldPathUsage),
		}
	}
	return FieldPath{App: parts[0], Model: parts[1], Field: parts[2]}, nil
}

// ParseFieldPaths validates every argument before returning any of them.
func ParseFieldPaths(args []string) ([]FieldPath, error) {
	if len(args) == 0 {
		return nil, ErrNoFieldPaths
	}
	out := make([]FieldPath, 0, len(args))
	for _, a := range args {
		p, err := ParseFieldPath(a)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
