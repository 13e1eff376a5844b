// Package registry maps "app.Model.field" paths to gorm models and their
// image fields. A Registry is built once at startup and passed to whoever
// needs to resolve field paths.
package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"artist-media/internal/media/imagefield"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Binding ties an image field to the gorm model that stores it.
type Binding struct {
	App   string
	Model string
	Field *imagefield.Field

	model any
}

func (b *Binding) Path() string {
	return b.App + "." + b.Model + "." + b.Field.Name
}

// NewModel returns a pointer to a fresh zero value of the bound model.
func (b *Binding) NewModel() any {
	return reflect.New(reflect.Indirect(reflect.ValueOf(b.model)).Type()).Interface()
}

// withFile selects rows whose field column is neither NULL nor empty.
func (b *Binding) withFile(ctx context.Context, db *gorm.DB) *gorm.DB {
	col := clause.Column{Name: b.Field.Column}
	return db.WithContext(ctx).
		Model(b.NewModel()).
		Where("? IS NOT NULL", col).
		Where("? <> ?", col, "")
}

// Count returns the number of rows that have a file in the field.
func (b *Binding) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	if err := b.withFile(ctx, db).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", b.Path(), err)
	}
	return n, nil
}

// Each streams the stored file names of every row with a file, in primary
// key order, calling fn for each. It stops at the first error fn returns.
func (b *Binding) Each(ctx context.Context, db *gorm.DB, fn func(fileName string) error) error {
	rows, err := b.withFile(ctx, db).
		Select(b.Field.Column).
		Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: clause.PrimaryKey}}).
		Rows()
	if err != nil {
		return fmt.Errorf("query %s: %w", b.Path(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scan %s: %w", b.Path(), err)
		}
		if err := fn(name); err != nil {
			return err
		}
	}
	return rows.Err()
}

type Registry struct {
	bindings map[string]*Binding
}

func New() *Registry {
	return &Registry{bindings: make(map[string]*Binding)}
}

func key(app, model, field string) string {
	return app + "." + strings.ToLower(model) + "." + field
}

// Register binds field to model under app. model is a pointer to a gorm
// model value; its type name becomes the model segment of the field path.
func (r *Registry) Register(app string, model any, field *imagefield.Field) (*Binding, error) {
	t := reflect.TypeOf(model)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("register %s: model must be a pointer to a struct, got %T", app, model)
	}
	if field == nil || field.Name == "" || field.Storage == nil {
		return nil, fmt.Errorf("register %s.%s: field needs a name and a storage", app, t.Elem().Name())
	}
	if field.Column == "" {
		field.Column = field.Name
	}

	b := &Binding{App: app, Model: t.Elem().Name(), Field: field, model: model}
	k := key(app, b.Model, field.Name)
	if _, ok := r.bindings[k]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateField, b.Path())
	}
	r.bindings[k] = b
	return b, nil
}

func (r *Registry) MustRegister(app string, model any, field *imagefield.Field) *Binding {
	b, err := r.Register(app, model, field)
	if err != nil {
		panic(err)
	}
	return b
}

// Lookup resolves a field. Model names match case-insensitively.
func (r *Registry) Lookup(app, model, field string) (*Binding, error) {
	if b, ok := r.bindings[key(app, model, field)]; ok {
		return b, nil
	}

	appKnown, modelKnown := false, false
	for _, b := range r.bindings {
		if b.App != app {
			continue
		}
		appKnown = true
		if strings.EqualFold(b.Model, model) {
			modelKnown = true
		}
	}
	switch {
	case !appKnown:
		return nil, fmt.Errorf("%w: %s", ErrAppNotFound, app)
	case !modelKnown:
		return nil, fmt.Errorf("%w: %s.%s", ErrModelNotFound, app, model)
	default:
		return nil, fmt.Errorf("%w: %s.%s.%s", ErrFieldNotFound, app, model, field)
	}
}

// Resolve looks up a dotted "app.Model.field" path.
func (r *Registry) Resolve(path string) (*Binding, error) {
	parts := strings.Split(path, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q is not an app.Model.field path", ErrFieldNotFound, path)
	}
	return r.Lookup(parts[0], parts[1], parts[2])
}

// Bindings returns every binding sorted by path.
func (r *Registry) Bindings() []*Binding {
	out := make([]*Binding, 0, len(r.bindings))
	for _, b := range r.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path() < out[j].Path() })
	return out
}
