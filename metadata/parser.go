package metadata

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/iancoleman/strcase"
	"go.uber.org/zap"

	"github.com/chmenegatti/litemap/serializer"
)

// configCache stores resolved configurations per struct type. Completed
// entries are immutable; the RWMutex only guards the map itself. First-time
// resolution runs under the write lock with a double-check, so no two
// goroutines ever build and install distinct configurations for one type.
var (
	configCache = make(map[reflect.Type]*EntityConfig)
	cacheMu     sync.RWMutex

	logger = zap.NewNop()
)

var timeType = reflect.TypeOf(time.Time{})

// SetLogger installs a logger for descriptor-build debug output. Intended
// for configuration time, before concurrent Parse calls begin.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// Parse returns the mapping configuration for the model's struct type,
// building and caching it on first use. model may be a struct value or a
// pointer to one. Serializers resolve against serializer.Default at build
// time; evict the cached entry to observe later registry changes.
//
// Safe for concurrent use.
func Parse(model any) (*EntityConfig, error) {
	t, err := structTypeOf(model)
	if err != nil {
		return nil, err
	}

	cacheMu.RLock()
	cfg, ok := configCache[t]
	cacheMu.RUnlock()
	if ok {
		return cfg, nil
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cfg, ok = configCache[t]; ok {
		return cfg, nil
	}

	building := make(map[reflect.Type]*EntityConfig)
	cfg, err = build(t, building)
	if err != nil {
		return nil, err
	}
	// A build can pull in foreign target entities; install them all.
	for bt, bc := range building {
		configCache[bt] = bc
	}
	return cfg, nil
}

// ClearCache drops every cached configuration. Test helper.
func ClearCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	configCache = make(map[reflect.Type]*EntityConfig)
}

// Evict drops the cached configuration for one model type, forcing the next
// Parse to re-resolve serializers against the current registry contents.
func Evict(model any) error {
	t, err := structTypeOf(model)
	if err != nil {
		return err
	}
	cacheMu.Lock()
	defer cacheMu.Unlock()
	delete(configCache, t)
	return nil
}

func structTypeOf(model any) (reflect.Type, error) {
	if model == nil {
		return nil, fmt.Errorf("metadata: model must be a struct or pointer to struct, got nil")
	}
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("metadata: model must be a struct or pointer to struct, got %s", t.Kind())
	}
	return t, nil
}

// indexDecl is one index/unique tag occurrence, kept in field declaration
// order so grouped composite indexes preserve column order.
type indexDecl struct {
	name   string
	unique bool
	field  *FieldConfig
}

// build resolves the configuration for t. Caller holds the cache write lock.
//
// building marks every entity on the current resolution stack. Foreign
// resolution is deferred until all fields of an entity are parsed, so
// mutually-referencing entities find each other's primary key through the
// in-progress entry instead of recursing forever.
func build(t reflect.Type, building map[reflect.Type]*EntityConfig) (*EntityConfig, error) {
	if cfg, ok := configCache[t]; ok {
		return cfg, nil
	}
	if cfg, ok := building[t]; ok {
		return cfg, nil
	}

	cfg := &EntityConfig{
		Name:           tableNameFor(t),
		Type:           t,
		FieldsByColumn: make(map[string]*FieldConfig),
	}
	building[t] = cfg
	logger.Debug("building entity configuration",
		zap.String("entity", cfg.Name),
		zap.String("type", t.String()))

	var decls []indexDecl
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Tag.Get("litemap") == "-" {
			continue
		}
		fc, fieldDecls, err := parseField(cfg, field, i)
		if err != nil {
			return nil, err
		}
		if _, dup := cfg.FieldsByColumn[fc.ColumnName]; dup {
			return nil, configErrorf(cfg.Name, fc.FieldName, nil, "duplicate column name %q", fc.ColumnName)
		}
		if fc.IsID {
			if cfg.pk != nil {
				return nil, configErrorf(cfg.Name, fc.FieldName, nil, "entity declares more than one primary key")
			}
			cfg.pk = fc
		}
		cfg.Fields = append(cfg.Fields, fc)
		cfg.FieldsByColumn[fc.ColumnName] = fc
		decls = append(decls, fieldDecls...)
	}

	for _, fc := range cfg.Fields {
		if !fc.IsForeign {
			continue
		}
		if err := resolveForeign(cfg, fc, building); err != nil {
			return nil, err
		}
	}

	if err := buildConstraints(cfg, decls); err != nil {
		return nil, err
	}
	return cfg, nil
}

func tableNameFor(t reflect.Type) string {
	if tn, ok := reflect.New(t).Interface().(TableNamer); ok {
		return tn.TableName()
	}
	return strcase.ToSnake(t.Name()) + "s"
}

// parseField reads one struct field's litemap tag into a FieldConfig and the
// index declarations it contributes.
func parseField(cfg *EntityConfig, field reflect.StructField, idx int) (*FieldConfig, []indexDecl, error) {
	fc := &FieldConfig{
		Entity:     cfg,
		FieldName:  field.Name,
		FieldIndex: idx,
		FieldType:  field.Type,
		ColumnName: strcase.ToSnake(field.Name),
		Nullable:   field.Type.Kind() == reflect.Pointer,
	}

	var (
		decls            []indexDecl
		kindOverride     serializer.Kind
		columnSet        bool
		explicitNullable bool
		explicitNotNull  bool
	)

	for _, opt := range strings.Split(field.Tag.Get("litemap"), ";") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		var key, value string
		parts := strings.SplitN(opt, ":", 2)
		key = strings.ToLower(strings.TrimSpace(parts[0]))
		if len(parts) == 2 {
			value = strings.TrimSpace(parts[1])
		}

		switch key {
		case "column":
			fc.ColumnName = value
			columnSet = true
		case "primarykey", "pk":
			fc.IsID = true
		case "autoincrement":
			fc.IsID = true
			fc.IsGeneratedID = true
		case "nullable":
			explicitNullable = true
		case "notnull":
			explicitNotNull = true
		case "default":
			dv := value
			fc.DefaultValue = &dv
		case "unique", "uniqueindex":
			decls = append(decls, indexDecl{name: value, unique: true, field: fc})
		case "index":
			decls = append(decls, indexDecl{name: value, unique: false, field: fc})
		case "foreign":
			fc.IsForeign = true
		case "ondelete":
			a, err := parseAction(value)
			if err != nil {
				return nil, nil, configErrorf(cfg.Name, field.Name, err, "invalid onDelete action %q", value)
			}
			fc.OnDelete = a
		case "onupdate":
			a, err := parseAction(value)
			if err != nil {
				return nil, nil, configErrorf(cfg.Name, field.Name, err, "invalid onUpdate action %q", value)
			}
			fc.OnUpdate = a
		case "enum":
			if value != "integer" {
				return nil, nil, configErrorf(cfg.Name, field.Name, nil, "unknown enum storage %q (only \"integer\")", value)
			}
			kindOverride = serializer.KindEnumAsInteger
		case "date":
			switch value {
			case "timestamp":
				kindOverride = serializer.KindDateAsTimestamp
			case "string":
				kindOverride = serializer.KindDateAsString
			default:
				return nil, nil, configErrorf(cfg.Name, field.Name, nil, "unknown date storage %q", value)
			}
		default:
			return nil, nil, configErrorf(cfg.Name, field.Name, nil, "unknown tag option %q", key)
		}
	}

	if explicitNullable && explicitNotNull {
		return nil, nil, configErrorf(cfg.Name, field.Name, nil, "both nullable and notnull declared")
	}
	if explicitNullable {
		if field.Type.Kind() != reflect.Pointer {
			return nil, nil, configErrorf(cfg.Name, field.Name, nil, "value field cannot represent NULL; use a pointer type")
		}
		fc.Nullable = true
	}
	if explicitNotNull {
		fc.Nullable = false
	}
	if fc.IsID {
		// Primary keys never admit NULL regardless of tags or pointer-ness.
		fc.Nullable = false
	}

	if fc.IsForeign {
		if fc.IsID {
			return nil, nil, configErrorf(cfg.Name, field.Name, nil, "foreign field cannot be the primary key")
		}
		if !columnSet {
			fc.ColumnName = strcase.ToSnake(field.Name) + "_id"
		}
		// Serializer and kind come from the target's primary key later.
		return fc, decls, nil
	}

	if err := resolveSerializer(fc, kindOverride); err != nil {
		return nil, nil, err
	}
	return fc, decls, nil
}

func resolveSerializer(fc *FieldConfig, kindOverride serializer.Kind) error {
	baseType := fc.FieldType
	for baseType.Kind() == reflect.Pointer {
		baseType = baseType.Elem()
	}

	if kindOverride != serializer.KindUnknown {
		switch kindOverride {
		case serializer.KindDateAsTimestamp, serializer.KindDateAsString:
			if baseType != timeType {
				return configErrorf(fc.Entity.Name, fc.FieldName, nil, "date storage requires a time.Time field, got %s", fc.FieldType)
			}
		case serializer.KindEnumAsInteger:
			switch baseType.Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			default:
				return configErrorf(fc.Entity.Name, fc.FieldName, nil, "enum:integer requires an integer-based type, got %s", fc.FieldType)
			}
		}
		fc.Kind = kindOverride
		// A custom or library registration still wins over the tag override.
		if s := serializer.Default.Lookup(fc.FieldType); s != nil {
			fc.Serializer = s
		} else {
			fc.Serializer = serializer.ForKind(kindOverride, fc.FieldType)
		}
		return nil
	}

	s, err := serializer.Default.Resolve(fc.FieldType, true)
	if err != nil {
		return configErrorf(fc.Entity.Name, fc.FieldName, err, "no serializer for type %s", fc.FieldType)
	}
	fc.Serializer = s
	// Kind may stay Unknown for custom/library serializers; statement
	// generation reads the storage type off the serializer itself.
	fc.Kind, _ = serializer.KindOf(fc.FieldType, true)
	return nil
}

func resolveForeign(cfg *EntityConfig, fc *FieldConfig, building map[reflect.Type]*EntityConfig) error {
	target := fc.FieldType
	for target.Kind() == reflect.Pointer {
		target = target.Elem()
	}
	if target.Kind() != reflect.Struct {
		return configErrorf(cfg.Name, fc.FieldName, nil, "foreign field must reference an entity struct, got %s", fc.FieldType)
	}
	targetCfg, err := build(target, building)
	if err != nil {
		return err
	}
	pk := targetCfg.pk
	if pk == nil {
		return configErrorf(cfg.Name, fc.FieldName, nil, "foreign target %q has no primary key", targetCfg.Name)
	}
	fc.Foreign = pk
	fc.Serializer = pk.Serializer
	fc.Kind = pk.Kind
	return nil
}

func parseAction(value string) (OnAction, error) {
	switch strings.ToLower(strings.ReplaceAll(value, "_", "")) {
	case "", "noaction":
		return NoAction, nil
	case "restrict":
		return Restrict, nil
	case "setnull":
		return SetNull, nil
	case "setdefault":
		return SetDefault, nil
	case "cascade":
		return Cascade, nil
	}
	return NoAction, fmt.Errorf("unknown referential action %q", value)
}

// buildConstraints groups index declarations by name, appends the model's
// declared composite unique constraints, and validates the result.
func buildConstraints(cfg *EntityConfig, decls []indexDecl) error {
	named := make(map[string]*IndexConstraintConfig)
	for _, d := range decls {
		name := d.name
		if name == "" {
			name = fmt.Sprintf("idx_%s_%s", cfg.Name, d.field.ColumnName)
		}
		if c, ok := named[name]; ok {
			if c.Unique != d.unique {
				return configErrorf(cfg.Name, d.field.FieldName, nil, "index %q mixes unique and non-unique declarations", name)
			}
			c.Fields = append(c.Fields, d.field)
			continue
		}
		c := &IndexConstraintConfig{
			Entity: cfg,
			Name:   name,
			Unique: d.unique,
			Fields: []*FieldConfig{d.field},
		}
		named[name] = c
		cfg.Constraints = append(cfg.Constraints, c)
	}

	if cp, ok := reflect.New(cfg.Type).Interface().(ConstraintsProvider); ok {
		for _, spec := range cp.UniqueConstraints() {
			if len(spec.Columns) == 0 {
				return configErrorf(cfg.Name, "", nil, "unique constraint %q has no columns", spec.Name)
			}
			fields := make([]*FieldConfig, 0, len(spec.Columns))
			for _, col := range spec.Columns {
				f, ok := cfg.FieldsByColumn[col]
				if !ok {
					return configErrorf(cfg.Name, "", nil, "unique constraint %q references unknown column %q", spec.Name, col)
				}
				fields = append(fields, f)
			}
			name := spec.Name
			if name == "" {
				name = fmt.Sprintf("idx_%s_%s", cfg.Name, strings.Join(spec.Columns, "_"))
			}
			if _, dup := named[name]; dup {
				return configErrorf(cfg.Name, "", nil, "duplicate index name %q", name)
			}
			c := &IndexConstraintConfig{Entity: cfg, Name: name, Unique: true, Fields: fields}
			named[name] = c
			cfg.Constraints = append(cfg.Constraints, c)
		}
	}

	for _, c := range cfg.Constraints {
		if c.SingleField() {
			// A field can carry several single-field constraints; the unique
			// one must win so the inline UNIQUE token survives.
			f := c.Fields[0]
			if f.IndexConstraint == nil || (c.Unique && !f.IndexConstraint.Unique) {
				f.IndexConstraint = c
			}
		}
		for _, f := range c.Fields {
			if f.IsGeneratedID {
				return configErrorf(cfg.Name, f.FieldName, nil, "generated primary key cannot be part of index %q", c.Name)
			}
		}
	}
	return nil
}
