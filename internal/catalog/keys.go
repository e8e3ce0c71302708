package catalog

// Field names used in the generic tree form of every entity and as
// relational column names.
const (
	FieldID            = "id"
	FieldName          = "name"
	FieldFormatVersion = "format_version"
	FieldGeneration    = "generation"

	FieldNamespace = "namespace"
	FieldTuples    = "tuples"
	FieldColumns   = "columns"

	FieldTableID           = "table_id"
	FieldOrdinalPosition   = "ordinal_position"
	FieldDataTypeID        = "data_type_id"
	FieldNullable          = "nullable"
	FieldDefaultExpression = "default_expression"

	FieldColumnStatistic = "column_statistic"

	FieldOwnerID            = "owner_id"
	FieldAccessMethod       = "access_method"
	FieldIsUnique           = "is_unique"
	FieldIsPrimary          = "is_primary"
	FieldNumberOfColumns    = "number_of_columns"
	FieldNumberOfKeyColumns = "number_of_key_columns"
	FieldKeys               = "keys"
	FieldKeysID             = "keys_id"
	FieldOptions            = "options"

	FieldPgDataType              = "pg_data_type"
	FieldPgDataTypeName          = "pg_data_type_name"
	FieldPgDataTypeQualifiedName = "pg_data_type_qualified_name"
)

// Key selects the field a lookup matches on.
type Key string

const (
	KeyID   Key = FieldID
	KeyName Key = FieldName
)

// NotFound returns the not-found error matching the lookup key.
func (k Key) NotFound() error {
	switch k {
	case KeyID:
		return ErrIDNotFound
	case KeyName:
		return ErrNameNotFound
	default:
		return ErrNotFound
	}
}

// Validate reports ErrNotSupported for keys other than id and name.
func (k Key) Validate() error {
	if k != KeyID && k != KeyName {
		return Errorf(ErrNotSupported, "unsupported lookup key %q", string(k))
	}
	return nil
}
