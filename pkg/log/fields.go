package log

// Field is a single structured logging key/value pair.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a generic Field.
func F(key string, value interface{}) Field { return Field{Key: key, Value: value} }

// Str builds a string Field.
func Str(key, value string) Field { return Field{Key: key, Value: value} }

// Int builds an int Field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Err builds an error Field under the "error" key.
func Err(err error) Field { return Field{Key: "error", Value: err} }

// Component builds a Field tagging the emitting component.
func Component(name string) Field { return Field{Key: ComponentKey, Value: name} }
