package tinypeg

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config map[string]*cfgVal

// NewConfig creates a new configuration object primed with all the
// default values expected by the matcher.
func NewConfig() *Config {
	m := make(Config)
	// check for undefined rules before matching instead of when
	// they're first referenced
	m.SetBool("grammar.validate", false)
	// cache the result of each rule per input position
	m.SetBool("parser.memoize", true)
	// skip whitespace at rule entry and after terminals
	m.SetBool("parser.skip_spaces", true)
	// attach the farthest failure to trailing input errors
	m.SetBool("parser.show_fails", true)
	// log each rule entry and exit at debug level
	m.SetBool("parser.trace", false)
	// how deep function calls can nest when running programs
	m.SetInt("interp.max_depth", 512)
	return &m
}

// Debug writes all the settings, sorted by key, to `w`
func (c *Config) Debug(w io.Writer) {
	fmt.Fprintln(w, "Configuration")

	keys := c.Keys()
	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}

	for _, k := range keys {
		fmt.Fprintf(w, "%s%s : %s\n", k, strings.Repeat(" ", width-len(k)), (*c)[k].String())
	}
}

// Keys returns the name of every setting, sorted
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(*c))
	for k := range *c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadTOML overrides settings with the values found in the TOML
// document read from `r`.  Tables map to the dotted prefix of the
// keys, so `[parser] memoize = false` sets `parser.memoize`.  Keys
// that aren't known, or values of the wrong type, are errors.
func (c *Config) LoadTOML(r io.Reader) error {
	var doc map[string]any
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("can't decode config: %w", err)
	}
	return c.load("", doc)
}

// LoadTOMLFile is a shortcut for opening `path` and calling LoadTOML
func (c *Config) LoadTOMLFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := c.LoadTOML(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (c *Config) load(prefix string, doc map[string]any) error {
	for key, raw := range doc {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if table, ok := raw.(map[string]any); ok {
			if err := c.load(path, table); err != nil {
				return err
			}
			continue
		}
		current, ok := (*c)[path]
		if !ok {
			return fmt.Errorf("unknown setting `%s`", path)
		}
		switch v := raw.(type) {
		case bool:
			if current.typ != cfgValType_Bool {
				return fmt.Errorf("setting `%s` expects %s, got bool", path, current.typ)
			}
			c.SetBool(path, v)
		case int64:
			if current.typ != cfgValType_Int {
				return fmt.Errorf("setting `%s` expects %s, got int", path, current.typ)
			}
			c.SetInt(path, int(v))
		case string:
			if current.typ != cfgValType_String {
				return fmt.Errorf("setting `%s` expects %s, got string", path, current.typ)
			}
			c.SetString(path, v)
		default:
			return fmt.Errorf("setting `%s` has unsupported type %T", path, raw)
		}
	}
	return nil
}

type cfgValType int

const (
	cfgValType_Undefined cfgValType = iota
	cfgValType_Bool
	cfgValType_Int
	cfgValType_String
)

func (vt cfgValType) String() string {
	switch vt {
	case cfgValType_Bool:
		return "bool"
	case cfgValType_Int:
		return "int"
	case cfgValType_String:
		return "string"
	}
	return "undefined"
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asString string
}

// assignType is mostly for preventing programming errors
func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValType_Undefined {
		panic(fmt.Sprintf("Can't assign `%s` to type `%s`", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("Can't retrieve `%s` from `%s` variable", vt, v.typ))
	}
}

func (v *cfgVal) String() string {
	switch v.typ {
	case cfgValType_Bool:
		return fmt.Sprintf("%t (bool)", v.asBool)
	case cfgValType_Int:
		return fmt.Sprintf("%d (int)", v.asInt)
	case cfgValType_String:
		return fmt.Sprintf("%s (string)", v.asString)
	case cfgValType_Undefined:
		return "(undefined)"
	default:
		panic(fmt.Sprintf("unknown cfgVal type: %v", v.typ))
	}
}

func (c *Config) SetBool(path string, v bool) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_Bool)
	(*c)[path].asBool = v
}

func (c *Config) SetInt(path string, v int) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_Int)
	(*c)[path].asInt = v
}

func (c *Config) SetString(path string, v string) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValType_String)
	(*c)[path].asString = v
}

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Bool)
		return val.asBool
	}
	panic(fmt.Sprintf("Bool setting `%s` does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Int)
		return val.asInt
	}
	panic(fmt.Sprintf("Int setting `%s` does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_String)
		return val.asString
	}
	panic(fmt.Sprintf("String setting `%s` does not exist", path))
}
