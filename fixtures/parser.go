package fixtures

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/hairyhenderson/toml"
)

// oneShot is the wire schema shared by the TOML and YAML structured
// front-ends. Field-for-field it maps onto Run/Filesystem; unset optional
// fields keep the model defaults.
type oneShot struct {
	Bin            *binSpec    `toml:"bin" yaml:"bin"`
	Args           argList     `toml:"args" yaml:"args"`
	Env            Env         `toml:"env" yaml:"env"`
	StderrToStdout bool        `toml:"stderr-to-stdout" yaml:"stderr-to-stdout"`
	Status         *statusSpec `toml:"status" yaml:"status"`
	Binary         bool        `toml:"binary" yaml:"binary"`
	Timeout        *duration   `toml:"timeout" yaml:"timeout"`
	FS             Filesystem  `toml:"fs" yaml:"fs"`
}

func (o oneShot) toTestCase() *TestCase {
	run := Run{
		Args:           o.Args,
		Env:            o.Env,
		StderrToStdout: o.StderrToStdout,
		Binary:         o.Binary,
	}
	if o.Bin != nil {
		run.Bin = o.Bin.Bin
	}
	if o.Status != nil {
		run.Status = &o.Status.CommandStatus
	}
	if o.Timeout != nil {
		run.Timeout = o.Timeout.Duration
	}
	return &TestCase{Run: run, FS: o.FS}
}

// ParseTOML parses the structured TOML fixture syntax.
func ParseTOML(raw []byte) (*TestCase, error) {
	var spec oneShot
	if err := toml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse toml fixture: %w", err)
	}
	return spec.toTestCase(), nil
}

// ParseYAML parses the structured YAML fixture syntax, same field surface as
// the TOML one.
func ParseYAML(raw []byte) (*TestCase, error) {
	var spec oneShot
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse yaml fixture: %w", err)
	}
	return spec.toTestCase(), nil
}

// binSpec accepts `bin = {name = "x"}`, `bin = {path = "/x"}` or a bare
// string. A bare string containing a path separator is taken as a path,
// anything else as a name for the loader to resolve.
type binSpec struct {
	Bin
}

func binFromScalar(s string) Bin {
	if strings.ContainsRune(s, '/') {
		return BinFromPath(s)
	}
	return BinFromName(s)
}

func (b *binSpec) fromFields(name, path string) error {
	switch {
	case name != "" && path != "":
		return fmt.Errorf("bin.name and bin.path are mutually exclusive")
	case path != "":
		b.Bin = BinFromPath(path)
	case name != "":
		b.Bin = BinFromName(name)
	default:
		return fmt.Errorf("bin requires a name or a path")
	}
	return nil
}

func (b *binSpec) UnmarshalTOML(v any) error {
	switch value := v.(type) {
	case string:
		b.Bin = binFromScalar(value)
		return nil
	case map[string]any:
		name, _ := value["name"].(string)
		path, _ := value["path"].(string)
		return b.fromFields(name, path)
	default:
		return fmt.Errorf("bin must be a string or a {name|path} table, got %T", v)
	}
}

func (b *binSpec) UnmarshalYAML(raw []byte) error {
	var fields struct {
		Name string `yaml:"name"`
		Path string `yaml:"path"`
	}
	if err := yaml.Unmarshal(raw, &fields); err == nil && (fields.Name != "" || fields.Path != "") {
		return b.fromFields(fields.Name, fields.Path)
	}
	var s string
	if err := yaml.Unmarshal(raw, &s); err != nil || s == "" {
		return fmt.Errorf("bin must be a string or a {name|path} mapping")
	}
	b.Bin = binFromScalar(s)
	return nil
}

// statusSpec accepts a status name, a bare exit code, or `status.code = N`.
type statusSpec struct {
	CommandStatus
}

func (s *statusSpec) UnmarshalTOML(v any) error {
	switch value := v.(type) {
	case string:
		status, err := ParseCommandStatus(value)
		if err != nil {
			return err
		}
		s.CommandStatus = status
		return nil
	case int64:
		s.CommandStatus = CommandStatus{Kind: StatusCode, Code: int(value)}
		return nil
	case map[string]any:
		code, ok := value["code"].(int64)
		if !ok {
			return fmt.Errorf("status.code must be an integer")
		}
		s.CommandStatus = CommandStatus{Kind: StatusCode, Code: int(code)}
		return nil
	default:
		return fmt.Errorf("status must be a name, an exit code or {code = N}, got %T", v)
	}
}

func (s *statusSpec) UnmarshalYAML(raw []byte) error {
	var fields struct {
		Code *int `yaml:"code"`
	}
	if err := yaml.Unmarshal(raw, &fields); err == nil && fields.Code != nil {
		s.CommandStatus = CommandStatus{Kind: StatusCode, Code: *fields.Code}
		return nil
	}
	token := strings.TrimSpace(strings.Trim(strings.TrimSpace(string(raw)), `"'`))
	status, err := ParseCommandStatus(token)
	if err != nil {
		return err
	}
	s.CommandStatus = status
	return nil
}

// argList accepts either an explicit list of strings or a single shell-quoted
// string that is word-split.
type argList []string

func (a *argList) UnmarshalTOML(v any) error {
	switch value := v.(type) {
	case string:
		args, err := SplitArgs(value)
		if err != nil {
			return err
		}
		*a = args
		return nil
	case []any:
		args := make([]string, 0, len(value))
		for _, item := range value {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("args entries must be strings, got %T", item)
			}
			args = append(args, s)
		}
		*a = args
		return nil
	default:
		return fmt.Errorf("args must be a list or a shell-quoted string, got %T", v)
	}
}

func (a *argList) UnmarshalYAML(raw []byte) error {
	var list []string
	if err := yaml.Unmarshal(raw, &list); err == nil {
		*a = list
		return nil
	}
	var joined string
	if err := yaml.Unmarshal(raw, &joined); err != nil {
		return fmt.Errorf("args must be a list or a shell-quoted string")
	}
	args, err := SplitArgs(joined)
	if err != nil {
		return err
	}
	*a = args
	return nil
}

// duration parses human-friendly durations ("30s", "1m30s") from both
// front-ends.
type duration struct {
	time.Duration
}

func (d *duration) set(s string) error {
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d *duration) UnmarshalTOML(v any) error {
	switch value := v.(type) {
	case string:
		return d.set(value)
	case int64:
		d.Duration = time.Duration(value) * time.Second
		return nil
	default:
		return fmt.Errorf("timeout must be a duration string, got %T", v)
	}
}

func (d *duration) UnmarshalYAML(raw []byte) error {
	token := strings.Trim(strings.TrimSpace(string(raw)), `"'`)
	if secs, err := strconv.Atoi(token); err == nil {
		d.Duration = time.Duration(secs) * time.Second
		return nil
	}
	return d.set(token)
}
