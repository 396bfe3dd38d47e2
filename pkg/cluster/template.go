// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package cluster

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/rand"
)

const (
	generateExpression = "expression"
	maxGeneratedLength = 255
)

var (
	// ${{NAME}} standing alone in a string is replaced by the parsed JSON value of the parameter
	rawParameterRef = regexp.MustCompile(`^\$\{\{([a-zA-Z0-9_]+)\}\}$`)
	rawParameterAny = regexp.MustCompile(`\$\{\{([a-zA-Z0-9_]+)\}\}`)
	parameterRef    = regexp.MustCompile(`\$\{([a-zA-Z0-9_]+)\}`)
	expressionRef   = regexp.MustCompile(`\[([^\]]+)\]\{([0-9]+)\}`)
)

// Parameter is a template parameter.
type Parameter struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	Value       string `json:"value,omitempty"`
	Generate    string `json:"generate,omitempty"`
	From        string `json:"from,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Template is an OpenShift template: a list of objects parameterised by ${NAME} references.
type Template struct {
	Metadata struct {
		Name string `json:"name,omitempty"`
	} `json:"metadata"`
	Objects    []map[string]interface{} `json:"objects"`
	Parameters []Parameter              `json:"parameters,omitempty"`
}

// ParseTemplate decodes a YAML or JSON template.
func ParseTemplate(data []byte) (*Template, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, err
	}
	value, err := decodeJSONValue(jsonData)
	if err != nil {
		return nil, err
	}
	content, ok := value.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("expected a template object, got %T", value)
	}
	if kind, _ := content["kind"].(string); kind != "" && kind != "Template" {
		return nil, errors.Errorf("expected a Template, got %s", kind)
	}
	var tpl Template
	tpl.Metadata.Name, _, _ = unstructured.NestedString(content, "metadata", "name")
	objects, _, _ := unstructured.NestedSlice(content, "objects")
	for _, obj := range objects {
		m, ok := obj.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("template %s: expected an object, got %T", tpl.Name(), obj)
		}
		tpl.Objects = append(tpl.Objects, m)
	}
	params, _, _ := unstructured.NestedSlice(content, "parameters")
	for _, param := range params {
		m, ok := param.(map[string]interface{})
		if !ok {
			continue
		}
		tpl.Parameters = append(tpl.Parameters, Parameter{
			Name:        stringField(m, "name"),
			DisplayName: stringField(m, "displayName"),
			Description: stringField(m, "description"),
			Value:       stringField(m, "value"),
			Generate:    stringField(m, "generate"),
			From:        stringField(m, "from"),
			Required:    m["required"] == true,
		})
	}
	return &tpl, nil
}

// stringField tolerates unquoted YAML scalars such as numbers and booleans.
func stringField(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (t *Template) Name() string {
	return t.Metadata.Name
}

// ParameterValues resolves the value of every template parameter.
// Explicit params take precedence over defaults, then generated values are used.
// Params the template does not declare are ignored.
func (t *Template) ParameterValues(params map[string]string) (map[string]string, error) {
	values := make(map[string]string, len(t.Parameters))
	var missing []string
	for _, p := range t.Parameters {
		value, provided := params[p.Name]
		if !provided {
			value = p.Value
			if value == "" && p.Generate == generateExpression {
				generated, err := GenerateValue(p.From)
				if err != nil {
					return nil, errors.Wrapf(err, "while generating parameter %s", p.Name)
				}
				value = generated
			}
		}
		if p.Required && value == "" {
			missing = append(missing, p.Name)
		}
		values[p.Name] = value
	}
	if len(missing) > 0 {
		return nil, errors.Errorf("template %s: missing required parameters: %s", t.Name(), strings.Join(missing, ", "))
	}
	return values, nil
}

// Process substitutes parameters in every object of the template.
func (t *Template) Process(params map[string]string) ([]*unstructured.Unstructured, error) {
	values, err := t.ParameterValues(params)
	if err != nil {
		return nil, err
	}
	objs := make([]*unstructured.Unstructured, 0, len(t.Objects))
	for _, obj := range t.Objects {
		content, ok := substitute(runtime.DeepCopyJSONValue(obj), values).(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("template %s: invalid object", t.Name())
		}
		objs = append(objs, &unstructured.Unstructured{Object: content})
	}
	return objs, nil
}

func substitute(value interface{}, values map[string]string) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		for k, item := range v {
			v[k] = substitute(item, values)
		}
		return v
	case []interface{}:
		for i, item := range v {
			v[i] = substitute(item, values)
		}
		return v
	case string:
		return substituteString(v, values)
	default:
		return v
	}
}

func substituteString(s string, values map[string]string) interface{} {
	if m := rawParameterRef.FindStringSubmatch(s); m != nil {
		if value, ok := values[m[1]]; ok {
			if parsed, err := decodeJSONValue([]byte(value)); err == nil {
				return parsed
			}
			return value
		}
	}
	replace := func(re *regexp.Regexp, s string) string {
		return re.ReplaceAllStringFunc(s, func(ref string) string {
			name := re.FindStringSubmatch(ref)[1]
			if value, ok := values[name]; ok {
				return value
			}
			return ref
		})
	}
	return replace(parameterRef, replace(rawParameterAny, s))
}

// GenerateValue expands an expression such as "[a-zA-Z0-9]{8}" into a random string.
// Supported classes are ranges, literal characters, \w, \d, \a and \A.
func GenerateValue(from string) (string, error) {
	var err error
	generated := expressionRef.ReplaceAllStringFunc(from, func(expr string) string {
		m := expressionRef.FindStringSubmatch(expr)
		length, convErr := strconv.Atoi(m[2])
		if convErr != nil || length > maxGeneratedLength {
			err = errors.Errorf("invalid length in %s", expr)
			return ""
		}
		charset, classErr := expandCharset(m[1])
		if classErr != nil {
			err = classErr
			return ""
		}
		var sb strings.Builder
		for i := 0; i < length; i++ {
			sb.WriteByte(charset[rand.Intn(len(charset))])
		}
		return sb.String()
	})
	return generated, err
}

const (
	alphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numerals  = "0123456789"
	symbols   = "~!@#$%^&*()-_+={}[]\\|<,>.?/\"';:`"
	wordChars = alphabet + numerals + "_"
)

func expandCharset(class string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(class); i++ {
		c := class[i]
		switch {
		case c == '\\' && i+1 < len(class):
			i++
			switch class[i] {
			case 'w':
				sb.WriteString(wordChars)
			case 'd':
				sb.WriteString(numerals)
			case 'a':
				sb.WriteString(alphabet)
			case 'A':
				sb.WriteString(symbols)
			default:
				sb.WriteByte(class[i])
			}
		case i+2 < len(class) && class[i+1] == '-':
			from, to := c, class[i+2]
			if from > to {
				return "", errors.Errorf("invalid range %c-%c", from, to)
			}
			for r := from; r <= to; r++ {
				sb.WriteByte(r)
				if r == 255 {
					break
				}
			}
			i += 2
		default:
			sb.WriteByte(c)
		}
	}
	if sb.Len() == 0 {
		return "", errors.Errorf("empty character class [%s]", class)
	}
	return sb.String(), nil
}
