package screen

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// DeepLinkScheme is the URL scheme accepted by ParseDeepLink.
const DeepLinkScheme = "voyage"

var (
	// ErrUnknownScreen indicates a serialized configuration names a screen
	// type this build does not know.
	ErrUnknownScreen = errors.New("unknown screen type")

	// ErrInvalidDeepLink indicates a link could not be parsed into a screen.
	ErrInvalidDeepLink = errors.New("invalid deep link")
)

type envelope struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Marshal encodes a configuration as a tagged JSON envelope:
//
//	{"type":"city_details","params":{"cityId":"42","cityName":"Goa"}}
//
// Parameterless screens omit params.
func Marshal(c Config) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("screen: marshal: %w", ErrUnknownScreen)
	}
	env := envelope{Type: c.Kind().String()}
	if hasParams(c) {
		params, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("screen: marshal %s: %w", c.Kind(), err)
		}
		env.Params = params
	}
	return json.Marshal(env)
}

// Unmarshal decodes a configuration produced by Marshal.
func Unmarshal(data []byte) (Config, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("screen: unmarshal: %w", err)
	}
	return decode(env)
}

func decode(env envelope) (Config, error) {
	kind, ok := ParseKind(env.Type)
	if !ok {
		return nil, fmt.Errorf("screen: %q: %w", env.Type, ErrUnknownScreen)
	}
	target, _ := zero(kind)
	if len(env.Params) > 0 && !bytes.Equal(env.Params, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(env.Params))
		dec.DisallowUnknownFields()
		if err := dec.Decode(target); err != nil {
			return nil, fmt.Errorf("screen: decode %s params: %w", kind, err)
		}
	}
	// zero hands out pointers so the decoder can fill them; configurations
	// themselves are always plain values.
	return reflect.ValueOf(target).Elem().Interface().(Config), nil
}

func hasParams(c Config) bool {
	t := reflect.TypeOf(c)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct && t.NumField() > 0
}

// DeepLink renders a configuration as a link such as
//
//	voyage://city_details?params=eyJjaXR5SWQiOiI0MiJ9
//
// where params is the base64url encoding of the JSON parameters.
func DeepLink(c Config) (string, error) {
	if c == nil {
		return "", fmt.Errorf("screen: deep link: %w", ErrUnknownScreen)
	}
	u := url.URL{Scheme: DeepLinkScheme, Host: c.Kind().String()}
	if hasParams(c) {
		params, err := json.Marshal(c)
		if err != nil {
			return "", fmt.Errorf("screen: deep link %s: %w", c.Kind(), err)
		}
		q := url.Values{}
		q.Set("params", base64.RawURLEncoding.EncodeToString(params))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// ParseDeepLink parses a link produced by DeepLink.
func ParseDeepLink(link string) (Config, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return nil, fmt.Errorf("screen: %w: %v", ErrInvalidDeepLink, err)
	}
	if u.Scheme != DeepLinkScheme {
		return nil, fmt.Errorf("screen: %w: scheme %q", ErrInvalidDeepLink, u.Scheme)
	}

	name := u.Host
	if name == "" {
		name = strings.Trim(u.Path, "/")
	}

	env := envelope{Type: name}
	if raw := u.Query().Get("params"); raw != "" {
		params, err := base64.RawURLEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("screen: %w: params: %v", ErrInvalidDeepLink, err)
		}
		env.Params = params
	}
	return decode(env)
}
