package internal

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Validatable is implemented by request types that validate themselves
// after binding. A non-nil error turns into a 400 response.
type Validatable interface {
	Validate() error
}

const maxFormMemory = 10 << 20 // 10 MB

func bindJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrBadRequest("empty request body")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return ErrBadRequest("invalid json body", WithError(err))
	}
	return validateBound(v)
}

func bindForm(r *http.Request, v any) error {
	if err := parseForm(r); err != nil {
		return ErrBadRequest("invalid form body", WithError(err))
	}
	if err := bindValues(r.Form, v, "form"); err != nil {
		return ErrBadRequest("invalid form data", WithError(err))
	}
	return validateBound(v)
}

func bindQuery(r *http.Request, v any) error {
	if err := bindValues(r.URL.Query(), v, "query"); err != nil {
		return ErrBadRequest("invalid query parameters", WithError(err))
	}
	return validateBound(v)
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

func validateBound(v any) error {
	if val, ok := v.(Validatable); ok {
		if err := val.Validate(); err != nil {
			return ErrBadRequest("validation failed", WithError(err))
		}
	}
	return nil
}

// bindValues decodes url.Values into a struct pointer using the given
// struct tag, falling back to the lowercased field name. Missing values
// leave fields untouched.
func bindValues(values url.Values, v any, tag string) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("binding destination must be a non-nil pointer")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return errors.New("binding destination must point to a struct")
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := rv.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindValues(values, fv.Addr().Interface(), tag); err != nil {
				return err
			}
			continue
		}
		name := field.Tag.Get(tag)
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(field.Name)
		} else if j := strings.IndexByte(name, ','); j >= 0 {
			name = name[:j]
		}
		vals, ok := values[name]
		if !ok || len(vals) == 0 {
			continue
		}
		if err := setField(fv, vals); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

func setField(fv reflect.Value, vals []string) error {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv = fv.Elem()
	}
	if fv.CanAddr() {
		if u, ok := fv.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return u.UnmarshalText([]byte(vals[0]))
		}
	}
	if fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() != reflect.Uint8 {
		out := reflect.MakeSlice(fv.Type(), len(vals), len(vals))
		for i, s := range vals {
			if err := setScalar(out.Index(i), s); err != nil {
				return err
			}
		}
		fv.Set(out)
		return nil
	}
	return setScalar(fv, vals[0])
}

func setScalar(fv reflect.Value, s string) error {
	// time.Duration is an int64 kind but reads as "5s", not a number
	if fv.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		fv.SetInt(int64(d))
		return nil
	}
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field type %s", fv.Type())
	}
	return nil
}
