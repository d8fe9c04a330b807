package shopify

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// encodeRequest writes the GraphQL POST body {"query":..., "variables":...}.
// Variables are omitted when empty.
func encodeRequest(query string, variables map[string]any) ([]byte, error) {
	var vars []byte
	if len(variables) > 0 {
		b, err := json.Marshal(variables)
		if err != nil {
			return nil, errors.Wrap(err, "marshal variables")
		}
		vars = b
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ObjStart()
	e.FieldStart("query")
	e.Str(query)
	if vars != nil {
		e.FieldStart("variables")
		e.Raw(vars)
	}
	e.ObjEnd()

	return append([]byte(nil), e.Bytes()...), nil
}

// response is the decoded GraphQL envelope. Data is kept raw so that it can
// be cached verbatim and decoded into the operation's own type.
type response struct {
	Data   jx.Raw
	Errors Errors
}

func decodeResponse(b []byte) (*response, error) {
	var r response
	d := jx.DecodeBytes(b)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "data":
			if d.Next() == jx.Null {
				return d.Null()
			}
			raw, err := d.Raw()
			if err != nil {
				return errors.Wrap(err, "data")
			}
			r.Data = append(jx.Raw(nil), raw...)
			return nil
		case "errors":
			if d.Next() == jx.Null {
				return d.Null()
			}
			return d.Arr(func(d *jx.Decoder) error {
				ge, err := decodeError(d)
				if err != nil {
					return err
				}
				r.Errors = append(r.Errors, ge)
				return nil
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errors.Wrap(err, "decode graphql response")
	}
	return &r, nil
}

func decodeError(d *jx.Decoder) (GraphQLError, error) {
	var ge GraphQLError
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "message":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "message")
			}
			ge.Message = s
			return nil
		case "extensions":
			if d.Next() != jx.Object {
				return d.Skip()
			}
			return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
				if string(key) != "code" || d.Next() != jx.String {
					return d.Skip()
				}
				s, err := d.Str()
				if err != nil {
					return errors.Wrap(err, "code")
				}
				ge.Code = s
				return nil
			})
		default:
			return d.Skip()
		}
	})
	return ge, err
}
